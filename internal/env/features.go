package env

import "math"

// Sensor slots, in the order the brain receives them
const (
	SensorFoodX = iota
	SensorFoodY
	SensorWaterX
	SensorWaterY
	SensorMoveX
	SensorMoveY
	SensorFoodLeft
	SensorWaterLeft
)

// Sensors builds observation vectors for a lifeform
type Sensors struct {
	buffer []float64
}

// NewSensors creates a sensor set with its own buffer
func NewSensors() *Sensors {
	return &Sensors{buffer: make([]float64, NumSensors)}
}

// Extract fills the observation vector for the lifeform's current state.
// Returns a slice that should not be modified (internal buffer).
func (s *Sensors) Extract(l *Lifeform, w *World) []float64 {
	food, water := w.Nearest(l.Pos)

	l.TargetFood = w.wrapTarget(l.Pos, food)
	s.buffer[SensorFoodX], s.buffer[SensorFoodY] = unitFrom(l.Pos, l.TargetFood)

	l.TargetWater = w.wrapTarget(l.Pos, water)
	s.buffer[SensorWaterX], s.buffer[SensorWaterY] = unitFrom(l.Pos, l.TargetWater)

	s.buffer[SensorMoveX] = l.LastMoveX
	s.buffer[SensorMoveY] = l.LastMoveY

	s.buffer[SensorFoodLeft] = l.Food / w.Params.MaxFood
	s.buffer[SensorWaterLeft] = l.Water / w.Params.MaxWater
	return s.buffer
}

// Nearest returns the closest food and water positions to p, measured to the
// resource edge on the wrap-around field. A kind with no resource yields p itself.
func (w *World) Nearest(p Point) (food, water Point) {
	food, water = p, p
	bestFood, bestWater := -1.0, -1.0

	for _, r := range w.Resources {
		dx := wrapDelta(p.X, r.X, w.Params.Width)
		dy := wrapDelta(p.Y, r.Y, w.Params.Height)
		d := math.Max(0, dx*dx+dy*dy-r.RadiusSq)

		switch r.Kind {
		case ResourceFood:
			if bestFood < 0 || d < bestFood {
				bestFood = d
				food = Point{r.X, r.Y}
			}
		case ResourceWater:
			if bestWater < 0 || d < bestWater {
				bestWater = d
				water = Point{r.X, r.Y}
			}
		}
	}
	return food, water
}

// wrapTarget moves target by one world size when going around the edge is shorter
func (w *World) wrapTarget(p, target Point) Point {
	if x := p.X - target.X; math.Abs(x) > w.Params.Width/2 {
		if x > 0 {
			target.X += w.Params.Width
		} else {
			target.X -= w.Params.Width
		}
	}
	if y := p.Y - target.Y; math.Abs(y) > w.Params.Height/2 {
		if y > 0 {
			target.Y += w.Params.Height
		} else {
			target.Y -= w.Params.Height
		}
	}
	return target
}

// unitFrom returns the unit vector from target to p, zero when they coincide
func unitFrom(p, target Point) (float64, float64) {
	x := p.X - target.X
	y := p.Y - target.Y
	z := math.Hypot(x, y)
	if z == 0 {
		return 0, 0
	}
	return x / z, y / z
}
