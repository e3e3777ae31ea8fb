package env

import (
	"fmt"
	"math"

	"lifeforms/internal/nn"
)

const (
	// NumSensors is the number of observations fed to a brain each step
	NumSensors = 8
	// NumActions is the number of brain outputs the world reads: left and right drive
	NumActions = 2
)

// Point is a position in world coordinates
type Point struct {
	X, Y float64
}

// Lifeform is one agent: a brain plus its body state in the world
type Lifeform struct {
	Brain *nn.Network

	Pos       Point
	Angle     float64
	LastMoveX float64
	LastMoveY float64

	Food     float64
	Water    float64
	LifeSpan int
	Fitness  float64

	// Nearest targets seen on the last step, wrap-around adjusted
	TargetFood  Point
	TargetWater Point

	sensors *Sensors
}

// NewLifeform wraps a brain whose input and output widths match the world
func NewLifeform(brain *nn.Network) (*Lifeform, error) {
	if brain.NumInputs() != NumSensors || brain.NumOutputs() != NumActions {
		return nil, fmt.Errorf("%w: brain is %d->%d, world needs %d->%d",
			nn.ErrInvalidTopology, brain.NumInputs(), brain.NumOutputs(), NumSensors, NumActions)
	}
	return &Lifeform{Brain: brain, sensors: NewSensors()}, nil
}

// ResetAge puts the lifeform at a random free spot with full starting stores,
// leaving the brain untouched
func (l *Lifeform) ResetAge(w *World) {
	l.Angle = w.rng.Float64() * math.Pi * 2
	l.Pos.X, l.Pos.Y = w.RandomFreePosition()
	l.LastMoveX, l.LastMoveY = 0, 0
	l.TargetFood, l.TargetWater = l.Pos, l.Pos

	l.LifeSpan = 0
	l.Fitness = 0
	l.Water = w.Params.WaterUsedPerStep * w.Params.StartSteps
	l.Food = w.Params.FoodUsedPerStep * w.Params.StartSteps
}

// Alive reports whether the lifeform still has both food and water
func (l *Lifeform) Alive() bool {
	return l.Water > 0 && l.Food > 0
}

// Step senses, thinks and moves once. It returns false if the lifeform is dead.
func (l *Lifeform) Step(w *World) bool {
	if !l.Alive() {
		return false
	}

	l.Water -= w.Params.WaterUsedPerStep
	l.Food -= w.Params.FoodUsedPerStep
	l.LifeSpan++

	// widths were checked in NewLifeform
	_ = l.Brain.SetInputs(l.sensors.Extract(l, w))
	l.Brain.Forward()
	out := l.Brain.Outputs()

	// outputs are left and right wheel speed
	turn := out[0] - out[1]
	turn = math.Max(-w.Params.MaxTurnSpeed, math.Min(w.Params.MaxTurnSpeed, turn))
	l.Angle += turn
	speed := out[0] + out[1]

	l.LastMoveX = math.Cos(l.Angle)
	l.LastMoveY = math.Sin(l.Angle)
	l.Pos.X += l.LastMoveX * speed
	l.Pos.Y += l.LastMoveY * speed
	l.wrap(w.Params)

	if i := w.ResourceAt(l.Pos.X, l.Pos.Y); i >= 0 {
		switch w.Resources[i].Kind {
		case ResourceFood:
			l.Food = math.Min(l.Food+w.Params.FoodAtePerDot, w.Params.MaxFood)
			w.RespawnFood(i)
		case ResourceWater:
			l.Water = math.Min(l.Water+w.Params.WaterDrankPerStep, w.Params.MaxWater)
		}
	}
	return true
}

func (l *Lifeform) wrap(p Params) {
	if l.Pos.X < 0 {
		l.Pos.X = p.Width - 1
	}
	if l.Pos.Y < 0 {
		l.Pos.Y = p.Height - 1
	}
	if l.Pos.X >= p.Width {
		l.Pos.X = 0
	}
	if l.Pos.Y >= p.Height {
		l.Pos.Y = 0
	}
}

// CalculateFitness scores the remaining stores and the time survived
func (l *Lifeform) CalculateFitness(p Params) float64 {
	l.Fitness = (l.Water/p.MaxWater)*(l.Food/p.MaxFood) + float64(l.LifeSpan)/float64(p.GenerationLifetime)
	return l.Fitness
}
