package env

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidParams is returned when world constants are unusable
var ErrInvalidParams = errors.New("invalid world params")

// ResourceKind identifies what a resource replenishes
type ResourceKind int

const (
	ResourceWater ResourceKind = iota + 1
	ResourceFood
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceWater:
		return "water"
	case ResourceFood:
		return "food"
	default:
		return "unknown"
	}
}

// maxPlacementTries bounds the search for a free spot when placing food or lifeforms
const maxPlacementTries = 1000

// Params holds the constants of the world and its resource economy
type Params struct {
	Width              float64 `json:"width"`
	Height             float64 `json:"height"`
	GenerationLifetime int     `json:"generation_lifetime"`
	MaxFood            float64 `json:"max_food"`
	MaxWater           float64 `json:"max_water"`
	FoodUsedPerStep    float64 `json:"food_used_per_step"`
	WaterUsedPerStep   float64 `json:"water_used_per_step"`
	WaterDrankPerStep  float64 `json:"water_drank_per_step"`
	FoodAtePerDot      float64 `json:"food_ate_per_dot"`
	StartSteps         float64 `json:"start_steps"`
	MaxTurnSpeed       float64 `json:"max_turn_speed"`
	NumFood            int     `json:"num_food"`
}

// Validate rejects constants the simulation cannot run with
func (p Params) Validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: size %vx%v", ErrInvalidParams, p.Width, p.Height)
	case p.GenerationLifetime <= 0:
		return fmt.Errorf("%w: generation lifetime %d", ErrInvalidParams, p.GenerationLifetime)
	case p.MaxFood <= 0 || p.MaxWater <= 0:
		return fmt.Errorf("%w: max food %v, max water %v", ErrInvalidParams, p.MaxFood, p.MaxWater)
	case p.FoodUsedPerStep < 0 || p.WaterUsedPerStep < 0 || p.WaterDrankPerStep < 0 || p.FoodAtePerDot < 0:
		return fmt.Errorf("%w: negative resource rate", ErrInvalidParams)
	case p.StartSteps <= 0:
		return fmt.Errorf("%w: start steps %v", ErrInvalidParams, p.StartSteps)
	case p.MaxTurnSpeed < 0:
		return fmt.Errorf("%w: max turn speed %v", ErrInvalidParams, p.MaxTurnSpeed)
	case p.NumFood < 1:
		return fmt.Errorf("%w: need at least one food dot, got %d", ErrInvalidParams, p.NumFood)
	}
	return nil
}

// Resource is a circular patch of food or water
type Resource struct {
	Kind     ResourceKind
	X, Y     float64
	Radius   float64
	RadiusSq float64
}

// World is a wrap-around field holding water pools and food dots
type World struct {
	Params    Params
	Resources []Resource

	rng *rand.Rand
}

// NewWorld creates a world and lays out its resources
func NewWorld(p Params, rng *rand.Rand) (*World, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w := &World{Params: p, rng: rng}
	w.ResetResources()
	return w, nil
}

// ResetResources places the two water pools and a fresh set of food dots
func (w *World) ResetResources() {
	short := min(w.Params.Width, w.Params.Height)

	w.Resources = w.Resources[:0]
	w.Resources = append(w.Resources,
		newResource(ResourceWater, 0.3*w.Params.Width, 0.2*w.Params.Height, 0.1*short),
		newResource(ResourceWater, 0.9*w.Params.Width, 0.9*w.Params.Height, 0.2*short),
	)
	for i := 0; i < w.Params.NumFood; i++ {
		w.Resources = append(w.Resources, w.randomFood())
	}
}

func newResource(kind ResourceKind, x, y, radius float64) Resource {
	return Resource{Kind: kind, X: x, Y: y, Radius: radius, RadiusSq: radius * radius}
}

// ResourceAt returns the index of a resource covering (x, y), or -1
func (w *World) ResourceAt(x, y float64) int {
	for i, r := range w.Resources {
		dx := x - r.X
		dy := y - r.Y
		if dx*dx+dy*dy <= r.RadiusSq*2 {
			return i
		}
	}
	return -1
}

// RespawnFood moves an eaten food dot somewhere else
func (w *World) RespawnFood(i int) {
	w.Resources[i] = w.randomFood()
}

func (w *World) randomFood() Resource {
	radius := 0.01 * min(w.Params.Width, w.Params.Height)
	x, y := w.RandomFreePosition()
	return newResource(ResourceFood, x, y, radius)
}

// RandomFreePosition picks a point in the inner 80% of the world not covered by a
// resource. After maxPlacementTries the last candidate is used.
func (w *World) RandomFreePosition() (float64, float64) {
	var x, y float64
	for try := 0; try < maxPlacementTries; try++ {
		x = w.Params.Width*0.1 + w.rng.Float64()*w.Params.Width*0.8
		y = w.Params.Height*0.1 + w.rng.Float64()*w.Params.Height*0.8
		if w.ResourceAt(x, y) < 0 {
			break
		}
	}
	return x, y
}

// Rand returns the world's random number generator
func (w *World) Rand() *rand.Rand {
	return w.rng
}

// wrapDelta returns the shortest absolute axis distance on a torus of the given size
func wrapDelta(a, b, size float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > size/2 {
		d = size - d
	}
	return d
}
