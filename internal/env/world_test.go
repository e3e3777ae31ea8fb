package env

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeforms/internal/nn"
)

func testParams() Params {
	return Params{
		Width:              600,
		Height:             600,
		GenerationLifetime: 6000,
		MaxFood:            10000,
		MaxWater:           10000,
		FoodUsedPerStep:    1,
		WaterUsedPerStep:   1,
		WaterDrankPerStep:  3,
		FoodAtePerDot:      250,
		StartSteps:         1500,
		MaxTurnSpeed:       0.3,
		NumFood:            20,
	}
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(testParams(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return w
}

// newConstantLifeform has an all-zero brain: both outputs are 0.5,
// so it drives straight ahead at speed 1
func newConstantLifeform(t *testing.T, w *World) *Lifeform {
	t.Helper()
	brain, err := nn.New([]int{NumSensors, 3, NumActions}, w.Rand())
	require.NoError(t, err)
	require.NoError(t, brain.SetGenome(make([]float64, brain.GenomeSize())))
	l, err := NewLifeform(brain)
	require.NoError(t, err)
	l.ResetAge(w)
	return l
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, testParams().Validate())

	bad := []func(*Params){
		func(p *Params) { p.Width = 0 },
		func(p *Params) { p.GenerationLifetime = 0 },
		func(p *Params) { p.MaxWater = -1 },
		func(p *Params) { p.FoodAtePerDot = -1 },
		func(p *Params) { p.StartSteps = 0 },
		func(p *Params) { p.MaxTurnSpeed = -0.1 },
		func(p *Params) { p.NumFood = 0 },
	}
	for i, mutate := range bad {
		p := testParams()
		mutate(&p)
		_, err := NewWorld(p, rand.New(rand.NewSource(1)))
		assert.ErrorIs(t, err, ErrInvalidParams, "case %d", i)
	}
}

func TestResetResourcesLayout(t *testing.T) {
	w := newTestWorld(t)
	require.Len(t, w.Resources, 22)

	assert.Equal(t, ResourceWater, w.Resources[0].Kind)
	assert.Equal(t, 180.0, w.Resources[0].X)
	assert.Equal(t, 120.0, w.Resources[0].Y)
	assert.Equal(t, 60.0, w.Resources[0].Radius)
	assert.Equal(t, ResourceWater, w.Resources[1].Kind)
	assert.Equal(t, 120.0, w.Resources[1].Radius)

	for _, r := range w.Resources[2:] {
		assert.Equal(t, ResourceFood, r.Kind)
		assert.GreaterOrEqual(t, r.X, 60.0)
		assert.Less(t, r.X, 540.0)
		assert.GreaterOrEqual(t, r.Y, 60.0)
		assert.Less(t, r.Y, 540.0)
		assert.Equal(t, 36.0, r.RadiusSq)
	}
}

func TestResourceAt(t *testing.T) {
	w := newTestWorld(t)
	w.Resources = []Resource{newResource(ResourceFood, 100, 100, 10)}

	assert.Equal(t, 0, w.ResourceAt(100, 100))
	// covered out to r*sqrt(2)
	assert.Equal(t, 0, w.ResourceAt(114, 100))
	assert.Equal(t, -1, w.ResourceAt(115, 100))
}

func TestNearestWrapsAround(t *testing.T) {
	w := newTestWorld(t)
	w.Resources = []Resource{
		newResource(ResourceWater, 300, 300, 1),
		newResource(ResourceFood, 590, 10, 1),
		newResource(ResourceFood, 200, 10, 1),
	}

	food, water := w.Nearest(Point{5, 5})
	assert.Equal(t, Point{590, 10}, food)
	assert.Equal(t, Point{300, 300}, water)

	target := w.wrapTarget(Point{5, 5}, food)
	assert.Equal(t, Point{-10, 10}, target)
}

func TestSensorsExtract(t *testing.T) {
	w := newTestWorld(t)
	w.Resources = []Resource{
		newResource(ResourceWater, 100, 50, 1),
		newResource(ResourceFood, 50, 100, 1),
	}
	l := newConstantLifeform(t, w)
	l.Pos = Point{50, 50}
	l.LastMoveX, l.LastMoveY = 0.6, 0.8
	l.Food, l.Water = 5000, 2500

	obs := NewSensors().Extract(l, w)
	require.Len(t, obs, NumSensors)
	assert.Equal(t, []float64{0, -1, -1, 0, 0.6, 0.8, 0.5, 0.25}, obs)
	assert.Equal(t, Point{50, 100}, l.TargetFood)
	assert.Equal(t, Point{100, 50}, l.TargetWater)
}

func TestSensorsZeroDistance(t *testing.T) {
	x, y := unitFrom(Point{3, 4}, Point{3, 4})
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)

	x, y = unitFrom(Point{3, 4}, Point{0, 0})
	assert.InDelta(t, 0.6, x, 1e-12)
	assert.InDelta(t, 0.8, y, 1e-12)
}

func TestNewLifeformRejectsWrongBrain(t *testing.T) {
	brain, err := nn.New([]int{3, 2}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = NewLifeform(brain)
	assert.ErrorIs(t, err, nn.ErrInvalidTopology)
}

func TestLifeformResetAge(t *testing.T) {
	w := newTestWorld(t)
	l := newConstantLifeform(t, w)
	l.LifeSpan = 99
	l.ResetAge(w)

	assert.Equal(t, 0, l.LifeSpan)
	assert.Equal(t, 1500.0, l.Food)
	assert.Equal(t, 1500.0, l.Water)
	assert.Equal(t, -1, w.ResourceAt(l.Pos.X, l.Pos.Y))
	assert.True(t, l.Alive())
}

func TestLifeformStepMovesAndConsumes(t *testing.T) {
	w := newTestWorld(t)
	w.Resources = []Resource{
		newResource(ResourceWater, 500, 500, 1),
		newResource(ResourceFood, 400, 400, 1),
	}
	l := newConstantLifeform(t, w)
	l.Pos = Point{100, 100}
	l.Angle = 0

	require.True(t, l.Step(w))
	assert.Equal(t, 1, l.LifeSpan)
	assert.Equal(t, 1499.0, l.Food)
	assert.Equal(t, 1499.0, l.Water)
	assert.InDelta(t, 101, l.Pos.X, 1e-12)
	assert.InDelta(t, 100, l.Pos.Y, 1e-12)
	assert.Equal(t, 1.0, l.LastMoveX)
}

func TestLifeformEatsAndDrinks(t *testing.T) {
	w := newTestWorld(t)
	w.Resources = []Resource{
		newResource(ResourceWater, 500, 100, 2),
		newResource(ResourceFood, 101, 100, 2),
	}
	l := newConstantLifeform(t, w)
	l.Pos = Point{100, 100}
	l.Angle = 0

	require.True(t, l.Step(w))
	assert.Equal(t, 1499.0+250, l.Food)
	assert.NotEqual(t, 101.0, w.Resources[1].X, "eaten food respawns")

	l.Pos = Point{499, 100}
	l.Angle = 0
	require.True(t, l.Step(w))
	assert.Equal(t, 1498.0+3, l.Water)

	l.Water = w.Params.MaxWater
	l.Pos = Point{499, 100}
	require.True(t, l.Step(w))
	assert.Equal(t, w.Params.MaxWater, l.Water)
}

func TestLifeformWrapsAtEdges(t *testing.T) {
	w := newTestWorld(t)
	w.Resources = []Resource{newResource(ResourceWater, 300, 300, 1), newResource(ResourceFood, 300, 200, 1)}
	l := newConstantLifeform(t, w)

	l.Pos = Point{599.5, 100}
	l.Angle = 0
	l.Step(w)
	assert.Equal(t, 0.0, l.Pos.X)

	l.Pos = Point{0.5, 100}
	l.Angle = math.Pi
	l.Step(w)
	assert.Equal(t, 599.0, l.Pos.X)
}

func TestLifeformDies(t *testing.T) {
	w := newTestWorld(t)
	w.Resources = []Resource{newResource(ResourceWater, 500, 500, 1), newResource(ResourceFood, 400, 400, 1)}
	l := newConstantLifeform(t, w)
	l.Pos = Point{100, 100}
	l.Water = 1

	assert.True(t, l.Step(w))
	assert.False(t, l.Alive())
	assert.False(t, l.Step(w))
	assert.Equal(t, 1, l.LifeSpan)
}

func TestCalculateFitness(t *testing.T) {
	p := testParams()
	l := &Lifeform{Food: 5000, Water: 2000, LifeSpan: 3000}
	assert.InDelta(t, 0.6, l.CalculateFitness(p), 1e-12)
	assert.InDelta(t, 0.6, l.Fitness, 1e-12)
}

func TestSummarize(t *testing.T) {
	lifeforms := []*Lifeform{
		{Food: 10, Water: 10, LifeSpan: 5, Fitness: 1},
		{Food: 0, Water: 4, LifeSpan: 9, Fitness: 3},
	}
	s := Summarize(2, 9, lifeforms)
	assert.Equal(t, 1, s.Alive)
	assert.Equal(t, 9, s.LongestLifeSpan)
	assert.Equal(t, 3.0, s.BestFitness)
	assert.Equal(t, 2.0, s.MeanFitness)
	assert.Equal(t, 4.0, s.TotalFitness)
	assert.Equal(t, 7.0, s.MeanWater)

	empty := Summarize(1, 0, nil)
	assert.Equal(t, 0.0, empty.BestFitness)
}

func TestTraceRoundTrip(t *testing.T) {
	w := newTestWorld(t)
	l := newConstantLifeform(t, w)

	trace := NewTrace(3, w.Params)
	for step := 1; step <= 3; step++ {
		l.Step(w)
		trace.Record(step, l)
	}
	l.CalculateFitness(w.Params)
	trace.Finish(3, l)

	path := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, trace.Save(path))
	loaded, err := LoadTrace(path)
	require.NoError(t, err)
	assert.Equal(t, trace, loaded)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"generation_lifetime": 6000`)
	assert.Contains(t, string(raw), `"water_drank_per_step": 3`)
	assert.NotContains(t, string(raw), "GenerationLifetime")
}
