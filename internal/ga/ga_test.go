package ga

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeforms/internal/nn"
)

// scriptedRNG replays fixed draws, then falls back to 0.5 / 0
type scriptedRNG struct {
	floats []float64
	ints   []int
}

func (s *scriptedRNG) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedRNG) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("scripted Intn out of range")
	}
	return v
}

func makePopulation(fitness []float64, genes int) []Individual {
	pop := make([]Individual, len(fitness))
	for i, f := range fitness {
		genome := make([]float64, genes)
		for j := range genome {
			genome[j] = float64(i*100 + j)
		}
		pop[i] = Individual{Genome: genome, Fitness: f}
	}
	return pop
}

func clonePopulation(pop []Individual) []Individual {
	out := make([]Individual, len(pop))
	for i, a := range pop {
		out[i] = a.Clone()
	}
	return out
}

func TestEvolveEmptyPopulation(t *testing.T) {
	_, err := Evolve(nil, Params{}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrEmptyPopulation)
}

func TestEvolveInvalidParameters(t *testing.T) {
	pop := makePopulation([]float64{1, 2, 3}, 4)
	cases := map[string]Params{
		"negative elites":      {Elites: -1},
		"too many elites":      {Elites: 4},
		"crossover below zero": {CrossoverRate: -0.1},
		"crossover above one":  {CrossoverRate: 1.1},
		"crossover NaN":        {CrossoverRate: math.NaN()},
		"mutation above one":   {MutationRate: 2},
		"negative amount":      {MutationAmount: -0.3},
		"amount NaN":           {MutationAmount: math.NaN()},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Evolve(pop, p, rand.New(rand.NewSource(1)))
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestEvolveKeepsPopulationSize(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for size := 1; size <= 9; size++ {
		for elites := 0; elites <= size; elites++ {
			fitness := make([]float64, size)
			for i := range fitness {
				fitness[i] = rng.Float64()*4 - 1
			}
			p := Params{
				Elites:         elites,
				CrossoverRate:  rng.Float64(),
				MutationRate:   rng.Float64(),
				MutationAmount: rng.Float64(),
			}
			next, err := Evolve(makePopulation(fitness, 6), p, rng)
			require.NoError(t, err)
			assert.Len(t, next, size, "size=%d elites=%d", size, elites)
			for _, g := range next {
				assert.Len(t, g, 6)
			}
		}
	}
}

func TestEvolveEliteComesFirst(t *testing.T) {
	pop := makePopulation([]float64{1, 2, 3, 4, 10}, 5)
	want := nn.CloneGenome(pop[4].Genome)

	p := Params{Elites: 1, CrossoverRate: 0.7, MutationRate: 1, MutationAmount: 0.3}
	next, err := Evolve(pop, p, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, next, 5)
	assert.Equal(t, want, next[0])

	// elite must be an independent copy
	next[0][0] = -1000
	assert.Equal(t, want, pop[4].Genome)
}

func TestEvolveElitesMostFitFirst(t *testing.T) {
	pop := makePopulation([]float64{5, 1, 9, 3, 7}, 3)
	next, err := Evolve(pop, Params{Elites: 3}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, pop[2].Genome, next[0])
	assert.Equal(t, pop[4].Genome, next[1])
	assert.Equal(t, pop[0].Genome, next[2])
}

func TestEvolveAllElites(t *testing.T) {
	pop := makePopulation([]float64{2, 1}, 3)
	next, err := Evolve(pop, Params{Elites: 2, MutationRate: 1, MutationAmount: 5}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{pop[0].Genome, pop[1].Genome}, next)
}

func TestEvolveDoesNotModifyInput(t *testing.T) {
	pop := makePopulation([]float64{3, 1, 4, 1, 5, 9}, 8)
	before := clonePopulation(pop)

	p := Params{Elites: 2, CrossoverRate: 1, MutationRate: 1, MutationAmount: 1}
	_, err := Evolve(pop, p, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	assert.Equal(t, before, pop)
}

func TestEvolveScriptedPair(t *testing.T) {
	pop := makePopulation([]float64{1, 3}, 4)
	rng := &scriptedRNG{
		// roulette 0.4 -> 0, roulette 3.6 -> 1, crossover draw mixes
		floats: []float64{0.1, 0.9, 0.2},
		ints:   []int{2},
	}
	next, err := Evolve(pop, Params{CrossoverRate: 0.7}, rng)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, []float64{0, 1, 102, 103}, next[0])
	assert.Equal(t, []float64{100, 101, 2, 3}, next[1])
}

func TestEvolveOddSlotsTruncated(t *testing.T) {
	pop := makePopulation([]float64{1, 1, 1}, 2)
	next, err := Evolve(pop, Params{}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Len(t, next, 3)
}

func TestEvolveMismatchedParents(t *testing.T) {
	pop := []Individual{
		{Genome: []float64{1, 2, 3}, Fitness: 1},
		{Genome: []float64{1, 2}, Fitness: 1},
	}
	rng := &scriptedRNG{floats: []float64{0.1, 0.9}}
	_, err := Evolve(pop, Params{CrossoverRate: 1}, rng)
	assert.ErrorIs(t, err, nn.ErrGenomeLengthMismatch)
}

func TestEvolveDeterministicForSeed(t *testing.T) {
	pop := makePopulation([]float64{0.5, 1.5, 2, 0, 3, 1}, 10)
	p := Params{Elites: 1, CrossoverRate: 0.7, MutationRate: 0.1, MutationAmount: 0.3}

	a, err := Evolve(pop, p, rand.New(rand.NewSource(77)))
	require.NoError(t, err)
	b, err := Evolve(pop, p, rand.New(rand.NewSource(77)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEvolveNonPositiveTotalUsesFirstIndividual(t *testing.T) {
	pop := makePopulation([]float64{-1, -2, 0}, 3)
	next, err := Evolve(pop, Params{CrossoverRate: 1}, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	for _, g := range next {
		assert.Equal(t, pop[0].Genome, g)
	}
}

func TestSinglePointCrossoverBoundaries(t *testing.T) {
	p1 := []float64{1, 2, 3, 4}
	p2 := []float64{5, 6, 7, 8}

	c1, c2, err := SinglePointCrossover(p1, p2, 0)
	require.NoError(t, err)
	assert.Equal(t, p2, c1)
	assert.Equal(t, p1, c2)

	c1, c2, err = SinglePointCrossover(p1, p2, len(p1))
	require.NoError(t, err)
	assert.Equal(t, p1, c1)
	assert.Equal(t, p2, c2)

	c1, c2, err = SinglePointCrossover(p1, p2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 6, 7, 8}, c1)
	assert.Equal(t, []float64{5, 2, 3, 4}, c2)

	_, _, err = SinglePointCrossover(p1, p2, 5)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, _, err = SinglePointCrossover(p1, p2[:3], 1)
	assert.ErrorIs(t, err, nn.ErrGenomeLengthMismatch)
}

func TestCrossoverRateZeroClones(t *testing.T) {
	p1 := []float64{1, 2, 3, 4}
	p2 := []float64{5, 6, 7, 8}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		c1, c2, err := Crossover(p1, p2, 0, false, rng)
		require.NoError(t, err)
		assert.Equal(t, p1, c1)
		assert.Equal(t, p2, c2)
	}

	// Draw 0 is not above rate 0 but must still clone
	c1, c2, err := Crossover(p1, p2, 0, false, &scriptedRNG{floats: []float64{0}})
	require.NoError(t, err)
	assert.Equal(t, p1, c1)
	assert.Equal(t, p2, c2)
}

func TestCrossoverSameParentClones(t *testing.T) {
	p := []float64{1, 2, 3, 4}
	rng := &scriptedRNG{floats: []float64{0}, ints: []int{2}}
	c1, c2, err := Crossover(p, p, 1, true, rng)
	require.NoError(t, err)
	assert.Equal(t, p, c1)
	assert.Equal(t, p, c2)

	c1[0] = 9
	assert.Equal(t, 1.0, p[0])
}

func TestMutateBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	const amount = 0.3
	for trial := 0; trial < 1000; trial++ {
		genome := []float64{0, 1, -1, 10, 0.5}
		original := nn.CloneGenome(genome)
		Mutate(genome, 1, amount, rng)
		for i := range genome {
			delta := genome[i] - original[i]
			assert.LessOrEqual(t, math.Abs(delta), amount+1e-12)
		}
	}
}

func TestMutateRateZero(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	genome := []float64{0, 1, -1, 10, 0.5}
	original := nn.CloneGenome(genome)
	for trial := 0; trial < 1000; trial++ {
		Mutate(genome, 0, 5, rng)
	}
	assert.Equal(t, original, genome)
}

func TestMutateRateOneChangesEveryGene(t *testing.T) {
	genome := []float64{0, 0, 0}
	// accept draw, perturbation draw, per gene
	rng := &scriptedRNG{floats: []float64{0, 1, 0, 0, 0.99, 0.75}}
	Mutate(genome, 1, 2, rng)
	assert.Equal(t, []float64{2, -2, 1}, genome)
}

func TestRouletteSelectBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	pop := makePopulation([]float64{0.1, 5, 0, 2.5, 1}, 1)
	total := TotalFitness(pop)
	for i := 0; i < 10000; i++ {
		idx := RouletteSelect(pop, total, rng)
		assert.True(t, idx >= 0 && idx < len(pop))
		assert.NotEqual(t, 2, idx, "zero-fitness individual after a positive one is never picked")
	}
}

func TestRouletteSelectDominantIndividual(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	pop := makePopulation([]float64{0, 0, 7, 0}, 1)
	total := TotalFitness(pop)
	for i := 0; i < 10000; i++ {
		assert.Equal(t, 2, RouletteSelect(pop, total, rng))
	}
}

func TestRouletteSelectFallback(t *testing.T) {
	pop := makePopulation([]float64{1, 2, 3}, 1)

	// non-positive totals never consult the draw
	assert.Equal(t, 0, RouletteSelect(pop, 0, &scriptedRNG{floats: []float64{0.99}}))
	assert.Equal(t, 0, RouletteSelect(pop, -4, &scriptedRNG{floats: []float64{0.99}}))

	// a running sum that never reaches the draw falls back to the first individual
	assert.Equal(t, 0, RouletteSelect(pop, 100, &scriptedRNG{floats: []float64{0.99}}))

	// exact boundary belongs to the individual that reaches it
	assert.Equal(t, 1, RouletteSelect(pop, 6, &scriptedRNG{floats: []float64{0.5}}))

	// a zero draw skips leading zero-fitness individuals
	zeros := makePopulation([]float64{0, 0, 4}, 1)
	assert.Equal(t, 2, RouletteSelect(zeros, 4, &scriptedRNG{floats: []float64{0}}))
}

func TestPopulationHelpers(t *testing.T) {
	pop := makePopulation([]float64{2, 8, 8, -1}, 1)
	assert.Equal(t, 17.0, TotalFitness(pop))
	assert.Equal(t, 4.25, MeanFitness(pop))
	assert.Equal(t, 1, Best(pop))
	assert.Equal(t, []int{1, 2, 0, 3}, RankByFitness(pop))
	assert.Equal(t, -1, Best(nil))
	assert.Equal(t, 0.0, MeanFitness(nil))
}
