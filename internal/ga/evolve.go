package ga

import (
	"errors"
	"fmt"
	"math"

	"lifeforms/internal/nn"
)

var (
	// ErrEmptyPopulation is returned when Evolve is called with no individuals
	ErrEmptyPopulation = errors.New("empty population")
	// ErrInvalidParameter is returned when a rate or count is outside its range
	ErrInvalidParameter = errors.New("invalid parameter")
)

// RNG is the randomness Evolve consumes. *rand.Rand satisfies it.
type RNG interface {
	Float64() float64
	Intn(n int) int
}

// Params holds the per-generation breeding settings
type Params struct {
	Elites         int     // fittest individuals copied unchanged
	CrossoverRate  float64 // chance a pair of children mixes genes
	MutationRate   float64 // per-gene mutation probability
	MutationAmount float64 // maximum absolute perturbation
}

// Validate checks the parameters against a population of the given size
func (p Params) Validate(popSize int) error {
	if p.Elites < 0 || p.Elites > popSize {
		return fmt.Errorf("%w: elites %d outside [0, %d]", ErrInvalidParameter, p.Elites, popSize)
	}
	if !inUnit(p.CrossoverRate) {
		return fmt.Errorf("%w: crossover rate %v outside [0, 1]", ErrInvalidParameter, p.CrossoverRate)
	}
	if !inUnit(p.MutationRate) {
		return fmt.Errorf("%w: mutation rate %v outside [0, 1]", ErrInvalidParameter, p.MutationRate)
	}
	if math.IsNaN(p.MutationAmount) || math.IsInf(p.MutationAmount, 0) || p.MutationAmount < 0 {
		return fmt.Errorf("%w: mutation amount %v must be a non-negative number", ErrInvalidParameter, p.MutationAmount)
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// Evolve produces the next generation of genomes from a scored population.
//
// The result has the same length as pop: the Elites fittest genomes first
// (highest fitness first), then children bred in pairs from roulette-selected
// parents via single-point crossover and uniform mutation. pop is not modified.
func Evolve(pop []Individual, p Params, rng RNG) ([][]float64, error) {
	if len(pop) == 0 {
		return nil, ErrEmptyPopulation
	}
	if err := p.Validate(len(pop)); err != nil {
		return nil, err
	}

	total := TotalFitness(pop)
	ranked := ascendingOrder(pop)

	next := make([][]float64, 0, len(pop)+1)
	for i := 0; i < p.Elites; i++ {
		next = append(next, nn.CloneGenome(pop[ranked[len(ranked)-1-i]].Genome))
	}

	for len(next) < len(pop) {
		i1, i2 := SelectParents(pop, total, rng)

		c1, c2, err := Crossover(pop[i1].Genome, pop[i2].Genome, p.CrossoverRate, i1 == i2, rng)
		if err != nil {
			return nil, fmt.Errorf("breed %d x %d: %w", i1, i2, err)
		}

		Mutate(c1, p.MutationRate, p.MutationAmount, rng)
		Mutate(c2, p.MutationRate, p.MutationAmount, rng)

		next = append(next, c1, c2)
	}

	// An odd number of open slots leaves one child too many
	return next[:len(pop)], nil
}
