package ga

import (
	"sort"

	"lifeforms/internal/nn"
)

// Individual pairs a genome with the fitness the environment assigned to it
type Individual struct {
	Genome  []float64
	Fitness float64
}

// Clone creates a deep copy of an individual
func (a Individual) Clone() Individual {
	return Individual{
		Genome:  nn.CloneGenome(a.Genome),
		Fitness: a.Fitness,
	}
}

// TotalFitness sums fitness over the population without clamping
func TotalFitness(pop []Individual) float64 {
	total := 0.0
	for _, a := range pop {
		total += a.Fitness
	}
	return total
}

// MeanFitness returns the average fitness, 0 for an empty population
func MeanFitness(pop []Individual) float64 {
	if len(pop) == 0 {
		return 0
	}
	return TotalFitness(pop) / float64(len(pop))
}

// Best returns the index of the individual with highest fitness, -1 if empty.
// Ties go to the earliest index.
func Best(pop []Individual) int {
	if len(pop) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(pop); i++ {
		if pop[i].Fitness > pop[best].Fitness {
			best = i
		}
	}
	return best
}

// RankByFitness returns population indices ordered by fitness, highest first.
// Equal fitness keeps the original order.
func RankByFitness(pop []Individual) []int {
	order := indices(len(pop))
	sort.SliceStable(order, func(i, j int) bool {
		return pop[order[i]].Fitness > pop[order[j]].Fitness
	})
	return order
}

// ascendingOrder stably sorts population indices by ascending fitness
func ascendingOrder(pop []Individual) []int {
	order := indices(len(pop))
	sort.SliceStable(order, func(i, j int) bool {
		return pop[order[i]].Fitness < pop[order[j]].Fitness
	})
	return order
}

func indices(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
