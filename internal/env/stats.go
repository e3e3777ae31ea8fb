package env

import "math"

// GenerationStats summarizes how a population fared in one generation
type GenerationStats struct {
	Generation      int     `json:"generation"`
	Steps           int     `json:"steps"`            // iterations the generation ran for
	Alive           int     `json:"alive"`            // lifeforms still alive at the end
	LongestLifeSpan int     `json:"longest_lifespan"` // most steps any lifeform survived
	BestFitness     float64 `json:"best_fitness"`
	MeanFitness     float64 `json:"mean_fitness"`
	TotalFitness    float64 `json:"total_fitness"`
	MeanFood        float64 `json:"mean_food"`
	MeanWater       float64 `json:"mean_water"`
}

// Summarize computes statistics over lifeforms whose fitness is already calculated
func Summarize(generation, steps int, lifeforms []*Lifeform) GenerationStats {
	stats := GenerationStats{Generation: generation, Steps: steps}
	n := len(lifeforms)
	if n == 0 {
		return stats
	}

	stats.BestFitness = math.Inf(-1)
	var foodSum, waterSum float64
	for _, l := range lifeforms {
		if l.Alive() {
			stats.Alive++
		}
		if l.LifeSpan > stats.LongestLifeSpan {
			stats.LongestLifeSpan = l.LifeSpan
		}
		if l.Fitness > stats.BestFitness {
			stats.BestFitness = l.Fitness
		}
		stats.TotalFitness += l.Fitness
		foodSum += l.Food
		waterSum += l.Water
	}

	nf := float64(n)
	stats.MeanFitness = stats.TotalFitness / nf
	stats.MeanFood = foodSum / nf
	stats.MeanWater = waterSum / nf
	return stats
}
