package ga

// Mutate perturbs a genome in-place. Each gene, with probability rate, gets a value
// drawn uniformly from [-amount, +amount] added to it. Results are not clamped.
func Mutate(genome []float64, rate, amount float64, rng RNG) {
	for i := range genome {
		if rng.Float64() < rate {
			genome[i] += amount * (rng.Float64()*2 - 1)
		}
	}
}
