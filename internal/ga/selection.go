package ga

// RouletteSelect picks a population index with probability proportional to its
// share of total fitness. It walks the population in its original order and returns
// the first index with positive fitness whose running sum reaches the drawn value.
//
// Index 0 is returned when total is not positive, and also when rounding keeps the
// running sum from ever reaching the draw.
func RouletteSelect(pop []Individual, total float64, rng RNG) int {
	if total <= 0 {
		return 0
	}

	r := rng.Float64() * total
	soFar := 0.0
	for i, a := range pop {
		soFar += a.Fitness
		if a.Fitness > 0 && soFar >= r {
			return i
		}
	}
	return 0
}

// SelectParents draws two parent indices independently; both may be the same
func SelectParents(pop []Individual, total float64, rng RNG) (int, int) {
	p1 := RouletteSelect(pop, total, rng)
	p2 := RouletteSelect(pop, total, rng)
	return p1, p2
}
