package nn

// RandomGenome generates a genome with every weight uniform in [0, 1),
// matching what Randomize produces on a live network
func RandomGenome(size int, rng Rand) []float64 {
	genome := make([]float64, size)
	for i := range genome {
		genome[i] = rng.Float64()
	}
	return genome
}

// CloneGenome makes a copy of a genome
func CloneGenome(src []float64) []float64 {
	if src == nil {
		return nil
	}
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}
