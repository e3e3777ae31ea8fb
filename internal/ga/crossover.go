package ga

import (
	"fmt"

	"lifeforms/internal/nn"
)

// SinglePointCrossover splices two parents at point k.
// c1 = p1[:k] + p2[k:], c2 = p2[:k] + p1[k:].
func SinglePointCrossover(p1, p2 []float64, k int) ([]float64, []float64, error) {
	if len(p1) != len(p2) {
		return nil, nil, fmt.Errorf("%w: parents have %d and %d genes", nn.ErrGenomeLengthMismatch, len(p1), len(p2))
	}
	if k < 0 || k > len(p1) {
		return nil, nil, fmt.Errorf("%w: crossover point %d outside [0, %d]", ErrInvalidParameter, k, len(p1))
	}

	size := len(p1)
	c1 := make([]float64, size)
	c2 := make([]float64, size)

	copy(c1[:k], p1[:k])
	copy(c1[k:], p2[k:])
	copy(c2[:k], p2[:k])
	copy(c2[k:], p1[k:])

	return c1, c2, nil
}

// Crossover produces two children from two parents. A single uniform draw decides
// whether genes are mixed: only a draw below rate mixes, so rate 0 always clones and
// rate 1 always mixes. Same-individual parents are always cloned.
func Crossover(p1, p2 []float64, rate float64, sameParent bool, rng RNG) ([]float64, []float64, error) {
	if len(p1) != len(p2) {
		return nil, nil, fmt.Errorf("%w: parents have %d and %d genes", nn.ErrGenomeLengthMismatch, len(p1), len(p2))
	}

	if r := rng.Float64(); r >= rate || sameParent || len(p1) == 0 {
		return nn.CloneGenome(p1), nn.CloneGenome(p2), nil
	}

	return SinglePointCrossover(p1, p2, rng.Intn(len(p1)))
}
