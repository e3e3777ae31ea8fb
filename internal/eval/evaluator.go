package eval

import (
	"fmt"
	"math/rand"

	"lifeforms/internal/config"
	"lifeforms/internal/env"
	"lifeforms/internal/ga"
	"lifeforms/internal/nn"
)

// Evaluator runs generations of lifeforms in a shared world and scores them
type Evaluator struct {
	params    env.Params
	world     *env.World
	lifeforms []*env.Lifeform
	step      int
}

// NewEvaluator creates the world and one lifeform per population slot, each with
// a freshly randomized brain
func NewEvaluator(cfg *config.Config, rng *rand.Rand) (*Evaluator, error) {
	params := cfg.WorldParams()
	world, err := env.NewWorld(params, rng)
	if err != nil {
		return nil, err
	}

	e := &Evaluator{
		params:    params,
		world:     world,
		lifeforms: make([]*env.Lifeform, cfg.GA.Population),
	}
	for i := range e.lifeforms {
		brain, err := nn.New(cfg.NN.Topology, rng)
		if err != nil {
			return nil, err
		}
		l, err := env.NewLifeform(brain)
		if err != nil {
			return nil, err
		}
		l.ResetAge(world)
		e.lifeforms[i] = l
	}
	return e, nil
}

// Lifeforms returns the lifeforms in slot order
func (e *Evaluator) Lifeforms() []*env.Lifeform {
	return e.lifeforms
}

// Install loads one genome per slot and restarts every lifeform's life
func (e *Evaluator) Install(genomes [][]float64) error {
	if len(genomes) != len(e.lifeforms) {
		return fmt.Errorf("install: got %d genomes for %d lifeforms", len(genomes), len(e.lifeforms))
	}
	for i, g := range genomes {
		if err := e.lifeforms[i].Brain.SetGenome(g); err != nil {
			return fmt.Errorf("install slot %d: %w", i, err)
		}
	}
	e.Restart()
	return nil
}

// Restart resets every lifeform's age without touching brains
func (e *Evaluator) Restart() {
	e.step = 0
	for _, l := range e.lifeforms {
		l.ResetAge(e.world)
	}
}

// Upgrade writes genome into the brains of the first n slots. Lifeforms keep
// their bodies and age, so it can be applied to a running generation.
func (e *Evaluator) Upgrade(genome []float64, n int) error {
	if n < 0 || n > len(e.lifeforms) {
		return fmt.Errorf("upgrade: %d slots requested of %d", n, len(e.lifeforms))
	}
	for i := 0; i < n; i++ {
		if err := e.lifeforms[i].Brain.SetGenome(genome); err != nil {
			return fmt.Errorf("upgrade slot %d: %w", i, err)
		}
	}
	return nil
}

// Step advances every lifeform once and returns how many are still alive
func (e *Evaluator) Step() int {
	alive := 0
	for _, l := range e.lifeforms {
		if l.Step(e.world) {
			alive++
		}
	}
	e.step++
	return alive
}

// Steps returns how many iterations the current generation has run
func (e *Evaluator) Steps() int {
	return e.step
}

// Done reports whether the generation has reached its lifetime
func (e *Evaluator) Done() bool {
	return e.step >= e.params.GenerationLifetime
}

// RunGeneration steps until the lifetime is reached or everyone is dead, then
// scores every lifeform. Individuals are returned in slot order.
func (e *Evaluator) RunGeneration(generation int) ([]ga.Individual, env.GenerationStats) {
	for !e.Done() {
		if e.Step() == 0 {
			break
		}
	}
	return e.Score(generation)
}

// Score calculates fitness for the current state of every lifeform
func (e *Evaluator) Score(generation int) ([]ga.Individual, env.GenerationStats) {
	pop := make([]ga.Individual, len(e.lifeforms))
	for i, l := range e.lifeforms {
		pop[i] = ga.Individual{
			Genome:  l.Brain.Genome(),
			Fitness: l.CalculateFitness(e.params),
		}
	}
	return pop, env.Summarize(generation, e.step, e.lifeforms)
}
