package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"lifeforms/internal/config"
	"lifeforms/internal/env"
	"lifeforms/internal/eval"
	"lifeforms/internal/ga"
	"lifeforms/internal/logging"
	"lifeforms/internal/storage"
)

// errRunIDRequired is returned when the store is read without a known run
var errRunIDRequired = errors.New("set storage.run_id or -run to play from the store")

func main() {
	// Parse flags
	configPath := flag.String("config", "configs/lifeforms.yaml", "path to config file (.yaml or .ini)")
	runID := flag.String("run", "", "run to load from the store (defaults to storage.run_id)")
	generation := flag.Int("generation", 0, "stored generation to replay; 0 plays the run's champion")
	championPath := flag.String("champion", "", "play a champion JSON file instead of the store")
	seed := flag.Int64("seed", 0, "world seed (defaults to the config seed)")
	tracePath := flag.String("trace", "", "write the path of one lifeform to this JSON file")
	traceSlot := flag.Int("slot", 0, "population slot to trace")
	every := flag.Int("every", 0, "print a status line every N steps (0 disables)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *runID != "" {
		cfg.SetRunID(*runID)
	}
	if flagPassed(flag.CommandLine, "seed") {
		cfg.Seed = *seed
	}

	genomes, label, err := loadGenomes(cfg, *championPath, *generation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading genomes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Playing %s\n", label)
	fmt.Printf("Config: %s, Seed: %d\n", *configPath, cfg.Seed)
	fmt.Println()

	evaluator, err := eval.NewEvaluator(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating evaluator: %v\n", err)
		os.Exit(1)
	}
	if err := evaluator.Install(genomes); err != nil {
		fmt.Fprintf(os.Stderr, "Error installing genomes: %v\n", err)
		os.Exit(1)
	}

	var trace *env.Trace
	if *tracePath != "" {
		if *traceSlot < 0 || *traceSlot >= len(genomes) {
			fmt.Fprintf(os.Stderr, "Error: slot %d outside population of %d\n", *traceSlot, len(genomes))
			os.Exit(1)
		}
		trace = env.NewTrace(*traceSlot, cfg.WorldParams())
	}

	// Run the generation step by step
	lifeforms := evaluator.Lifeforms()
	for !evaluator.Done() {
		alive := evaluator.Step()
		if trace != nil {
			trace.Record(evaluator.Steps(), lifeforms[*traceSlot])
		}
		if *every > 0 && evaluator.Steps()%*every == 0 {
			fmt.Printf("  Step: %5d | Alive: %d\n", evaluator.Steps(), alive)
		}
		if alive == 0 {
			break
		}
	}
	pop, stats := evaluator.Score(0)

	if trace != nil {
		trace.Finish(evaluator.Steps(), lifeforms[*traceSlot])
		if err := trace.Save(*tracePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save trace: %v\n", err)
		}
	}

	printStats(lifeforms, pop, stats)
}

// loadGenomes returns one genome per population slot. A single champion genome
// is copied into every slot.
func loadGenomes(cfg *config.Config, championPath string, generation int) ([][]float64, string, error) {
	if championPath != "" {
		champion, err := logging.LoadChampion(championPath)
		if err != nil {
			return nil, "", err
		}
		c := storage.Champion{Generation: champion.Generation, Fitness: champion.Fitness, Genome: champion.Genome}
		if err := c.Validate(cfg.NN.Topology); err != nil {
			return nil, "", err
		}
		label := fmt.Sprintf("champion from %s (gen %d, fitness=%.4f)", championPath, champion.Generation, champion.Fitness)
		return fill(champion.Genome, cfg.GA.Population), label, nil
	}

	if cfg.RunIDGenerated() {
		return nil, "", errRunIDRequired
	}

	ctx := context.Background()
	store, err := storage.NewStore(cfg.Storage.Backend, cfg.Storage.SQLitePath)
	if err != nil {
		return nil, "", err
	}
	if err := store.Init(ctx); err != nil {
		return nil, "", err
	}
	defer storage.CloseIfSupported(store)

	if generation == 0 {
		champion, ok, err := store.GetChampion(ctx, cfg.Storage.RunID)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", fmt.Errorf("no champion stored for run %q", cfg.Storage.RunID)
		}
		if err := champion.Validate(cfg.NN.Topology); err != nil {
			return nil, "", err
		}
		label := fmt.Sprintf("champion of run %s (gen %d, fitness=%.4f)", champion.RunID, champion.Generation, champion.Fitness)
		return fill(champion.Genome, cfg.GA.Population), label, nil
	}

	stored, ok, err := store.GetGeneration(ctx, cfg.Storage.RunID, generation)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("generation %d not stored for run %q", generation, cfg.Storage.RunID)
	}
	if err := stored.Validate(cfg.NN.Topology); err != nil {
		return nil, "", err
	}
	if len(stored.Genomes) != cfg.GA.Population {
		return nil, "", fmt.Errorf("generation %d holds %d genomes, config population is %d",
			generation, len(stored.Genomes), cfg.GA.Population)
	}
	return stored.Genomes, fmt.Sprintf("generation %d of run %s", generation, stored.RunID), nil
}

// flagPassed reports whether name was set on the command line
func flagPassed(fs *flag.FlagSet, name string) bool {
	passed := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

func fill(genome []float64, n int) [][]float64 {
	genomes := make([][]float64, n)
	for i := range genomes {
		genomes[i] = genome
	}
	return genomes
}

func printStats(lifeforms []*env.Lifeform, pop []ga.Individual, stats env.GenerationStats) {
	fmt.Println("═══════════════════════════════════")
	fmt.Printf("  Steps: %d, Alive: %d, Longest: %d\n", stats.Steps, stats.Alive, stats.LongestLifeSpan)
	fmt.Printf("  Best: %.4f, Mean: %.4f\n", stats.BestFitness, stats.MeanFitness)
	fmt.Println("═══════════════════════════════════")
	for _, i := range ga.RankByFitness(pop) {
		l := lifeforms[i]
		fmt.Printf("  slot %2d | fitness %.4f | lifespan %5d | food %7.1f | water %7.1f\n",
			i, pop[i].Fitness, l.LifeSpan, l.Food, l.Water)
	}
}
