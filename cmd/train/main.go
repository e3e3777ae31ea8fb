package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"lifeforms/internal/config"
	"lifeforms/internal/eval"
	"lifeforms/internal/ga"
	"lifeforms/internal/logging"
	"lifeforms/internal/storage"
)

// errRunIDRequired is returned when resuming a run whose ID was generated at load time
var errRunIDRequired = errors.New("storage.run_id must be set to resume a run")

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/lifeforms.yaml", "path to config file (.yaml or .ini)")
	generations := flag.Int("generations", 1000, "number of generations to run")
	resume := flag.Bool("resume", false, "continue from the latest stored generation of the configured run")
	seedChampion := flag.String("seed-champion", "", "champion JSON file to install into the first ga.elites slots")
	flag.Parse()

	if err := run(*configPath, *generations, *resume, *seedChampion); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, generations int, resume bool, seedChampion string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Lifeforms Trainer")
	fmt.Printf("Config: %s, Run: %s\n", configPath, cfg.Storage.RunID)
	fmt.Printf("Topology: %v (genome=%d)\n", cfg.NN.Topology, cfg.GenomeSize())
	fmt.Printf("Population: %d, Elites: %d, Crossover: %.2f, Mutation: %.2f/%.2f\n",
		cfg.GA.Population, cfg.GA.Elites, cfg.GA.CrossoverRate, cfg.GA.MutationRate, cfg.GA.MutationAmount)
	fmt.Println("---")

	rng := rand.New(rand.NewSource(cfg.Seed))

	store, err := storage.NewStore(cfg.Storage.Backend, cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("initializing %s store: %w", cfg.Storage.Backend, err)
	}
	defer storage.CloseIfSupported(store)

	evaluator, err := eval.NewEvaluator(cfg, rng)
	if err != nil {
		return fmt.Errorf("creating evaluator: %w", err)
	}

	first := 1
	if resume {
		first, err = resumeRun(ctx, store, cfg, evaluator, rng)
		if err != nil {
			return err
		}
	}
	if seedChampion != "" {
		n, err := seedFromChampion(seedChampion, cfg, evaluator)
		if err != nil {
			return fmt.Errorf("seeding champion: %w", err)
		}
		fmt.Printf("Seeded %d slots from %s\n", n, seedChampion)
	}

	logger, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Close()

	var champion *storage.Champion
	if resume {
		if c, ok, err := store.GetChampion(ctx, cfg.Storage.RunID); err != nil {
			return err
		} else if ok {
			champion = &c
		}
	}

	startTime := time.Now()
	last := first + generations - 1
	for gen := first; gen <= last; gen++ {
		genStart := time.Now()

		// 1. Live one full generation
		pop, stats := evaluator.RunGeneration(gen)

		// 2. Log generation summary
		if cfg.Logging.EveryGenSummary {
			if err := logger.LogGeneration(stats, time.Since(genStart)); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to log generation: %v\n", err)
			}
		}
		if cfg.Logging.TopN > 0 && gen%10 == 0 {
			logger.LogTopK(pop, cfg.Logging.TopN)
		}

		// 3. Track the champion
		best := pop[ga.Best(pop)]
		if champion == nil || best.Fitness > champion.Fitness {
			champion = &storage.Champion{
				VersionedRecord: storage.Current(),
				RunID:           cfg.Storage.RunID,
				Generation:      gen,
				Fitness:         best.Fitness,
				Topology:        cfg.NN.Topology,
				Genome:          best.Clone().Genome,
			}
			if err := store.SaveChampion(ctx, *champion); err != nil {
				return fmt.Errorf("saving champion: %w", err)
			}
		}

		// 4. Persist the evaluated population
		if (cfg.Logging.SaveEvery > 0 && gen%cfg.Logging.SaveEvery == 0) || gen == last {
			if err := store.SaveGeneration(ctx, snapshot(cfg, gen, pop)); err != nil {
				return fmt.Errorf("saving generation %d: %w", gen, err)
			}
			logger.LogSaved(cfg.Storage.RunID, gen, time.Now())
		}

		// 5. Breed the next generation
		next, err := ga.Evolve(pop, cfg.GAParams(), rng)
		if err != nil {
			return fmt.Errorf("evolving generation %d: %w", gen, err)
		}
		if err := evaluator.Install(next); err != nil {
			return err
		}
	}

	elapsed := time.Since(startTime)
	fmt.Println("---")
	fmt.Printf("Training complete! %d generations in %v\n", generations, elapsed)
	if champion != nil {
		fmt.Printf("Champion: gen %d, fitness %.4f\n", champion.Generation, champion.Fitness)
		final := ga.Individual{Genome: champion.Genome, Fitness: champion.Fitness}
		if err := logging.SaveChampion(cfg.Logging.ChampionPath, final, champion.Topology, champion.Generation); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save champion: %v\n", err)
		}
	}
	return nil
}

// resumeRun installs the latest stored generation and returns the number of
// the first generation left to run
func resumeRun(ctx context.Context, store storage.Store, cfg *config.Config, e *eval.Evaluator, rng *rand.Rand) (int, error) {
	if cfg.RunIDGenerated() {
		return 0, errRunIDRequired
	}
	latest, ok, err := store.LatestGeneration(ctx, cfg.Storage.RunID)
	if err != nil {
		return 0, fmt.Errorf("loading latest generation: %w", err)
	}
	if !ok {
		fmt.Printf("No stored generation for run %s, starting fresh\n", cfg.Storage.RunID)
		return 1, nil
	}
	if err := latest.Validate(cfg.NN.Topology); err != nil {
		return 0, err
	}

	// Unscored snapshots are replayed as-is
	genomes := latest.Genomes
	first := latest.Number
	if len(latest.Fitness) == len(latest.Genomes) {
		pop := make([]ga.Individual, len(latest.Genomes))
		for i := range pop {
			pop[i] = ga.Individual{Genome: latest.Genomes[i], Fitness: latest.Fitness[i]}
		}
		genomes, err = ga.Evolve(pop, cfg.GAParams(), rng)
		if err != nil {
			return 0, err
		}
		first++
	}
	if err := e.Install(genomes); err != nil {
		return 0, fmt.Errorf("installing generation %d: %w", latest.Number, err)
	}

	fmt.Printf("Resumed run %s at generation %d\n", cfg.Storage.RunID, first)
	return first, nil
}

// seedFromChampion installs a saved champion into the first ga.elites slots,
// or the first slot when elitism is off, and returns how many slots it filled
func seedFromChampion(path string, cfg *config.Config, e *eval.Evaluator) (int, error) {
	saved, err := logging.LoadChampion(path)
	if err != nil {
		return 0, err
	}
	n := max(cfg.GA.Elites, 1)
	if err := e.Upgrade(saved.Genome, n); err != nil {
		return 0, err
	}
	return n, nil
}

func snapshot(cfg *config.Config, gen int, pop []ga.Individual) storage.Generation {
	g := storage.Generation{
		VersionedRecord: storage.Current(),
		RunID:           cfg.Storage.RunID,
		Number:          gen,
		Topology:        cfg.NN.Topology,
		Genomes:         make([][]float64, len(pop)),
		Fitness:         make([]float64, len(pop)),
	}
	for i, ind := range pop {
		g.Genomes[i] = ind.Genome
		g.Fitness[i] = ind.Fitness
	}
	return g
}
