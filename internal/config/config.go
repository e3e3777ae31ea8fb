package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"lifeforms/internal/env"
	"lifeforms/internal/ga"
	"lifeforms/internal/nn"
)

// ErrInvalid is returned by Validate for out-of-range settings
var ErrInvalid = errors.New("invalid config")

// Config is the root configuration structure
type Config struct {
	Seed    int64         `yaml:"seed" ini:"seed"`
	NN      NNConfig      `yaml:"nn" ini:"nn"`
	GA      GAConfig      `yaml:"ga" ini:"ga"`
	World   WorldConfig   `yaml:"world" ini:"world"`
	Logging LogConfig     `yaml:"logging" ini:"logging"`
	Storage StorageConfig `yaml:"storage" ini:"storage"`

	runIDGenerated bool `yaml:"-" ini:"-"`
}

// NNConfig defines neural network architecture
type NNConfig struct {
	Topology []int `yaml:"topology" ini:"topology" delim:","`
}

// GAConfig defines genetic algorithm parameters
type GAConfig struct {
	Population     int     `yaml:"population" ini:"population"`
	Elites         int     `yaml:"elites" ini:"elites"`
	CrossoverRate  float64 `yaml:"crossover_rate" ini:"crossover_rate"`
	MutationRate   float64 `yaml:"mutation_rate" ini:"mutation_rate"`
	MutationAmount float64 `yaml:"mutation_amount" ini:"mutation_amount"`
}

// WorldConfig defines the simulated world and its resource economy
type WorldConfig struct {
	Width              float64 `yaml:"width" ini:"width"`
	Height             float64 `yaml:"height" ini:"height"`
	GenerationLifetime int     `yaml:"generation_lifetime" ini:"generation_lifetime"`
	MaxFood            float64 `yaml:"max_food" ini:"max_food"`
	MaxWater           float64 `yaml:"max_water" ini:"max_water"`
	FoodUsedPerStep    float64 `yaml:"food_used_per_step" ini:"food_used_per_step"`
	WaterUsedPerStep   float64 `yaml:"water_used_per_step" ini:"water_used_per_step"`
	WaterDrankPerStep  float64 `yaml:"water_drank_per_step" ini:"water_drank_per_step"`
	FoodAtePerDot      float64 `yaml:"food_ate_per_dot" ini:"food_ate_per_dot"`
	StartSteps         float64 `yaml:"start_steps" ini:"start_steps"`
	MaxTurnSpeed       float64 `yaml:"max_turn_speed" ini:"max_turn_speed"`
	NumFood            int     `yaml:"num_food" ini:"num_food"`
}

// LogConfig defines logging parameters
type LogConfig struct {
	EveryGenSummary bool   `yaml:"every_gen_summary" ini:"every_gen_summary"`
	TopN            int    `yaml:"topn" ini:"topn"`
	SaveEvery       int    `yaml:"save_every" ini:"save_every"`
	CSVPath         string `yaml:"csv_path" ini:"csv_path"`
	JSONPath        string `yaml:"json_path" ini:"json_path"`
	ChampionPath    string `yaml:"champion_path" ini:"champion_path"`
}

// StorageConfig selects where generations are persisted
type StorageConfig struct {
	Backend    string `yaml:"backend" ini:"backend"` // memory|sqlite
	SQLitePath string `yaml:"sqlite_path" ini:"sqlite_path"`
	RunID      string `yaml:"run_id" ini:"run_id"`
}

// Default returns the settings of the reference simulation
func Default() Config {
	return Config{
		Seed: 1337,
		NN: NNConfig{
			Topology: []int{env.NumSensors, 14, 12, env.NumActions},
		},
		GA: GAConfig{
			Population:     30,
			Elites:         4,
			CrossoverRate:  0.7,
			MutationRate:   0.1,
			MutationAmount: 0.3,
		},
		World: WorldConfig{
			Width:              600,
			Height:             600,
			GenerationLifetime: 6000,
			MaxFood:            10000,
			MaxWater:           10000,
			FoodUsedPerStep:    1,
			WaterUsedPerStep:   1,
			WaterDrankPerStep:  3,
			FoodAtePerDot:      250,
			StartSteps:         1500,
			MaxTurnSpeed:       0.3,
			NumFood:            20,
		},
		Logging: LogConfig{
			EveryGenSummary: true,
			TopN:            4,
			SaveEvery:       50,
			CSVPath:         "runs/run.csv",
			JSONPath:        "runs/run.jsonl",
			ChampionPath:    "artifacts/champion.json",
		},
		Storage: StorageConfig{
			Backend:    "memory",
			SQLitePath: "runs/lifeforms.db",
		},
	}
}

// Load reads a YAML (or .ini) config file over the defaults and validates it
func Load(path string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini":
		src, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment:         true,
			UnescapeValueCommentSymbols: true,
		}, path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := src.MapTo(&cfg); err != nil {
			return nil, fmt.Errorf("map config %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.RunID == "" {
		cfg.Storage.RunID = uuid.NewString()
		cfg.runIDGenerated = true
	}
}

// RunIDGenerated reports whether the run ID was made up at load time because
// none was configured. Such a run cannot be found again by a later process.
func (c *Config) RunIDGenerated() bool {
	return c.runIDGenerated
}

// SetRunID overrides the configured run ID
func (c *Config) SetRunID(id string) {
	c.Storage.RunID = id
	c.runIDGenerated = false
}

// Validate checks every section for values the components would reject
func (c *Config) Validate() error {
	if _, err := nn.GenomeLength(c.NN.Topology); err != nil {
		return fmt.Errorf("%w: nn.topology: %w", ErrInvalid, err)
	}
	if in := c.NN.Topology[0]; in != env.NumSensors {
		return fmt.Errorf("%w: nn.topology input width %d, world provides %d sensors", ErrInvalid, in, env.NumSensors)
	}
	if out := c.NN.Topology[len(c.NN.Topology)-1]; out != env.NumActions {
		return fmt.Errorf("%w: nn.topology output width %d, world reads %d actions", ErrInvalid, out, env.NumActions)
	}
	if c.GA.Population <= 0 {
		return fmt.Errorf("%w: ga.population must be positive, got %d", ErrInvalid, c.GA.Population)
	}
	if err := c.GAParams().Validate(c.GA.Population); err != nil {
		return fmt.Errorf("%w: ga: %w", ErrInvalid, err)
	}
	if err := c.WorldParams().Validate(); err != nil {
		return fmt.Errorf("%w: world: %w", ErrInvalid, err)
	}
	switch c.Storage.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: storage.backend %q", ErrInvalid, c.Storage.Backend)
	}
	return nil
}

// GenomeSize returns the weight count of the configured topology
func (c *Config) GenomeSize() int {
	size, _ := nn.GenomeLength(c.NN.Topology)
	return size
}

// GAParams returns the breeding settings as a value
func (c *Config) GAParams() ga.Params {
	return ga.Params{
		Elites:         c.GA.Elites,
		CrossoverRate:  c.GA.CrossoverRate,
		MutationRate:   c.GA.MutationRate,
		MutationAmount: c.GA.MutationAmount,
	}
}

// WorldParams returns the world constants as a value
func (c *Config) WorldParams() env.Params {
	w := c.World
	return env.Params{
		Width:              w.Width,
		Height:             w.Height,
		GenerationLifetime: w.GenerationLifetime,
		MaxFood:            w.MaxFood,
		MaxWater:           w.MaxWater,
		FoodUsedPerStep:    w.FoodUsedPerStep,
		WaterUsedPerStep:   w.WaterUsedPerStep,
		WaterDrankPerStep:  w.WaterDrankPerStep,
		FoodAtePerDot:      w.FoodAtePerDot,
		StartSteps:         w.StartSteps,
		MaxTurnSpeed:       w.MaxTurnSpeed,
		NumFood:            w.NumFood,
	}
}
