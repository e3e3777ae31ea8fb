package storage

import (
	"context"
	"errors"
	"fmt"

	"lifeforms/internal/nn"
)

// ErrNotInitialized is returned by stores used before Init
var ErrNotInitialized = errors.New("store is not initialized")

// VersionedRecord carries the schema and codec versions a record was written with.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Generation is a saved population: genomes in slot order with the fitness each earned.
type Generation struct {
	VersionedRecord
	RunID    string      `json:"run_id"`
	Number   int         `json:"number"`
	Topology []int       `json:"topology"`
	Genomes  [][]float64 `json:"genomes"`
	Fitness  []float64   `json:"fitness,omitempty"`
}

// Champion is the best genome seen in a run.
type Champion struct {
	VersionedRecord
	RunID      string    `json:"run_id"`
	Generation int       `json:"generation"`
	Fitness    float64   `json:"fitness"`
	Topology   []int     `json:"topology"`
	Genome     []float64 `json:"genome"`
}

// Validate checks every genome against the weight count of topology.
func (g Generation) Validate(topology []int) error {
	want, err := nn.GenomeLength(topology)
	if err != nil {
		return err
	}
	for i, genome := range g.Genomes {
		if len(genome) != want {
			return fmt.Errorf("generation %d slot %d: %w: got %d weights, want %d",
				g.Number, i, nn.ErrGenomeLengthMismatch, len(genome), want)
		}
	}
	if len(g.Fitness) != 0 && len(g.Fitness) != len(g.Genomes) {
		return fmt.Errorf("generation %d: %d fitness values for %d genomes", g.Number, len(g.Fitness), len(g.Genomes))
	}
	return nil
}

// Validate checks the champion genome against the weight count of topology.
func (c Champion) Validate(topology []int) error {
	want, err := nn.GenomeLength(topology)
	if err != nil {
		return err
	}
	if len(c.Genome) != want {
		return fmt.Errorf("champion of %s: %w: got %d weights, want %d", c.RunID, nn.ErrGenomeLengthMismatch, len(c.Genome), want)
	}
	return nil
}

// Store persists generations and champions per run.
type Store interface {
	Init(ctx context.Context) error
	SaveGeneration(ctx context.Context, generation Generation) error
	GetGeneration(ctx context.Context, runID string, number int) (Generation, bool, error)
	LatestGeneration(ctx context.Context, runID string) (Generation, bool, error)
	SaveChampion(ctx context.Context, champion Champion) error
	GetChampion(ctx context.Context, runID string) (Champion, bool, error)
}
