package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"lifeforms/internal/env"
	"lifeforms/internal/ga"
)

// Logger handles all training output and artifact saving
type Logger struct {
	csvPath     string
	jsonPath    string
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	console     io.Writer
	initialized bool
}

// NewLogger creates a new logger writing console lines to stdout
func NewLogger(csvPath, jsonPath string) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		console:  os.Stdout,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, err
	}

	return l, nil
}

// SetConsole redirects console lines
func (l *Logger) SetConsole(w io.Writer) {
	l.console = w
}

// Init initializes the log files
func (l *Logger) Init() error {
	var err error

	l.csvFile, err = os.Create(l.csvPath)
	if err != nil {
		return err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)

	header := []string{
		"generation", "steps", "alive", "longest_lifespan",
		"best_fitness", "mean_fitness", "total_fitness", "mean_food", "mean_water",
	}
	if err := l.csvWriter.Write(header); err != nil {
		return err
	}

	l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// Close closes all log files
func (l *Logger) Close() {
	if l.csvWriter != nil {
		l.csvWriter.Flush()
	}
	if l.csvFile != nil {
		l.csvFile.Close()
	}
	if l.jsonFile != nil {
		l.jsonFile.Close()
	}
}

// LogGeneration writes a generation summary to CSV, JSONL and the console
func (l *Logger) LogGeneration(stats env.GenerationStats, elapsed time.Duration) error {
	if !l.initialized {
		return nil
	}

	row := []string{
		strconv.Itoa(stats.Generation),
		strconv.Itoa(stats.Steps),
		strconv.Itoa(stats.Alive),
		strconv.Itoa(stats.LongestLifeSpan),
		fmt.Sprintf("%.6f", stats.BestFitness),
		fmt.Sprintf("%.6f", stats.MeanFitness),
		fmt.Sprintf("%.6f", stats.TotalFitness),
		fmt.Sprintf("%.2f", stats.MeanFood),
		fmt.Sprintf("%.2f", stats.MeanWater),
	}
	if err := l.csvWriter.Write(row); err != nil {
		return err
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		return err
	}

	jsonLine, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if _, err := l.jsonFile.Write(append(jsonLine, '\n')); err != nil {
		return err
	}

	fmt.Fprintf(l.console, "Gen %s | Best: %.4f | Mean: %.4f | Steps: %s | Alive: %d | Longest: %s | %s\n",
		humanize.Comma(int64(stats.Generation)), stats.BestFitness, stats.MeanFitness,
		humanize.Comma(int64(stats.Steps)), stats.Alive,
		humanize.Comma(int64(stats.LongestLifeSpan)), elapsed.Round(time.Millisecond))
	return nil
}

// LogTopK prints the K fittest individuals
func (l *Logger) LogTopK(pop []ga.Individual, k int) {
	order := ga.RankByFitness(pop)
	if k > len(order) {
		k = len(order)
	}
	fmt.Fprintf(l.console, "  Top %d lifeforms:\n", k)
	for rank, i := range order[:k] {
		fmt.Fprintf(l.console, "    #%d: slot=%d fitness=%.4f\n", rank+1, i, pop[i].Fitness)
	}
}

// LogSaved reports a persisted generation
func (l *Logger) LogSaved(runID string, generation int, when time.Time) {
	fmt.Fprintf(l.console, "  Saved generation %s of run %s (%s)\n",
		humanize.Comma(int64(generation)), runID, humanize.Time(when))
}

// ChampionFile is the on-disk champion format
type ChampionFile struct {
	Generation int       `json:"generation"`
	Fitness    float64   `json:"fitness"`
	Topology   []int     `json:"topology"`
	Genome     []float64 `json:"genome"`
}

// SaveChampion saves the champion genome to a file
func SaveChampion(path string, champion ga.Individual, topology []int, gen int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data := ChampionFile{
		Generation: gen,
		Fitness:    champion.Fitness,
		Topology:   topology,
		Genome:     champion.Genome,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, jsonData, 0644)
}

// LoadChampion loads a champion file
func LoadChampion(path string) (*ChampionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var saved ChampionFile
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, err
	}

	return &saved, nil
}
