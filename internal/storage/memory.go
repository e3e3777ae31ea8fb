package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded records so callers never share slices with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	generations map[string]map[int][]byte
	latest      map[string]int
	champions   map[string][]byte
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.generations = make(map[string]map[int][]byte)
	s.latest = make(map[string]int)
	s.champions = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, generation Generation) error {
	payload, err := EncodeGeneration(generation)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	run, ok := s.generations[generation.RunID]
	if !ok {
		run = make(map[int][]byte)
		s.generations[generation.RunID] = run
	}
	run[generation.Number] = payload
	if latest, ok := s.latest[generation.RunID]; !ok || generation.Number > latest {
		s.latest[generation.RunID] = generation.Number
	}
	return nil
}

func (s *MemoryStore) GetGeneration(_ context.Context, runID string, number int) (Generation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return Generation{}, false, ErrNotInitialized
	}

	payload, ok := s.generations[runID][number]
	if !ok {
		return Generation{}, false, nil
	}
	generation, err := DecodeGeneration(payload)
	if err != nil {
		return Generation{}, false, err
	}
	return generation, true, nil
}

func (s *MemoryStore) LatestGeneration(ctx context.Context, runID string) (Generation, bool, error) {
	s.mu.RLock()
	latest, ok := s.latest[runID]
	initialized := s.initialized
	s.mu.RUnlock()

	if !initialized {
		return Generation{}, false, ErrNotInitialized
	}
	if !ok {
		return Generation{}, false, nil
	}
	return s.GetGeneration(ctx, runID, latest)
}

func (s *MemoryStore) SaveChampion(_ context.Context, champion Champion) error {
	payload, err := EncodeChampion(champion)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	s.champions[champion.RunID] = payload
	return nil
}

func (s *MemoryStore) GetChampion(_ context.Context, runID string) (Champion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return Champion{}, false, ErrNotInitialized
	}

	payload, ok := s.champions[runID]
	if !ok {
		return Champion{}, false, nil
	}
	champion, err := DecodeChampion(payload)
	if err != nil {
		return Champion{}, false, err
	}
	return champion, true, nil
}
