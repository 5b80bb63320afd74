// Package memory is the in-memory backend: the default for local
// development and the store the test suites run against.
package memory

import (
	"context"
	"sort"
	"sync"

	"daybook/internal/core"
	"daybook/internal/ledger"
)

type Store struct {
	mu        sync.Mutex
	records   map[string]core.DailyRecord
	structure core.Structure
	gasState  core.GasState
	gasEvents []core.GasEvent
}

// New creates a store seeded with the default taxonomy.
func New() *Store {
	return &Store{
		records:   make(map[string]core.DailyRecord),
		structure: core.DefaultStructure(),
	}
}

// NewWithStructure creates a store seeded with a specific taxonomy.
func NewWithStructure(s core.Structure) *Store {
	return &Store{
		records:   make(map[string]core.DailyRecord),
		structure: s.Clone(),
	}
}

func (s *Store) SaveRecord(_ context.Context, r core.DailyRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r.Clone()
	return r.ID, nil
}

func (s *Store) GetRecord(_ context.Context, id string) (core.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return core.DailyRecord{}, ledger.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) ListRecords(_ context.Context) ([]core.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.DailyRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) DeleteRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *Store) LoadStructure(_ context.Context) (core.Structure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.structure.Clone(), nil
}

func (s *Store) SaveStructure(_ context.Context, structure core.Structure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.structure = structure.Clone()
	return nil
}

func (s *Store) LoadGasState(_ context.Context) (core.GasState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gasState, nil
}

func (s *Store) SaveGasState(_ context.Context, state core.GasState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gasState = state
	return nil
}

func (s *Store) AppendGasEvent(_ context.Context, ev core.GasEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gasEvents = append(s.gasEvents, ev)
	return nil
}

func (s *Store) ListGasEvents(_ context.Context) ([]core.GasEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.GasEvent(nil), s.gasEvents...), nil
}
