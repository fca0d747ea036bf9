// Package memory provides an in-memory rental source for tests and demo mode
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bikeshare/dashboard/internal/domain"
)

// Source implements domain.RentalSource over fixed record sets
type Source struct {
	mu     sync.Mutex
	tables map[string][]domain.RentalRecord
	loads  map[string]int
	err    error
}

// NewSource creates a new in-memory source keyed like a file path
func NewSource(tables map[string][]domain.RentalRecord) *Source {
	return &Source{
		tables: tables,
		loads:  make(map[string]int),
	}
}

// Name identifies the source kind
func (s *Source) Name() string {
	return "memory"
}

// Load returns a fresh table for key
func (s *Source) Load(ctx context.Context, key string) (*domain.RentalTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads[key]++

	if s.err != nil {
		return nil, s.err
	}
	records, ok := s.tables[key]
	if !ok {
		return nil, fmt.Errorf("memory: no dataset registered for %q", key)
	}

	return domain.NewRentalTable(key, records), nil
}

// FailWith makes every later Load return err; nil restores normal behaviour
func (s *Source) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Loads reports how many times key has been loaded
func (s *Source) Loads(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[key]
}
