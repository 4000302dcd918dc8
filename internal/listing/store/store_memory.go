// Package store persists market listings: an arena of records keyed by id plus
// an insertion-ordered id index, with per-entity Execute for atomic
// validate-then-mutate.
package store

import (
	"context"
	"iter"
	"sync"

	"veilcredit/internal/listing/models"
	"veilcredit/pkg/platform/sentinel"
)

// InMemory is the default store. Per-record locks serialize operations on one
// listing while leaving different listings fully parallel.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*entry
	ids     []string
}

type entry struct {
	mu      sync.Mutex
	listing *models.Listing
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*entry)}
}

// Create inserts a new listing or returns sentinel.ErrAlreadyUsed.
func (s *InMemory) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[listing.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.records[listing.ID] = &entry{listing: listing.Clone()}
	s.ids = append(s.ids, listing.ID)
	return nil
}

// FindByID returns a copy of the listing or sentinel.ErrNotFound.
func (s *InMemory) FindByID(_ context.Context, id string) (*models.Listing, error) {
	s.mu.RLock()
	e, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listing.Clone(), nil
}

// Execute runs validate then apply under the listing's lock. Two concurrent
// purchases against the same listing serialize here, so the quantity check and
// the decrement are indivisible. Validate errors abort without mutating.
func (s *InMemory) Execute(_ context.Context, id string, validate func(*models.Listing) error, apply func(*models.Listing)) (*models.Listing, error) {
	s.mu.RLock()
	e, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := validate(e.listing); err != nil {
		return nil, err
	}
	apply(e.listing)
	return e.listing.Clone(), nil
}

// ListIDs yields listing ids in creation order as a restartable sequence.
func (s *InMemory) ListIDs(_ context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		s.mu.RLock()
		snapshot := append([]string{}, s.ids...)
		s.mu.RUnlock()
		for _, id := range snapshot {
			if !yield(id) {
				return
			}
		}
	}
}

// Count reports the number of listings ever created.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}
