// Package store persists certificates. Implementations keep an arena of records
// keyed by id plus an insertion-ordered id index, and expose Execute for atomic
// validate-then-mutate on a single certificate.
package store

import (
	"context"
	"iter"
	"sync"

	"veilcredit/internal/certificate/models"
	"veilcredit/pkg/platform/sentinel"
)

// InMemory is the default store. A records map holds the arena; ids keeps
// issuance order for listing. Per-record locks let operations on different
// certificates proceed in parallel.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]*entry
	ids     []string
}

type entry struct {
	mu   sync.Mutex
	cert *models.Certificate
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*entry)}
}

// Create inserts a new certificate. Returns sentinel.ErrAlreadyUsed when the id
// is taken; ids are never recycled, so a retired certificate still blocks reuse.
func (s *InMemory) Create(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[cert.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.records[cert.ID] = &entry{cert: cert.Clone()}
	s.ids = append(s.ids, cert.ID)
	return nil
}

// FindByID returns a copy of the certificate or sentinel.ErrNotFound.
func (s *InMemory) FindByID(_ context.Context, id string) (*models.Certificate, error) {
	s.mu.RLock()
	e, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cert.Clone(), nil
}

// Execute runs validate then apply while holding the certificate's lock, making
// the pair atomic with respect to every other operation on the same id. The
// updated record is returned as a copy. Validate errors abort without mutating.
func (s *InMemory) Execute(_ context.Context, id string, validate func(*models.Certificate) error, apply func(*models.Certificate)) (*models.Certificate, error) {
	s.mu.RLock()
	e, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := validate(e.cert); err != nil {
		return nil, err
	}
	apply(e.cert)
	return e.cert.Clone(), nil
}

// ListIDs yields certificate ids in issuance order. The sequence is lazy,
// finite, and restartable: each range re-reads a fresh snapshot of the index.
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

// Count reports the number of issued certificates.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}
