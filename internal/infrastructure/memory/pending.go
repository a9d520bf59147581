package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nebula-forge-api/internal/domain"
)

// PendingStore keeps pending registrations in process memory.
// Everything is lost on restart.
type PendingStore struct {
	mu      sync.Mutex
	records map[string]domain.PendingRegistration
}

func NewPendingStore() *PendingStore {
	return &PendingStore{records: make(map[string]domain.PendingRegistration)}
}

func (s *PendingStore) Put(_ context.Context, p *domain.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[p.Email] = *p
	return nil
}

func (s *PendingStore) Get(_ context.Context, email string) (*domain.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[email]
	if !ok {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

// Delete removes the record only if it still carries version.
func (s *PendingStore) Delete(_ context.Context, email, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[email]
	if !ok {
		return fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	if p.Version != version {
		return fmt.Errorf("pending registration superseded: %w", domain.ErrConflict)
	}
	delete(s.records, email)
	return nil
}

func (s *PendingStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for email, p := range s.records {
		if p.IsExpired(now) {
			delete(s.records, email)
			n++
		}
	}
	return n, nil
}

// Len reports the number of records held, expired or not.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
