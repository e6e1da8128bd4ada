package store

import (
	"context"
	"sync"

	"certgen/internal/certificate/models"
)

// InMemory is the process-lifetime certificate store. Records live only as
// long as the process; durability is deliberately out of scope.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]models.CertificateRecord
}

// NewInMemory builds an empty store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]models.CertificateRecord)}
}

// Put inserts record under its CertificateID. Existing keys are never
// overwritten; callers get ErrDuplicateID and must regenerate.
func (s *InMemory) Put(_ context.Context, record *models.CertificateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.CertificateID]; exists {
		return ErrDuplicateID
	}
	// Stored by value so later caller mutations cannot reach the record.
	s.records[record.CertificateID] = *record
	return nil
}

// Get returns a copy of the record for id, or ErrNotFound.
func (s *InMemory) Get(_ context.Context, id string) (*models.CertificateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[id]; ok {
		return &rec, nil
	}
	return nil, ErrNotFound
}

// Count returns the number of stored records.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
