package store

import (
	"context"

	"certgen/internal/certificate/models"
	dErrors "certgen/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across in-memory
	// and future implementations. Absence is a defined negative outcome,
	// not an internal failure.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "certificate record not found")
	// ErrDuplicateID rejects a Put for an identifier that already exists.
	// Records are write-once; a duplicate means the generator collided and
	// the caller should regenerate, never overwrite.
	ErrDuplicateID = dErrors.New(dErrors.CodeConflict, "certificate id already exists")
)

// Store is the single source of truth for issued certificates.
type Store interface {
	// Put inserts a new record. The id must not already be present.
	Put(ctx context.Context, record *models.CertificateRecord) error
	// Get returns the record for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.CertificateRecord, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
