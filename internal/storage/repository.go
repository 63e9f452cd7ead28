// Package storage provides the record repositories for Studylog.
//
// Every backend implements Repository and reports failures as
// *errors.RepositoryError. Backends assign IDs and creation times; callers
// only ever supply RecordFields.
package storage

import (
	"context"

	"github.com/manav03panchal/studylog/internal/model"
)

// Repository is the persistence boundary for records.
type Repository interface {
	// List returns every record in the backend's natural order.
	List(ctx context.Context) ([]model.Record, error)
	// Create stores a new record built from fields.
	Create(ctx context.Context, fields model.RecordFields) error
	// Update replaces the fields of the record with the given ID.
	// An unknown ID fails with ErrRecordNotFound.
	Update(ctx context.Context, id string, fields model.RecordFields) error
	// Delete removes the record with the given ID.
	// An unknown ID fails with ErrRecordNotFound.
	Delete(ctx context.Context, id string) error
}

// Closer is implemented by repositories holding resources.
type Closer interface {
	Close() error
}

// Pinger is implemented by repositories that can report backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}
