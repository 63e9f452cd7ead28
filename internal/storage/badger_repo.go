package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
)

// BadgerRepo stores records in a Badger database. Keys are
// "record:<uuidv7>", so iteration order is creation order.
type BadgerRepo struct {
	db  *DB
	now func() time.Time
}

var _ Repository = (*BadgerRepo)(nil)

// NewBadgerRepo creates a new record repository on db.
func NewBadgerRepo(db *DB) *BadgerRepo {
	return &BadgerRepo{db: db, now: time.Now}
}

// List retrieves all records.
func (r *BadgerRepo) List(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewRepositoryError(errors.OpList, err)
	}
	recs, err := GetAllByPrefix(r.db, model.PrefixRecord+":", func() *model.Record {
		return &model.Record{}
	})
	if err != nil {
		return nil, errors.NewRepositoryError(errors.OpList, err)
	}
	out := make([]model.Record, len(recs))
	for i, rec := range recs {
		out[i] = *rec
	}
	return out, nil
}

// Create creates a new record with a generated ID.
func (r *BadgerRepo) Create(ctx context.Context, fields model.RecordFields) error {
	if err := ctx.Err(); err != nil {
		return errors.NewRepositoryError(errors.OpCreate, err)
	}
	// Generate UUID v7 for time-sortable keys
	id, err := uuid.NewV7()
	if err != nil {
		return errors.NewRepositoryError(errors.OpCreate, err)
	}
	rec := model.NewRecord(id.String(), fields, r.now().UTC())
	if err := r.db.Set(rec); err != nil {
		return errors.NewRepositoryError(errors.OpCreate, err)
	}
	return nil
}

// Update replaces title and time of an existing record.
func (r *BadgerRepo) Update(ctx context.Context, id string, fields model.RecordFields) error {
	if err := ctx.Err(); err != nil {
		return errors.NewRepositoryError(errors.OpUpdate, err)
	}
	err := Replace(r.db, model.GenerateRecordKey(id), func() *model.Record {
		return &model.Record{}
	}, func(rec *model.Record) {
		rec.Title = fields.Title
		rec.Time = fields.Time
	})
	return translateBadgerErr(errors.OpUpdate, err)
}

// Delete removes a record by ID.
func (r *BadgerRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewRepositoryError(errors.OpDelete, err)
	}
	return translateBadgerErr(errors.OpDelete, r.db.Delete(model.GenerateRecordKey(id)))
}

// Ping reports whether the database is open.
func (r *BadgerRepo) Ping(ctx context.Context) error {
	if r.db.Badger().IsClosed() {
		return errors.NewRepositoryError(errors.OpList, errors.ErrBackendUnhealthy)
	}
	return nil
}

// Close closes the underlying database.
func (r *BadgerRepo) Close() error {
	return r.db.Close()
}

func translateBadgerErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsErrKeyNotFound(err) {
		return errors.NewRepositoryError(op, errors.ErrRecordNotFound)
	}
	return errors.NewRepositoryError(op, err)
}
