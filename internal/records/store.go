// Package records holds the in-memory snapshot of all study records shown
// to the user.
//
// The Store is a cache of the repository: it is never patched after a
// mutation. Instead every successful create, update or delete is followed
// by Refresh, which replaces the whole list.
package records

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/logging"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/storage"
)

// Store is the authoritative list of records for a session.
type Store struct {
	repo storage.Repository
	now  func() time.Time

	mu          sync.RWMutex
	records     []model.Record
	loading     bool
	refreshedAt time.Time
}

// New creates an empty store backed by repo. The store reports Loading
// until the first successful Refresh.
func New(repo storage.Repository) *Store {
	return &Store{
		repo:    repo,
		now:     time.Now,
		records: []model.Record{},
		loading: true,
	}
}

// Refresh replaces the held list with the repository's current list.
// On failure the list and loading flag are left as they were.
func (s *Store) Refresh(ctx context.Context) error {
	start := time.Now()
	log := logging.LoggerFromContext(ctx)

	recs, err := s.repo.List(ctx)
	if err != nil {
		log.Warn("refresh failed", logging.KeyOp, errors.OpList, logging.KeyError, err)
		return errors.AsRepositoryFailure(errors.OpList, err)
	}
	if err := checkUnique(recs); err != nil {
		log.Warn("refresh rejected", logging.KeyOp, errors.OpList, logging.KeyError, err)
		return err
	}

	snapshot := make([]model.Record, len(recs))
	copy(snapshot, recs)

	s.mu.Lock()
	s.records = snapshot
	s.loading = false
	s.refreshedAt = s.now()
	s.mu.Unlock()

	log.Debug("refreshed",
		logging.KeyCount, len(snapshot),
		logging.KeyDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

func checkUnique(recs []model.Record) error {
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if _, ok := seen[r.ID]; ok {
			return errors.NewRepositoryError(errors.OpList, fmt.Errorf("%w: %s", errors.ErrDuplicateID, r.ID))
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// Records returns a copy of the current list in repository order.
func (s *Store) Records() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Find returns the record with the given ID.
func (s *Store) Find(id string) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Record{}, false
}

// Loading reports whether no list has been loaded yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// RefreshedAt returns the time of the last successful Refresh, or the zero
// time if there has been none.
func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
