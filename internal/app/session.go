// Package app wires the record store and the form controller into a
// session that views drive with intents.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/form"
	"github.com/manav03panchal/studylog/internal/logging"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/records"
	"github.com/manav03panchal/studylog/internal/storage"
)

// Intent names, used in logs.
const (
	IntentStart      = "start"
	IntentOpenCreate = "open_create"
	IntentOpenEdit   = "open_edit"
	IntentClose      = "close"
	IntentSubmit     = "submit"
	IntentDelete     = "delete"
	IntentReload     = "reload"
)

// Session is one user's view of the records.
type Session struct {
	repo  storage.Repository
	store *records.Store
	form  *form.Controller
}

// NewSession creates a session on repo. Call Start before reading records.
func NewSession(repo storage.Repository) *Session {
	store := records.New(repo)
	return &Session{
		repo:  repo,
		store: store,
		form:  form.NewController(repo, store),
	}
}

// Store returns the session's record store.
func (s *Session) Store() *records.Store {
	return s.store
}

// Form returns the session's dialog controller.
func (s *Session) Form() *form.Controller {
	return s.form
}

// Start loads the initial list.
func (s *Session) Start(ctx context.Context) error {
	ctx, done := s.begin(ctx, IntentStart)
	err := s.store.Refresh(ctx)
	done(err)
	return err
}

// Reload re-fetches the list, for example after a failed refresh left it
// stale.
func (s *Session) Reload(ctx context.Context) error {
	ctx, done := s.begin(ctx, IntentReload)
	err := s.store.Refresh(ctx)
	done(err)
	return err
}

// OpenCreate opens the dialog for a new record.
func (s *Session) OpenCreate(ctx context.Context) error {
	_, done := s.begin(ctx, IntentOpenCreate)
	err := s.form.OpenCreate()
	done(err)
	return err
}

// OpenEdit opens the dialog for the record with the given ID, as currently
// held by the store.
func (s *Session) OpenEdit(ctx context.Context, id string) error {
	_, done := s.begin(ctx, IntentOpenEdit, logging.KeyRecordID, id)
	rec, ok := s.store.Find(id)
	if !ok {
		err := fmt.Errorf("%w: %s", errors.ErrRecordNotFound, id)
		done(err)
		return err
	}
	err := s.form.OpenEdit(rec)
	done(err)
	return err
}

// Close closes the dialog without saving.
func (s *Session) Close(ctx context.Context) error {
	_, done := s.begin(ctx, IntentClose)
	err := s.form.Close()
	done(err)
	return err
}

// SetTitle sets the open draft's title.
func (s *Session) SetTitle(title string) error {
	return s.form.SetTitle(title)
}

// SetTime sets the open draft's time.
func (s *Session) SetTime(hours *int) error {
	return s.form.SetTime(hours)
}

// SetTimeInput parses and sets the open draft's time.
func (s *Session) SetTimeInput(input string) error {
	return s.form.SetTimeInput(input)
}

// Submit validates and commits the open draft.
func (s *Session) Submit(ctx context.Context) error {
	ctx, done := s.begin(ctx, IntentSubmit)
	err := s.form.Submit(ctx)
	done(err)
	return err
}

// Delete removes the record with the given ID and refreshes the store. A
// failed delete leaves the store as it was.
func (s *Session) Delete(ctx context.Context, id string) error {
	ctx, done := s.begin(ctx, IntentDelete, logging.KeyRecordID, id)
	if err := s.repo.Delete(ctx, id); err != nil {
		err = errors.AsRepositoryFailure(errors.OpDelete, err)
		done(err)
		return err
	}
	err := s.store.Refresh(ctx)
	done(err)
	return err
}

// Records returns the current list.
func (s *Session) Records() []model.Record {
	return s.store.Records()
}

// begin tags ctx with an intent ID and logs the intent. The returned func
// logs the outcome.
func (s *Session) begin(ctx context.Context, intent string, args ...any) (context.Context, func(error)) {
	ctx = logging.NewIntentContext(ctx)
	log := logging.LoggerFromContext(ctx).With(logging.KeyIntent, intent)
	if len(args) > 0 {
		log = log.With(args...)
	}
	start := time.Now()
	log.Debug("intent")
	return ctx, func(err error) {
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			log.Warn("intent failed", logging.KeyDuration, elapsed, logging.KeyError, err)
			return
		}
		log.Debug("intent done", logging.KeyDuration, elapsed)
	}
}
