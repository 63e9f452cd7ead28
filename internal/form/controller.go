// Package form implements the create/edit dialog: a Closed or Open state
// machine holding a draft record, its validation, and the commit to the
// repository.
package form

import (
	"context"
	"sync"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/logging"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/records"
	"github.com/manav03panchal/studylog/internal/storage"
	"github.com/manav03panchal/studylog/internal/validate"
)

// Mode says what an open dialog will do on submit.
type Mode int

const (
	// ModeCreate submits a new record. Its draft never has an ID.
	ModeCreate Mode = iota
	// ModeEdit updates the record whose ID the draft carries.
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller. When Open is false the other
// fields are zero.
type State struct {
	Open       bool
	Mode       Mode
	Draft      model.Draft
	Errors     []errors.Violation
	Submitting bool
}

// Controller owns the dialog state. It is safe for concurrent use; a
// submit runs without holding the lock so views stay responsive.
type Controller struct {
	repo  storage.Repository
	store *records.Store

	mu         sync.Mutex
	open       bool
	mode       Mode
	draft      model.Draft
	violations []errors.Violation
	submitting bool
}

// NewController creates a closed controller that commits to repo and
// refreshes store after every successful commit.
func NewController(repo storage.Repository, store *records.Store) *Controller {
	return &Controller{repo: repo, store: store}
}

// OpenCreate opens the dialog with an empty draft, discarding whatever was
// open before.
func (c *Controller) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return errors.ErrSubmitInFlight
	}
	c.open = true
	c.mode = ModeCreate
	c.draft = model.Draft{}
	c.violations = nil
	return nil
}

// OpenEdit opens the dialog with a draft copied from rec.
func (c *Controller) OpenEdit(rec model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return errors.ErrSubmitInFlight
	}
	c.open = true
	c.mode = ModeEdit
	c.draft = model.DraftFrom(rec)
	c.violations = nil
	return nil
}

// Close discards the draft. Closing a closed dialog is a no-op.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return errors.ErrSubmitInFlight
	}
	c.reset()
	return nil
}

func (c *Controller) reset() {
	c.open = false
	c.mode = ModeCreate
	c.draft = model.Draft{}
	c.violations = nil
}

// SetTitle sets the draft title.
func (c *Controller) SetTitle(title string) error {
	title = validate.SanitizeTitle(title)
	return c.edit(func(d *model.Draft) { d.Title = title })
}

// SetTime sets the draft time. A nil value marks it unset.
func (c *Controller) SetTime(hours *int) error {
	var v *int
	if hours != nil {
		v = model.IntPtr(*hours)
	}
	return c.edit(func(d *model.Draft) { d.Time = v })
}

// SetTimeInput parses s and sets the draft time. Blank input unsets it.
// Unparseable input leaves the draft unchanged.
func (c *Controller) SetTimeInput(s string) error {
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	return c.edit(func(d *model.Draft) { d.Time = v })
}

func (c *Controller) edit(fn func(*model.Draft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return errors.ErrFormClosed
	}
	if c.submitting {
		return errors.ErrSubmitInFlight
	}
	fn(&c.draft)
	return nil
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return State{}
	}
	s := State{
		Open:       true,
		Mode:       c.mode,
		Draft:      c.draft.Clone(),
		Submitting: c.submitting,
	}
	if len(c.violations) > 0 {
		s.Errors = append([]errors.Violation(nil), c.violations...)
	}
	return s
}

// IsOpen reports whether the dialog is open.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Submit validates the draft and commits it.
//
// An invalid draft returns a *errors.ValidationError and keeps the dialog
// open with the violations recorded; the repository is not called. A
// repository failure keeps the dialog open with the same draft. After a
// successful commit the store is refreshed and the dialog closes, even if
// that refresh fails, since the commit cannot be undone.
func (c *Controller) Submit(ctx context.Context) error {
	log := logging.LoggerFromContext(ctx)

	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return errors.ErrFormClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return errors.ErrSubmitInFlight
	}
	if v := Validate(c.draft); len(v) > 0 {
		c.violations = v
		mode := c.mode
		c.mu.Unlock()
		verr := errors.NewValidationError(v)
		log.Debug("submit rejected", logging.KeyMode, mode.String(), logging.KeyError, verr)
		return verr
	}
	c.violations = nil
	c.submitting = true
	mode, draft := c.mode, c.draft.Clone()
	c.mu.Unlock()

	if err := c.commit(ctx, mode, draft); err != nil {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		log.Warn("submit failed", logging.KeyMode, mode.String(), logging.KeyRecordID, draft.ID, logging.KeyError, err)
		return err
	}

	refreshErr := c.store.Refresh(ctx)

	c.mu.Lock()
	c.submitting = false
	c.reset()
	c.mu.Unlock()

	log.Debug("submitted", logging.KeyMode, mode.String(), logging.KeyRecordID, draft.ID)
	return refreshErr
}

func (c *Controller) commit(ctx context.Context, mode Mode, d model.Draft) error {
	switch mode {
	case ModeCreate:
		return errors.AsRepositoryFailure(errors.OpCreate, c.repo.Create(ctx, d.Fields()))
	case ModeEdit:
		return errors.AsRepositoryFailure(errors.OpUpdate, c.repo.Update(ctx, d.ID, d.Fields()))
	default:
		return errors.Wrapf(errors.ErrInvalidMode, "mode %d", int(mode))
	}
}
