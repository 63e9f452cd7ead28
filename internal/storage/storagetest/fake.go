// Package storagetest provides an in-memory, call-recording repository for
// tests of code built on storage.Repository.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/storage"
)

// Call is one recorded repository call.
type Call struct {
	Op     string
	ID     string
	Fields model.RecordFields
}

// Repo is a fake storage.Repository. Records are kept in insertion order
// with sequential IDs ("r1", "r2", ...).
type Repo struct {
	mu      sync.Mutex
	records []model.Record
	calls   []Call
	nextID  int
	errs    map[string]error
	listOut []model.Record
	gate    chan struct{}
	entered chan string
}

var _ storage.Repository = (*Repo)(nil)

// New creates a fake repository holding the given records.
func New(seed ...model.Record) *Repo {
	r := &Repo{errs: make(map[string]error)}
	r.records = append(r.records, seed...)
	r.nextID = len(seed)
	return r
}

// FailNext makes the next call of op fail with a RepositoryError carrying msg.
func (r *Repo) FailNext(op, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[op] = &errors.RepositoryError{Op: op, Message: msg}
}

// ReturnOnNextList makes the next List return recs instead of the held list.
func (r *Repo) ReturnOnNextList(recs []model.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listOut = recs
}

// Block makes every following call wait until Release. Entered receives the
// op of each call as it starts waiting.
func (r *Repo) Block() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
	r.entered = make(chan string, 16)
}

// Entered returns the channel signalled by blocked calls.
func (r *Repo) Entered() <-chan string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entered
}

// Release unblocks all waiting and future calls.
func (r *Repo) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gate != nil {
		close(r.gate)
		r.gate = nil
	}
}

// Calls returns the recorded calls in order.
func (r *Repo) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops returns the op of every recorded call in order.
func (r *Repo) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many calls of op were recorded.
func (r *Repo) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the recorded calls.
func (r *Repo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Stored returns a copy of the records currently held.
func (r *Repo) Stored() []model.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Repo) begin(ctx context.Context, c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	gate, entered := r.gate, r.entered
	r.mu.Unlock()

	if gate != nil {
		entered <- c.Op
		select {
		case <-gate:
		case <-ctx.Done():
			return errors.NewRepositoryError(c.Op, ctx.Err())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.errs[c.Op]; ok {
		delete(r.errs, c.Op)
		return err
	}
	return nil
}

// List implements storage.Repository.
func (r *Repo) List(ctx context.Context) ([]model.Record, error) {
	if err := r.begin(ctx, Call{Op: errors.OpList}); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listOut != nil {
		out := r.listOut
		r.listOut = nil
		return out, nil
	}
	out := make([]model.Record, len(r.records))
	copy(out, r.records)
	return out, nil
}

// Create implements storage.Repository.
func (r *Repo) Create(ctx context.Context, fields model.RecordFields) error {
	if err := r.begin(ctx, Call{Op: errors.OpCreate, Fields: fields}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := fmt.Sprintf("r%d", r.nextID)
	r.records = append(r.records, *model.NewRecord(id, fields, time.Now().UTC()))
	return nil
}

// Update implements storage.Repository.
func (r *Repo) Update(ctx context.Context, id string, fields model.RecordFields) error {
	if err := r.begin(ctx, Call{Op: errors.OpUpdate, ID: id, Fields: fields}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].Title = fields.Title
			r.records[i].Time = fields.Time
			return nil
		}
	}
	return errors.NewRepositoryError(errors.OpUpdate, errors.ErrRecordNotFound)
}

// Delete implements storage.Repository.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.begin(ctx, Call{Op: errors.OpDelete, ID: id}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return errors.NewRepositoryError(errors.OpDelete, errors.ErrRecordNotFound)
}
