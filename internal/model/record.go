package model

import (
	"fmt"
	"strings"
	"time"
)

// Bounds of the hours-studied input. Only the input widgets clamp to these;
// persisted records are only guaranteed to be non-negative.
const (
	MinTime = 0
	MaxTime = 50
)

// Record is one logged study session.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Time      int       `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// SetKey sets the database key for this record.
func (r *Record) SetKey(key string) {
	r.ID = strings.TrimPrefix(key, PrefixRecord+":")
}

// GetKey returns the database key for this record.
func (r *Record) GetKey() string {
	return GenerateRecordKey(r.ID)
}

// Fields returns the mutable part of the record.
func (r Record) Fields() RecordFields {
	return RecordFields{Title: r.Title, Time: r.Time}
}

// GenerateRecordKey generates a database key for a record ID.
func GenerateRecordKey(id string) string {
	return fmt.Sprintf("%s:%s", PrefixRecord, id)
}

// RecordFields holds the values a caller may set on a record. The ID and
// creation time are always assigned by the repository.
type RecordFields struct {
	Title string `json:"title"`
	Time  int    `json:"time"`
}

// NewRecord creates a record from fields with the given identity.
func NewRecord(id string, fields RecordFields, createdAt time.Time) *Record {
	return &Record{
		ID:        id,
		Title:     fields.Title,
		Time:      fields.Time,
		CreatedAt: createdAt,
	}
}

// Draft is the in-progress, possibly invalid, edit of a record held by the
// create/edit dialog. ID is empty unless the dialog is editing.
type Draft struct {
	ID    string
	Title string
	Time  *int
}

// DraftFrom returns a draft pre-filled from a record.
func DraftFrom(r Record) Draft {
	t := r.Time
	return Draft{ID: r.ID, Title: r.Title, Time: &t}
}

// HasTime reports whether the time value has been set.
func (d Draft) HasTime() bool {
	return d.Time != nil
}

// Fields converts the draft to record fields. An unset time becomes zero,
// so callers must validate first.
func (d Draft) Fields() RecordFields {
	f := RecordFields{Title: d.Title}
	if d.Time != nil {
		f.Time = *d.Time
	}
	return f
}

// Clone returns a copy that shares no memory with d.
func (d Draft) Clone() Draft {
	c := d
	if d.Time != nil {
		t := *d.Time
		c.Time = &t
	}
	return c
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
