package output

import (
	"time"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// RecordOutput represents a record in JSON output.
type RecordOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Time      int    `json:"time"`
	CreatedAt string `json:"created_at"`
}

// NewRecordOutput creates a RecordOutput from a Record.
func NewRecordOutput(r model.Record) *RecordOutput {
	return &RecordOutput{
		ID:        r.ID,
		Title:     r.Title,
		Time:      r.Time,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// RecordsResponse represents the record list output in JSON.
type RecordsResponse struct {
	Records    []*RecordOutput `json:"records"`
	TotalCount int             `json:"total_count"`
	TotalHours int             `json:"total_hours"`
}

// NewRecordsResponse creates a RecordsResponse from records.
func NewRecordsResponse(records []model.Record) *RecordsResponse {
	outputs := make([]*RecordOutput, len(records))
	total := 0
	for i, r := range records {
		outputs[i] = NewRecordOutput(r)
		total += r.Time
	}
	return &RecordsResponse{
		Records:    outputs,
		TotalCount: len(records),
		TotalHours: total,
	}
}

// MutationResponse is printed after add, edit and delete.
type MutationResponse struct {
	Status  string           `json:"status"`
	Op      string           `json:"op"`
	ID      string           `json:"id,omitempty"`
	Records *RecordsResponse `json:"records"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string             `json:"status"`
	Category   string             `json:"category"`
	Error      string             `json:"error"`
	Suggestion string             `json:"suggestion,omitempty"`
	Violations []errors.Violation `json:"violations,omitempty"`
}

// NewErrorResponse describes err for JSON output.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Status:     "error",
		Category:   errors.Classify(err).String(),
		Error:      err.Error(),
		Suggestion: errors.GetSuggestion(err),
	}
	if verr, ok := errors.AsValidationError(err); ok {
		resp.Violations = verr.Violations
	}
	return resp
}

// PrintRecords prints the record list.
func (j *JSONFormatter) PrintRecords(records []model.Record) error {
	return j.JSON(NewRecordsResponse(records))
}

// PrintMutation prints the outcome of a mutation and the refreshed list.
func (j *JSONFormatter) PrintMutation(op, id string, records []model.Record) error {
	return j.JSON(&MutationResponse{
		Status:  "ok",
		Op:      op,
		ID:      id,
		Records: NewRecordsResponse(records),
	})
}

// PrintError prints err.
func (j *JSONFormatter) PrintError(err error) error {
	return j.JSON(NewErrorResponse(err))
}
