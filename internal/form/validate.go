package form

import (
	"strconv"
	"strings"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
)

// Field names used in violations.
const (
	FieldTitle = "title"
	FieldTime  = "time"
)

// Validate checks a draft. Every rule runs independently, so a draft can
// have several violations at once. A nil result means the draft is valid.
func Validate(d model.Draft) []errors.Violation {
	var v []errors.Violation

	if strings.TrimSpace(d.Title) == "" {
		v = append(v, errors.Violation{
			Field:   FieldTitle,
			Rule:    errors.RuleRequired,
			Message: "title is required",
		})
	}

	switch {
	case d.Time == nil:
		v = append(v, errors.Violation{
			Field:   FieldTime,
			Rule:    errors.RuleRequired,
			Message: "time is required",
		})
	case *d.Time < model.MinTime:
		v = append(v, errors.Violation{
			Field:   FieldTime,
			Rule:    errors.RuleMin,
			Message: "time must be 0 or more",
		})
	}

	return v
}

// ClampTime limits n to the range the time input accepts.
func ClampTime(n int) int {
	return max(model.MinTime, min(n, model.MaxTime))
}

// ParseTime parses a time input. Blank input means unset and returns nil.
func ParseTime(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.NewUserErrorWithField(FieldTime, s,
			errors.ErrInvalidTime.Error()+": must be a whole number of hours",
			"Enter the hours studied as a number, for example 2.")
	}
	return &n, nil
}
