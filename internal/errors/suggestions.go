package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrRecordNotFound:   "Use 'studylog list' to see record IDs.",
	ErrDuplicateID:      "The backend returned two records with the same ID. Check the store for corruption.",
	ErrSubmitInFlight:   "Wait for the current save to finish.",
	ErrInvalidTime:      "Time is a whole number of hours, e.g. --time 2.",
	ErrUnknownBackend:   "Use one of: badger, sqlite, postgres, remote.",
	ErrBackendUnhealthy: "Check that the configured backend is running and reachable.",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	if IsValidationError(err) {
		return "Titles must not be blank and time must be set to 0 or more."
	}

	return ""
}
