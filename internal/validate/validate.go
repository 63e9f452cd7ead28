// Package validate provides input checks shared by the CLI, the form and the
// HTTP API.
package validate

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/manav03panchal/studylog/internal/errors"
)

const (
	// MaxRecordIDLength is the maximum length for a record ID.
	MaxRecordIDLength = 64
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
)

// recordIDRegex matches IDs the local backends assign (UUIDs) and anything
// similar a remote store might use.
var recordIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// RecordID validates a record ID supplied by a user or a request path.
func RecordID(id string) error {
	if id == "" {
		return errors.NewUserError("record ID cannot be empty",
			"Run 'studylog list' to see record IDs")
	}
	if utf8.RuneCountInString(id) > MaxRecordIDLength {
		return errors.NewUserErrorWithField("id", id,
			"record ID too long",
			"Record IDs are at most 64 characters")
	}
	if !recordIDRegex.MatchString(id) {
		return errors.NewUserErrorWithField("id", id,
			"invalid record ID",
			"Record IDs contain only letters, digits, '.', '_' and '-'")
	}
	return nil
}

// URL validates the base URL of a remote studylog server.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL format",
			"Provide a URL like http://127.0.0.1:8741")
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL scheme",
			"URLs must start with http:// or https://")
	}
	if parsed.Hostname() == "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a URL like http://127.0.0.1:8741")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"URL must not have a query or fragment",
			"Use the server's base URL only")
	}
	return nil
}

// SanitizeTitle turns line breaks and tabs into spaces and drops other
// control characters. Leading and trailing space is kept.
func SanitizeTitle(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
