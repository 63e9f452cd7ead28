package runtime

import (
	stderrors "errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/manav03panchal/studylog/internal/errors"
)

// ErrDiskFull is reported when a local backend cannot write.
var ErrDiskFull = stderrors.New("disk full: unable to write to database")

// DiskFullError represents a disk full condition with additional context.
type DiskFullError struct {
	Op      string // The repository operation that failed
	wrapped error  // The underlying error
}

func (e *DiskFullError) Error() string {
	return fmt.Sprintf("disk full during %s: %v", e.Op, e.wrapped)
}

func (e *DiskFullError) Unwrap() error {
	return ErrDiskFull
}

// IsDiskFullError checks if an error indicates a disk full condition.
// It checks for ENOSPC and common disk full message patterns.
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrDiskFull) {
		return true
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) && errno == syscall.ENOSPC {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"no space left on device",
		"disk full",
		"database or disk is full",
		"not enough space",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// WrapDiskFullError wraps a repository failure as a DiskFullError when it
// indicates a full disk. Other errors are returned unchanged.
func WrapDiskFullError(err error) error {
	if err == nil || !IsDiskFullError(err) {
		return err
	}
	op := "write"
	if re, ok := errors.AsRepositoryError(err); ok && re.Op != "" {
		op = re.Op
	}
	return &DiskFullError{Op: op, wrapped: err}
}

// FormatError formats an error for the terminal: the category message and,
// when known, a suggestion on the next line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	err = WrapDiskFullError(err)
	if IsDiskFullError(err) {
		return err.Error() + "\nFree up disk space and run the command again."
	}

	msg := errors.FormatByCategory(err)
	if suggestion := errors.GetSuggestion(err); suggestion != "" && !strings.Contains(msg, suggestion) {
		msg += "\n" + suggestion
	}
	return msg
}
