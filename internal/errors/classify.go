package errors

import (
	"errors"
	"syscall"
)

// Category represents the type of error for display and handling purposes.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser indicates an error the user can fix (bad input, missing args).
	CategoryUser
	// CategoryValidation indicates a draft that failed the form rules.
	CategoryValidation
	// CategoryRepository indicates the record backend failed an operation.
	CategoryRepository
	// CategorySystem indicates a system-level error (disk full, permissions).
	CategorySystem
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategoryValidation:
		return "validation"
	case CategoryRepository:
		return "repository"
	case CategorySystem:
		return "system"
	default:
		return "unknown"
	}
}

// Classify determines the category of an error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	// Typed errors first; validation before user since a draft failure is
	// the more specific of the two.
	if IsValidationError(err) {
		return CategoryValidation
	}
	if IsUserError(err) {
		return CategoryUser
	}
	if IsRepositoryError(err) {
		return CategoryRepository
	}
	if IsSystemError(err) {
		return CategorySystem
	}

	if isSystemLevel(err) {
		return CategorySystem
	}

	return CategoryUnknown
}

// isSystemLevel checks if an error is a system-level error.
func isSystemLevel(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOSPC, syscall.EACCES, syscall.EPERM, syscall.EIO, syscall.EROFS:
			return true
		}
	}
	return false
}

// FormatByCategory returns a user-appropriate error message based on category.
func FormatByCategory(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	suggestion := GetSuggestion(err)

	switch Classify(err) {
	case CategoryUser, CategoryValidation:
		if suggestion != "" {
			return msg + "\n\nTry: " + suggestion
		}
		return msg

	case CategoryRepository:
		// Nothing is retried; the user has to re-run the action.
		if suggestion != "" {
			return msg + "\n\n" + suggestion
		}
		return msg + "\n\nNothing was retried. Run the command again once the store is reachable."

	case CategorySystem:
		if suggestion != "" {
			return "System error: " + msg + "\n\n" + suggestion
		}
		return "System error: " + msg

	default:
		return msg
	}
}
