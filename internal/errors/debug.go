package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Chain returns the full error chain as a slice of error messages.
func Chain(err error) []string {
	if err == nil {
		return nil
	}

	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}

// RootCause returns the deepest wrapped error in the chain.
func RootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}

// FormatDebugError formats an error with full debug information:
// the chain, category, suggestion, violations and root cause.
func FormatDebugError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	chain := Chain(err)
	if len(chain) > 1 {
		sb.WriteString("\nError chain:\n")
		for i, msg := range chain {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, msg))
		}
	}

	sb.WriteString(fmt.Sprintf("\nCategory: %s\n", Classify(err)))

	if ve, ok := AsValidationError(err); ok {
		sb.WriteString("\nViolations:\n")
		for _, v := range ve.Violations {
			sb.WriteString(fmt.Sprintf("  - %s (%s)\n", v, v.Rule))
		}
	}

	if suggestion := GetSuggestion(err); suggestion != "" {
		sb.WriteString(fmt.Sprintf("\nSuggestion: %s\n", suggestion))
	}

	if root := RootCause(err); root != err {
		sb.WriteString(fmt.Sprintf("\nRoot cause: %v\n", root))
	}

	return sb.String()
}
