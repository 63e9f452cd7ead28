package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
)

// contextKey is a type for context keys used by this package.
type contextKey int

const (
	intentIDKey contextKey = iota
)

// GenerateIntentID creates a new correlation ID for one user intent
// (a submit, a delete, a refresh). Format: 16 hex characters.
func GenerateIntentID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b)
}

// WithIntentID returns a new context carrying the given intent ID.
func WithIntentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, intentIDKey, id)
}

// NewIntentContext derives a context with a fresh intent ID, keeping an
// existing one if parent already has it.
func NewIntentContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	if IntentIDFromContext(parent) != "" {
		return parent
	}
	return WithIntentID(parent, GenerateIntentID())
}

// IntentIDFromContext extracts the intent ID from the context.
// Returns empty string if none is set.
func IntentIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(intentIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns a logger tagged with the intent ID from ctx.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if id := IntentIDFromContext(ctx); id != "" {
		logger = logger.With(KeyIntentID, id)
	}
	return logger
}
