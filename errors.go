package lokal

import (
	"fmt"
	"strings"
)

// ValidationError reports why a translation was rejected at write time.
type ValidationError struct {
	Key    string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid translation %q: %s", e.Key, strings.Join(e.Issues, "; "))
}

// StoreError indicates a persistent-store operation failure.
type StoreError struct {
	Op        string // The failing operation, e.g. "put_many"
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried (throttling etc.)
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store error (%s): %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("store error (%s): %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// SnapshotError indicates a persisted cache-snapshot operation failure.
// Snapshot failures are never fatal to resolution; callers log and move on.
type SnapshotError struct {
	Locale  string
	Message string
	Cause   error
}

func (e *SnapshotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("snapshot error (%s): %s: %v", e.Locale, e.Message, e.Cause)
	}
	return fmt.Sprintf("snapshot error (%s): %s", e.Locale, e.Message)
}

func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// ImportError wraps a store failure that interrupted a bulk import.
// The report carried alongside still reflects what landed before the
// failing chunk.
type ImportError struct {
	Locale string
	Cause  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import aborted for locale %q: %v", e.Locale, e.Cause)
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}
