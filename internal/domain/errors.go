package domain

import "fmt"

// ErrorKind tags the failure taxonomy of spec.md §7. Analytical components
// never raise across their boundary; they return a tagged result. Only
// the orchestrator surfaces an ErrorKind to the API layer.
type ErrorKind string

const (
	InputMissing     ErrorKind = "INPUT_MISSING"
	InputMalformed   ErrorKind = "INPUT_MALFORMED"
	DependencyFailure ErrorKind = "DEPENDENCY_FAILURE"
	Timeout          ErrorKind = "TIMEOUT"
	Cancelled        ErrorKind = "CANCELLED"
	Internal         ErrorKind = "INTERNAL"
)

// StageError is the typed error an orchestrator stage reports on failure.
// Its string form is "<kind>: <message>", matching the user-visible
// `status: FAILED, error: <kind>: <message>` shape from spec.md §7.
type StageError struct {
	Kind    ErrorKind
	Message string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewStageError constructs a StageError, wrapping an underlying cause
// when present.
func NewStageError(kind ErrorKind, msg string, cause error) *StageError {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &StageError{Kind: kind, Message: msg}
}

// Retryable reports whether the orchestrator should retry a stage that
// failed with this error kind (only transient dependency failures are).
func (e *StageError) Retryable() bool {
	return e.Kind == DependencyFailure
}
