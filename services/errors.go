package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced submission, article, review or
// user does not exist.
var ErrNotFound = errors.New("record not found")

// InvalidTransitionError reports an illegal status change. The allowed set
// is included so callers can surface it in pre-flight UI checks.
type InvalidTransitionError struct {
	From    WorkflowStatus
	To      WorkflowStatus
	Allowed []WorkflowStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = string(s)
	}
	return fmt.Sprintf("invalid transition from '%s' to '%s' (allowed: [%s])",
		e.From, e.To, strings.Join(allowed, ", "))
}

// ValidationError reports a malformed payload detected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NoSuitableCandidateError is returned when editor or reviewer discovery
// finds zero eligible candidates. Callers decide whether to leave the
// article unassigned, relax criteria or escalate to manual assignment.
type NoSuitableCandidateError struct {
	Kind string // "editor" or "reviewer"
}

func (e *NoSuitableCandidateError) Error() string {
	return fmt.Sprintf("no suitable %s candidate found", e.Kind)
}

// translateNotFound maps gorm's record-not-found onto the service-level
// sentinel so callers never depend on the storage layer.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
