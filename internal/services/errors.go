package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/validation"
)

// ValidationError reports malformed or missing input, field by field.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, reason := range e.Violations {
		fields = append(fields, f+"="+reason)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// invalid builds a single-field ValidationError.
func invalid(field, reason string) *ValidationError {
	return &ValidationError{Violations: validation.Violations{field: reason}}
}

// NotFoundError means the referenced entity is absent or not owned by the
// requesting user. Ownership misses are deliberately indistinguishable from
// absence.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictError reports a uniqueness or referential-integrity violation.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Reason)
}

// InvalidTransitionError reports an illegal invoice status change.
type InvalidTransitionError struct {
	From models.InvoiceStatus
	To   models.InvoiceStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// UpstreamServiceError wraps a failure from an external collaborator (AI
// drafting, mail delivery) so callers can retry or degrade without exposing
// the raw message to end users.
type UpstreamServiceError struct {
	Service string
	Err     error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("upstream %s failure: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }
