package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"scrumboard-api/internal/models"
)

// ErrInvalidCredentials is returned by Login for a bad username or
// password. Deliberately vague so callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// PermissionDeniedError rejects a mutation. For batch field updates,
// Fields lists every rejected field name; the update applied nothing.
type PermissionDeniedError struct {
	Fields []string
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("permission denied for fields [%s]: %s", strings.Join(e.Fields, ", "), e.Reason)
	}
	return fmt.Sprintf("permission denied: %s", e.Reason)
}

// NotFoundError reports a missing row.
type NotFoundError struct {
	Entity models.EntityType
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError reports malformed input, detected before any store
// mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps an underlying store failure so the HTTP layer can
// distinguish infrastructure outages from access or input problems.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
