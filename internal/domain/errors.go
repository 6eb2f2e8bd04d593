package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource with the same identity
	// already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates that a caller-provided value violates
	// a precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDependencyCycle indicates that the changing applications declare
	// a circular dependency and no plan can be computed.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// CycleError reports a circular dependency among changing applications.
// Path is one deterministic witness: it starts and ends at the same id.
type CycleError struct {
	Path []AppID
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrDependencyCycle.Error()
	}
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return fmt.Sprintf("%s: %s", ErrDependencyCycle.Error(), strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }
