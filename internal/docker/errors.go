package docker

import (
	"errors"
	"fmt"

	"github.com/docker/docker/errdefs"
)

var (
	// ErrNotFound matches engine errors for missing containers, networks or images.
	ErrNotFound = errors.New("not found")
	// ErrConflict matches engine errors for names that are already taken.
	ErrConflict = errors.New("already exists")
	// ErrPullFailed matches failures reported inside an image pull stream.
	ErrPullFailed = errors.New("image pull failed")
)

// EngineError wraps a failed engine call with the operation and the resource it targeted.
type EngineError struct {
	Op     string // Operation that failed, e.g. "create"
	Entity string // "container", "network" or "image"
	Name   string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("docker: %s %s %s: %v", e.Op, e.Entity, e.Name, e.Err)
	}
	return fmt.Sprintf("docker: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is classifies the wrapped engine error against the package sentinels.
func (e *EngineError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return errdefs.IsNotFound(e.Err)
	case ErrConflict:
		return errdefs.IsConflict(e.Err)
	}
	return false
}

func newEngineError(op, entity, name string, err error) *EngineError {
	return &EngineError{Op: op, Entity: entity, Name: name, Err: err}
}
