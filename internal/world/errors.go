package world

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ReferenceError reports a condition or action naming an entity that does
// not exist in the world. It is always recoverable: the caller logs it and
// treats the predicate as false or skips the action.
type ReferenceError struct {
	// Kind is the entity category: "room", "item", "npc", "goal", "flag", "exit".
	Kind string

	// Ref is the missing entity id (uuid.Nil for name-keyed entities).
	Ref uuid.UUID

	// Name is the missing name for name-keyed entities such as flags and
	// exit directions.
	Name string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("unknown %s %s", e.Kind, e.Ref)
}

// IsReferenceError reports whether err is (or wraps) a ReferenceError.
func IsReferenceError(err error) bool {
	var re *ReferenceError
	return errors.As(err, &re)
}
