package engine

import (
	"errors"
	"fmt"
)

// PolicyError reports an authored retry policy with a non-positive delay.
// Recoverable: the scheduler clamps the delay to one turn and warns.
type PolicyError struct {
	EventID int64
	Turns   int
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("event %d: retry_after(%d) is not positive, clamped to 1", e.EventID, e.Turns)
}

// CorruptionError reports a scheduler snapshot violating queue invariants:
// duplicate ids, an event both pending and tombstoned, or an id above the
// restored clock. Fatal at load; a session must not start from corrupt state.
type CorruptionError struct {
	EventID int64
	Reason  string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("scheduler snapshot corrupt at event %d: %s", e.EventID, e.Reason)
}

// IsCorruption reports whether err is (or wraps) a CorruptionError.
func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
