package script

import "github.com/google/uuid"

// Trigger is a compiled authored rule: an event pattern, a condition tree,
// and an ordered action list. Triggers are produced by the loader and are
// immutable; the engine's registry wraps them with the mutable enabled and
// fired state.
//
// Registration (source) order is significant: when several triggers could
// react to the same event, they fire in the order the author declared them.
type Trigger struct {
	ID       uuid.UUID
	Name     string
	On       Event     // event pattern (kind + optional entity params)
	When     Condition // nil = always true
	Actions  []Action
	FireOnce bool
}
