package script

import "github.com/google/uuid"

// EventKind identifies the class of game event a trigger can react to.
type EventKind string

const (
	// EventAlways is the ambient event kind, checked once per command cycle
	// regardless of what the player did.
	EventAlways EventKind = "always"

	EventEnterRoom EventKind = "enter_room"
	EventLeaveRoom EventKind = "leave_room"
	EventTakeItem  EventKind = "take_item"
	EventDropItem  EventKind = "drop_item"
	EventLookAt    EventKind = "look_at"
	EventUseItem   EventKind = "use_item"
	EventOpenItem  EventKind = "open_item"
	EventTalkToNpc EventKind = "talk_to_npc"
	EventGiveToNpc EventKind = "give_to_npc"
)

// EventKindOrder is the canonical enumeration order, used wherever output
// must not depend on map iteration.
var EventKindOrder = []EventKind{
	EventAlways,
	EventEnterRoom,
	EventLeaveRoom,
	EventTakeItem,
	EventDropItem,
	EventLookAt,
	EventUseItem,
	EventOpenItem,
	EventTalkToNpc,
	EventGiveToNpc,
}

// ValidEventKinds enumerates every kind the loader accepts.
var ValidEventKinds = map[EventKind]bool{
	EventAlways:    true,
	EventEnterRoom: true,
	EventLeaveRoom: true,
	EventTakeItem:  true,
	EventDropItem:  true,
	EventLookAt:    true,
	EventUseItem:   true,
	EventOpenItem:  true,
	EventTalkToNpc: true,
	EventGiveToNpc: true,
}

// Event is a concrete game occurrence: a kind plus the entities involved.
// Zero-value UUID fields mean "not applicable to this kind".
//
// The same type doubles as an event pattern on triggers: a pattern field left
// as uuid.Nil matches any entity, a non-nil field requires an exact match.
type Event struct {
	Kind EventKind `json:"kind"`
	Room uuid.UUID `json:"room,omitempty"`
	Item uuid.UUID `json:"item,omitempty"`
	Npc  uuid.UUID `json:"npc,omitempty"`
}

// Matches reports whether the event satisfies the given pattern.
//
// Kinds must be equal. Each pattern entity field that is set (non-nil) must
// equal the event's field; unset pattern fields are wildcards. This is the
// dispatch rule the registry uses to decide which triggers to evaluate.
func (e Event) Matches(pattern Event) bool {
	if e.Kind != pattern.Kind {
		return false
	}
	if pattern.Room != uuid.Nil && pattern.Room != e.Room {
		return false
	}
	if pattern.Item != uuid.Nil && pattern.Item != e.Item {
		return false
	}
	if pattern.Npc != uuid.Nil && pattern.Npc != e.Npc {
		return false
	}
	return true
}
