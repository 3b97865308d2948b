package script

import "github.com/google/uuid"

// Condition is a sealed interface over the boolean expression vocabulary.
// Only the leaf predicates and the All/Any composites in this file implement
// it. Evaluation lives in the engine package; this package only defines the
// shape of the tree.
type Condition interface {
	cond() // sealed
}

// All is a conjunction. It evaluates true when every child is true and
// short-circuits false on the first false child. An empty All is true.
type All struct {
	Children []Condition
}

func (All) cond() {}

// Any is a disjunction. It evaluates true on the first true child and
// short-circuits there. An empty Any is false.
type Any struct {
	Children []Condition
}

func (Any) cond() {}

// HasFlag is true when the player carries the named flag.
type HasFlag struct {
	Flag string
}

func (HasFlag) cond() {}

// MissingFlag is true when the player does not carry the named flag.
type MissingFlag struct {
	Flag string
}

func (MissingFlag) cond() {}

// FlagInProgress is true when a sequence flag exists but has not reached its
// final step.
type FlagInProgress struct {
	Flag string
}

func (FlagInProgress) cond() {}

// FlagComplete is true when a sequence flag has reached its final step.
type FlagComplete struct {
	Flag string
}

func (FlagComplete) cond() {}

// HasItem is true when the item is in the player's inventory.
type HasItem struct {
	Item uuid.UUID
}

func (HasItem) cond() {}

// MissingItem is true when the item is not in the player's inventory.
type MissingItem struct {
	Item uuid.UUID
}

func (MissingItem) cond() {}

// InRoom is true when the player is currently in the room.
type InRoom struct {
	Room uuid.UUID
}

func (InRoom) cond() {}

// ReachedRoom is true when the player has visited the room at least once,
// whether or not they are still there.
type ReachedRoom struct {
	Room uuid.UUID
}

func (ReachedRoom) cond() {}

// GoalComplete is true when the goal has been marked done.
type GoalComplete struct {
	Goal uuid.UUID
}

func (GoalComplete) cond() {}

// NpcInState is true when the NPC is in the given behavioral state.
type NpcInState struct {
	Npc   uuid.UUID
	State string
}

func (NpcInState) cond() {}

// NpcHasItem is true when the item is in the NPC's inventory.
type NpcHasItem struct {
	Npc  uuid.UUID
	Item uuid.UUID
}

func (NpcHasItem) cond() {}

// WithNpc is true when the NPC is in the player's current room.
type WithNpc struct {
	Npc uuid.UUID
}

func (WithNpc) cond() {}

// ContainerHasItem is true when the item is inside the container item.
type ContainerHasItem struct {
	Container uuid.UUID
	Item      uuid.UUID
}

func (ContainerHasItem) cond() {}

// EventMatches is true when the event currently being dispatched matches the
// pattern. Outside event dispatch (scheduled-event drains) there is no
// current event and the predicate evaluates false.
type EventMatches struct {
	Pattern Event
}

func (EventMatches) cond() {}
