package world

import "github.com/google/uuid"

// Exit is a directed connection from one room to another.
type Exit struct {
	To     uuid.UUID `json:"to"`
	Hidden bool      `json:"hidden,omitempty"`
	Locked bool      `json:"locked,omitempty"`
}

// Room is a location the player can occupy.
type Room struct {
	ID          uuid.UUID        `json:"id"`
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Visited     bool             `json:"visited,omitempty"`
	Exits       map[string]*Exit `json:"exits,omitempty"` // keyed by direction
	Contents    []uuid.UUID      `json:"contents,omitempty"`
	Npcs        []uuid.UUID      `json:"npcs,omitempty"`
}

// LocationKind discriminates where an item currently is.
type LocationKind string

const (
	LocNowhere   LocationKind = "nowhere"
	LocRoom      LocationKind = "room"
	LocItem      LocationKind = "item"
	LocInventory LocationKind = "inventory"
	LocNpc       LocationKind = "npc"
)

// Location is an item's current position. Ref identifies the containing
// room, item, or NPC; it is unused for nowhere and inventory.
type Location struct {
	Kind LocationKind `json:"kind"`
	Ref  uuid.UUID    `json:"ref,omitempty"`
}

// Nowhere is the location of despawned and not-yet-spawned items.
func Nowhere() Location { return Location{Kind: LocNowhere} }

// InRoom locates an item in a room.
func InRoom(room uuid.UUID) Location { return Location{Kind: LocRoom, Ref: room} }

// InInventory locates an item in the player's inventory.
func InInventory() Location { return Location{Kind: LocInventory} }

// InContainer locates an item inside another item.
func InContainer(container uuid.UUID) Location { return Location{Kind: LocItem, Ref: container} }

// HeldByNpc locates an item in an NPC's inventory.
func HeldByNpc(npc uuid.UUID) Location { return Location{Kind: LocNpc, Ref: npc} }

// Item is an object the player can look at, carry, or use.
type Item struct {
	ID          uuid.UUID   `json:"id"`
	Symbol      string      `json:"symbol"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Location    Location    `json:"location"`
	Portable    bool        `json:"portable,omitempty"`
	Container   bool        `json:"container,omitempty"`
	Contents    []uuid.UUID `json:"contents,omitempty"`
}

// MovementKind discriminates NPC movement plans.
type MovementKind string

const (
	// MoveRoute walks a fixed room list in order, wrapping at the end.
	MoveRoute MovementKind = "route"
	// MoveWander picks a random usable exit from the current room.
	MoveWander MovementKind = "wander"
)

// MovementPlan drives an NPC's autonomous movement during the per-command
// movement pass. LastMoved is the turn of the most recent step, so a plan
// with EveryTurns=2 steps on every second counted turn.
type MovementPlan struct {
	Kind       MovementKind `json:"kind"`
	Route      []uuid.UUID  `json:"route,omitempty"`
	Step       int          `json:"step,omitempty"`
	EveryTurns int          `json:"every_turns"`
	LastMoved  int          `json:"last_moved,omitempty"`
	Active     bool         `json:"active"`
}

// Npc is a non-player character.
type Npc struct {
	ID          uuid.UUID           `json:"id"`
	Symbol      string              `json:"symbol"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Room        uuid.UUID           `json:"room"`
	State       string              `json:"state"`
	Inventory   []uuid.UUID         `json:"inventory,omitempty"`
	Dialogue    map[string][]string `json:"dialogue,omitempty"` // keyed by state
	Movement    *MovementPlan       `json:"movement,omitempty"`
}

// HasItem reports whether the NPC carries the item.
func (n *Npc) HasItem(item uuid.UUID) bool {
	return containsID(n.Inventory, item)
}

// Goal is an authored objective the player can complete.
type Goal struct {
	ID     uuid.UUID `json:"id"`
	Symbol string    `json:"symbol"`
	Name   string    `json:"name"`
	Done   bool      `json:"done,omitempty"`
}

// containsID reports membership in an id slice.
func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// appendID adds an id if absent, preserving insertion order. Slices rather
// than sets keep iteration order deterministic for replay.
func appendID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// removeID deletes an id, preserving the order of the rest.
func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
