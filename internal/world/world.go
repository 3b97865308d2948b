package world

import (
	"sort"

	"github.com/google/uuid"
)

// World is the complete mutable game state for one session.
type World struct {
	Name      string              `json:"name"`
	Rooms     map[uuid.UUID]*Room `json:"rooms"`
	Items     map[uuid.UUID]*Item `json:"items"`
	Npcs      map[uuid.UUID]*Npc  `json:"npcs"`
	Goals     map[uuid.UUID]*Goal `json:"goals,omitempty"`
	Player    *Player             `json:"player"`
	TurnCount int                 `json:"turn_count"`
	Rand      *Rng                `json:"rand,omitempty"`
}

// New returns an empty world with initialized maps and a seeded source.
func New(name string, seed uint64) *World {
	return &World{
		Name:   name,
		Rooms:  make(map[uuid.UUID]*Room),
		Items:  make(map[uuid.UUID]*Item),
		Npcs:   make(map[uuid.UUID]*Npc),
		Goals:  make(map[uuid.UUID]*Goal),
		Player: &Player{Flags: make(map[string]*Flag)},
		Rand:   NewRng(seed),
	}
}

// Room returns the room or a ReferenceError.
func (w *World) Room(id uuid.UUID) (*Room, error) {
	if r, ok := w.Rooms[id]; ok {
		return r, nil
	}
	return nil, &ReferenceError{Kind: "room", Ref: id}
}

// Item returns the item or a ReferenceError.
func (w *World) Item(id uuid.UUID) (*Item, error) {
	if it, ok := w.Items[id]; ok {
		return it, nil
	}
	return nil, &ReferenceError{Kind: "item", Ref: id}
}

// Npc returns the NPC or a ReferenceError.
func (w *World) Npc(id uuid.UUID) (*Npc, error) {
	if n, ok := w.Npcs[id]; ok {
		return n, nil
	}
	return nil, &ReferenceError{Kind: "npc", Ref: id}
}

// Goal returns the goal or a ReferenceError.
func (w *World) Goal(id uuid.UUID) (*Goal, error) {
	if g, ok := w.Goals[id]; ok {
		return g, nil
	}
	return nil, &ReferenceError{Kind: "goal", Ref: id}
}

// CurrentRoom returns the player's room.
func (w *World) CurrentRoom() (*Room, error) {
	return w.Room(w.Player.Room)
}

// detach removes the item from wherever it currently is. The item's own
// Location field is left for the caller to rewrite.
func (w *World) detach(item *Item) {
	switch item.Location.Kind {
	case LocRoom:
		if r, ok := w.Rooms[item.Location.Ref]; ok {
			r.Contents = removeID(r.Contents, item.ID)
		}
	case LocItem:
		if container, ok := w.Items[item.Location.Ref]; ok {
			container.Contents = removeID(container.Contents, item.ID)
		}
	case LocInventory:
		w.Player.Inventory = removeID(w.Player.Inventory, item.ID)
	case LocNpc:
		if n, ok := w.Npcs[item.Location.Ref]; ok {
			n.Inventory = removeID(n.Inventory, item.ID)
		}
	}
}

// PlaceItemInRoom moves an item into a room, detaching it first. Both sides
// of the containment relation are kept consistent.
func (w *World) PlaceItemInRoom(itemID, roomID uuid.UUID) error {
	item, err := w.Item(itemID)
	if err != nil {
		return err
	}
	room, err := w.Room(roomID)
	if err != nil {
		return err
	}
	w.detach(item)
	item.Location = InRoom(roomID)
	room.Contents = appendID(room.Contents, itemID)
	return nil
}

// PlaceItemInInventory moves an item into the player's inventory.
func (w *World) PlaceItemInInventory(itemID uuid.UUID) error {
	item, err := w.Item(itemID)
	if err != nil {
		return err
	}
	w.detach(item)
	item.Location = InInventory()
	w.Player.Inventory = appendID(w.Player.Inventory, itemID)
	return nil
}

// PlaceItemInContainer moves an item inside another item.
func (w *World) PlaceItemInContainer(itemID, containerID uuid.UUID) error {
	item, err := w.Item(itemID)
	if err != nil {
		return err
	}
	container, err := w.Item(containerID)
	if err != nil {
		return err
	}
	w.detach(item)
	item.Location = InContainer(containerID)
	container.Contents = appendID(container.Contents, itemID)
	return nil
}

// GiveItemToNpc moves an item into an NPC's inventory.
func (w *World) GiveItemToNpc(itemID, npcID uuid.UUID) error {
	item, err := w.Item(itemID)
	if err != nil {
		return err
	}
	npc, err := w.Npc(npcID)
	if err != nil {
		return err
	}
	w.detach(item)
	item.Location = HeldByNpc(npcID)
	npc.Inventory = appendID(npc.Inventory, itemID)
	return nil
}

// RemoveItemEverywhere despawns an item: detached from any holder and sent
// nowhere. The item record survives so it can be respawned later.
func (w *World) RemoveItemEverywhere(itemID uuid.UUID) error {
	item, err := w.Item(itemID)
	if err != nil {
		return err
	}
	w.detach(item)
	item.Location = Nowhere()
	return nil
}

// MovePlayerTo relocates the player and marks the destination visited.
func (w *World) MovePlayerTo(roomID uuid.UUID) error {
	room, err := w.Room(roomID)
	if err != nil {
		return err
	}
	w.Player.Room = roomID
	room.Visited = true
	return nil
}

// MoveNpcTo relocates an NPC, keeping both rooms' occupant lists consistent.
func (w *World) MoveNpcTo(npcID, roomID uuid.UUID) error {
	npc, err := w.Npc(npcID)
	if err != nil {
		return err
	}
	dest, err := w.Room(roomID)
	if err != nil {
		return err
	}
	if from, ok := w.Rooms[npc.Room]; ok {
		from.Npcs = removeID(from.Npcs, npcID)
	}
	npc.Room = roomID
	dest.Npcs = appendID(dest.Npcs, npcID)
	return nil
}

// RevealExit clears the hidden bit on an exit.
func (w *World) RevealExit(roomID uuid.UUID, direction string) error {
	return w.setExit(roomID, direction, func(e *Exit) { e.Hidden = false })
}

// LockExit sets the locked bit on an exit.
func (w *World) LockExit(roomID uuid.UUID, direction string) error {
	return w.setExit(roomID, direction, func(e *Exit) { e.Locked = true })
}

// UnlockExit clears the locked bit on an exit.
func (w *World) UnlockExit(roomID uuid.UUID, direction string) error {
	return w.setExit(roomID, direction, func(e *Exit) { e.Locked = false })
}

func (w *World) setExit(roomID uuid.UUID, direction string, mutate func(*Exit)) error {
	room, err := w.Room(roomID)
	if err != nil {
		return err
	}
	exit, ok := room.Exits[direction]
	if !ok {
		return &ReferenceError{Kind: "exit", Ref: roomID, Name: direction}
	}
	mutate(exit)
	return nil
}

// SortedNpcIDs returns all NPC ids in stable id order. Map iteration order
// must never leak into gameplay, so every whole-population pass goes
// through a sorted view.
func (w *World) SortedNpcIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(w.Npcs))
	for id := range w.Npcs {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// SortedGoalIDs returns all goal ids in stable id order.
func (w *World) SortedGoalIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(w.Goals))
	for id := range w.Goals {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
