package repl

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// cmdGo moves the player through an exit. Hidden exits are invisible even
// when named; locked exits refuse with a message. Failed movement costs no
// turn.
func (s *Session) cmdGo(args []string) bool {
	if len(args) == 0 {
		s.View.Push(view.TagFailure, "Go where?")
		return false
	}
	dir := strings.ToLower(expandDirection(args[0]))

	room, err := s.World.CurrentRoom()
	if err != nil {
		s.View.Push(view.TagError, "You are nowhere. That seems bad.")
		return false
	}
	exit, ok := room.Exits[dir]
	if !ok || exit.Hidden {
		s.View.Push(view.TagFailure, "You can't go that way.")
		return false
	}
	if exit.Locked {
		s.View.Pushf(view.TagFailure, "The way %s is locked.", dir)
		return false
	}

	prev := room.ID
	if err := s.World.MovePlayerTo(exit.To); err != nil {
		s.View.Push(view.TagError, "That way leads nowhere.")
		return false
	}
	s.Eng.Dispatch(s.World, s.View, script.Event{Kind: script.EventLeaveRoom, Room: prev})
	s.describeRoom()
	s.Eng.Dispatch(s.World, s.View, script.Event{Kind: script.EventEnterRoom, Room: exit.To})
	return true
}

func (s *Session) cmdTake(args []string) bool {
	item, ok := s.findItemInRoom(args)
	if !ok {
		return false
	}
	if !item.Portable {
		s.View.Pushf(view.TagFailure, "The %s won't budge.", item.Name)
		return false
	}
	if err := s.World.PlaceItemInInventory(item.ID); err != nil {
		s.View.Push(view.TagError, "You fumble and fail.")
		return false
	}
	s.View.Push(view.TagSuccess, "Taken.")
	s.Eng.Dispatch(s.World, s.View, script.Event{
		Kind: script.EventTakeItem, Item: item.ID, Room: s.World.Player.Room,
	})
	return true
}

func (s *Session) cmdDrop(args []string) bool {
	item, ok := s.findItemInInventory(args)
	if !ok {
		return false
	}
	if err := s.World.PlaceItemInRoom(item.ID, s.World.Player.Room); err != nil {
		s.View.Push(view.TagError, "You fumble and fail.")
		return false
	}
	s.View.Push(view.TagSuccess, "Dropped.")
	s.Eng.Dispatch(s.World, s.View, script.Event{
		Kind: script.EventDropItem, Item: item.ID, Room: s.World.Player.Room,
	})
	return true
}

func (s *Session) cmdOpen(args []string) bool {
	item, ok := s.findItemNearby(args)
	if !ok {
		return false
	}
	if !item.Container {
		s.View.Pushf(view.TagFailure, "The %s doesn't open.", item.Name)
		return false
	}
	if len(item.Contents) == 0 {
		s.View.Pushf(view.TagEnvironment, "The %s is empty.", item.Name)
	} else {
		names := s.itemNames(item.Contents)
		s.View.Pushf(view.TagEnvironment, "Inside the %s: %s.", item.Name, strings.Join(names, ", "))
	}
	s.Eng.Dispatch(s.World, s.View, script.Event{
		Kind: script.EventOpenItem, Item: item.ID, Room: s.World.Player.Room,
	})
	return true
}

// cmdUse dispatches the use event and synthesizes "Nothing happens." when no
// trigger cared, so the player always gets a response.
func (s *Session) cmdUse(args []string) bool {
	item, ok := s.findItemNearby(args)
	if !ok {
		return false
	}
	fired := s.Eng.Dispatch(s.World, s.View, script.Event{
		Kind: script.EventUseItem, Item: item.ID, Room: s.World.Player.Room,
	})
	if len(fired) == 0 {
		s.View.Push(view.TagEnvironment, "Nothing happens.")
	}
	return true
}

func (s *Session) cmdExamine(args []string) bool {
	item, ok := s.findItemNearby(args)
	if !ok {
		return false
	}
	s.View.Push(view.TagEnvironment, item.Description)
	s.Eng.Dispatch(s.World, s.View, script.Event{
		Kind: script.EventLookAt, Item: item.ID, Room: s.World.Player.Room,
	})
	return true
}

func (s *Session) cmdTalk(args []string) bool {
	// Accept "talk to <npc>" as well as "talk <npc>".
	if len(args) > 0 && strings.EqualFold(args[0], "to") {
		args = args[1:]
	}
	npc, ok := s.findNpcHere(args)
	if !ok {
		return false
	}
	lines := npc.Dialogue[npc.State]
	if len(lines) == 0 {
		s.View.Pushf(view.TagEnvironment, "%s has nothing to say.", npc.Name)
	}
	for _, line := range lines {
		s.View.Pushf(view.TagDialogue, "%s: %q", npc.Name, line)
	}
	s.Eng.Dispatch(s.World, s.View, script.Event{
		Kind: script.EventTalkToNpc, Npc: npc.ID, Room: s.World.Player.Room,
	})
	return true
}

// cmdGive hands an inventory item to an NPC: "give <item> to <npc>".
func (s *Session) cmdGive(args []string) bool {
	var itemWords, npcWords []string
	for i, a := range args {
		if strings.EqualFold(a, "to") {
			itemWords, npcWords = args[:i], args[i+1:]
			break
		}
	}
	if len(itemWords) == 0 || len(npcWords) == 0 {
		s.View.Push(view.TagFailure, "Give what to whom?")
		return false
	}

	item, ok := s.findItemInInventory(itemWords)
	if !ok {
		return false
	}
	npc, ok := s.findNpcHere(npcWords)
	if !ok {
		return false
	}
	if err := s.World.GiveItemToNpc(item.ID, npc.ID); err != nil {
		s.View.Push(view.TagError, "You fumble and fail.")
		return false
	}
	s.View.Pushf(view.TagSuccess, "You give the %s to %s.", item.Name, npc.Name)
	s.Eng.Dispatch(s.World, s.View, script.Event{
		Kind: script.EventGiveToNpc, Item: item.ID, Npc: npc.ID, Room: s.World.Player.Room,
	})
	return true
}

// --- name resolution -----------------------------------------------------

// matchItem reports whether the words name the item, by symbol or by
// case-insensitive name match.
func matchItem(item *world.Item, words []string) bool {
	name := strings.Join(words, " ")
	if strings.EqualFold(item.Symbol, name) {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), strings.ToLower(name))
}

func (s *Session) findItemInRoom(words []string) (*world.Item, bool) {
	if len(words) == 0 {
		s.View.Push(view.TagFailure, "What, exactly?")
		return nil, false
	}
	room, err := s.World.CurrentRoom()
	if err != nil {
		return nil, false
	}
	return s.findItemAmong(room.Contents, words)
}

func (s *Session) findItemInInventory(words []string) (*world.Item, bool) {
	if len(words) == 0 {
		s.View.Push(view.TagFailure, "What, exactly?")
		return nil, false
	}
	return s.findItemAmong(s.World.Player.Inventory, words)
}

// findItemNearby searches the room, then the inventory.
func (s *Session) findItemNearby(words []string) (*world.Item, bool) {
	if len(words) == 0 {
		s.View.Push(view.TagFailure, "What, exactly?")
		return nil, false
	}
	room, err := s.World.CurrentRoom()
	if err != nil {
		return nil, false
	}
	pool := append(append([]uuid.UUID{}, room.Contents...), s.World.Player.Inventory...)
	return s.findItemAmong(pool, words)
}

func (s *Session) findItemAmong(ids []uuid.UUID, words []string) (*world.Item, bool) {
	for _, id := range ids {
		item, err := s.World.Item(id)
		if err != nil {
			continue
		}
		if matchItem(item, words) {
			return item, true
		}
	}
	s.View.Pushf(view.TagFailure, "You don't see any %s here.", strings.Join(words, " "))
	return nil, false
}

func (s *Session) findNpcHere(words []string) (*world.Npc, bool) {
	if len(words) == 0 {
		s.View.Push(view.TagFailure, "Who, exactly?")
		return nil, false
	}
	room, err := s.World.CurrentRoom()
	if err != nil {
		return nil, false
	}
	name := strings.Join(words, " ")
	for _, id := range room.Npcs {
		npc, err := s.World.Npc(id)
		if err != nil {
			continue
		}
		if strings.EqualFold(npc.Symbol, name) ||
			strings.Contains(strings.ToLower(npc.Name), strings.ToLower(name)) {
			return npc, true
		}
	}
	s.View.Pushf(view.TagFailure, "There's no %s here.", name)
	return nil, false
}

// --- description helpers -------------------------------------------------

func (s *Session) itemNames(ids []uuid.UUID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if item, err := s.World.Item(id); err == nil {
			names = append(names, item.Name)
		}
	}
	return names
}

func (s *Session) describeRoom() {
	room, err := s.World.CurrentRoom()
	if err != nil {
		s.View.Push(view.TagError, "You are nowhere. That seems bad.")
		return
	}
	s.View.Push(view.TagEnvironment, room.Name)
	s.View.Push(view.TagEnvironment, room.Description)

	if names := s.itemNames(room.Contents); len(names) > 0 {
		s.View.Pushf(view.TagEnvironment, "You see: %s.", strings.Join(names, ", "))
	}
	for _, id := range room.Npcs {
		if npc, err := s.World.Npc(id); err == nil {
			s.View.Pushf(view.TagEnvironment, "%s is here.", npc.Name)
		}
	}

	var dirs []string
	for dir, exit := range room.Exits {
		if !exit.Hidden {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	if len(dirs) > 0 {
		s.View.Pushf(view.TagEnvironment, "Exits: %s.", strings.Join(dirs, ", "))
	}
}

func (s *Session) showInventory() {
	names := s.itemNames(s.World.Player.Inventory)
	if len(names) == 0 {
		s.View.Push(view.TagEnvironment, "You are carrying nothing.")
		return
	}
	s.View.Pushf(view.TagEnvironment, "You are carrying: %s.", strings.Join(names, ", "))
}

func (s *Session) showGoals() {
	ids := s.World.SortedGoalIDs()
	if len(ids) == 0 {
		s.View.Push(view.TagSystem, "No goals here; wander freely.")
		return
	}
	for _, id := range ids {
		goal := s.World.Goals[id]
		mark := "[ ]"
		if goal.Done {
			mark = "[x]"
		}
		s.View.Pushf(view.TagSystem, "%s %s", mark, goal.Name)
	}
}
