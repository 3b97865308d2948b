package loader

import (
	"fmt"

	"github.com/roach88/amble/internal/script"
)

// rawCond is the authored condition tree: a type tag plus whichever fields
// that type uses, entities referenced by symbol.
type rawCond struct {
	Type string `json:"type"`

	All []rawCond `json:"all"`
	Any []rawCond `json:"any"`

	Flag      string    `json:"flag"`
	Item      string    `json:"item"`
	Room      string    `json:"room"`
	Npc       string    `json:"npc"`
	Goal      string    `json:"goal"`
	Container string    `json:"container"`
	State     string    `json:"state"`
	Event     *rawEvent `json:"event"`
}

// rawAction mirrors rawCond for the action vocabulary. Schedule actions
// nest a full condition and action tree.
type rawAction struct {
	Type string `json:"type"`

	Text      string `json:"text"`
	Flag      string `json:"flag"`
	Duration  int    `json:"duration"`
	Item      string `json:"item"`
	Room      string `json:"room"`
	From      string `json:"from"`
	Direction string `json:"direction"`
	Points    int    `json:"points"`
	Npc       string `json:"npc"`
	State     string `json:"state"`
	Goal      string `json:"goal"`

	Turns   int         `json:"turns"`
	Turn    int         `json:"turn"`
	When    *rawCond    `json:"when"`
	OnFalse *rawPolicy  `json:"on_false"`
	Actions []rawAction `json:"actions"`
	Note    string      `json:"note"`
}

type rawPolicy struct {
	Kind  string `json:"kind"`
	Turns int    `json:"turns"`
}

// cookCond resolves an authored condition tree. A nil tree is the
// unconditional condition. Unresolvable nodes report an error and cook to
// nil so sibling problems are still collected.
func (c *cooker) cookCond(path string, raw *rawCond) script.Condition {
	if raw == nil {
		return nil
	}
	ok := true
	switch raw.Type {
	case "all":
		children := make([]script.Condition, 0, len(raw.All))
		for i := range raw.All {
			children = append(children, c.cookCond(fmt.Sprintf("%s.all[%d]", path, i), &raw.All[i]))
		}
		return script.All{Children: children}
	case "any":
		children := make([]script.Condition, 0, len(raw.Any))
		for i := range raw.Any {
			children = append(children, c.cookCond(fmt.Sprintf("%s.any[%d]", path, i), &raw.Any[i]))
		}
		return script.Any{Children: children}

	case "has_flag":
		return script.HasFlag{Flag: raw.Flag}
	case "missing_flag":
		return script.MissingFlag{Flag: raw.Flag}
	case "flag_in_progress":
		return script.FlagInProgress{Flag: raw.Flag}
	case "flag_complete":
		return script.FlagComplete{Flag: raw.Flag}

	case "has_item":
		return script.HasItem{Item: c.lookupItem(path, raw.Item, &ok)}
	case "missing_item":
		return script.MissingItem{Item: c.lookupItem(path, raw.Item, &ok)}
	case "in_room":
		return script.InRoom{Room: c.lookupRoom(path, raw.Room, &ok)}
	case "reached_room":
		return script.ReachedRoom{Room: c.lookupRoom(path, raw.Room, &ok)}
	case "goal_complete":
		return script.GoalComplete{Goal: c.lookupGoal(path, raw.Goal, &ok)}
	case "npc_in_state":
		return script.NpcInState{Npc: c.lookupNpc(path, raw.Npc, &ok), State: raw.State}
	case "npc_has_item":
		return script.NpcHasItem{
			Npc:  c.lookupNpc(path, raw.Npc, &ok),
			Item: c.lookupItem(path, raw.Item, &ok),
		}
	case "with_npc":
		return script.WithNpc{Npc: c.lookupNpc(path, raw.Npc, &ok)}
	case "container_has_item":
		return script.ContainerHasItem{
			Container: c.lookupItem(path, raw.Container, &ok),
			Item:      c.lookupItem(path, raw.Item, &ok),
		}

	case "event_matches":
		if raw.Event == nil {
			c.errs.add(path, "event_matches requires an event pattern")
			return nil
		}
		pattern, patOK := c.cookEvent(path+".event", *raw.Event)
		if !patOK {
			return nil
		}
		return script.EventMatches{Pattern: pattern}

	default:
		c.errs.add(path, "unknown condition type %q", raw.Type)
		return nil
	}
}

// cookActions resolves an authored action list.
func (c *cooker) cookActions(path string, raws []rawAction) []script.Action {
	actions := make([]script.Action, 0, len(raws))
	for i := range raws {
		if a, ok := c.cookAction(fmt.Sprintf("%s[%d]", path, i), &raws[i]); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

func (c *cooker) cookAction(path string, raw *rawAction) (script.Action, bool) {
	ok := true
	switch raw.Type {
	case "show_message":
		return script.ShowMessage{Text: nfc(raw.Text)}, true
	case "spawn_item_in_room":
		a := script.SpawnItemInRoom{
			Item: c.lookupItem(path, raw.Item, &ok),
			Room: c.lookupRoom(path, raw.Room, &ok),
		}
		return a, ok
	case "spawn_item_in_inventory":
		return script.SpawnItemInInventory{Item: c.lookupItem(path, raw.Item, &ok)}, ok
	case "spawn_item_current_room":
		return script.SpawnItemCurrentRoom{Item: c.lookupItem(path, raw.Item, &ok)}, ok
	case "despawn_item":
		return script.DespawnItem{Item: c.lookupItem(path, raw.Item, &ok)}, ok

	case "set_flag":
		return script.SetFlag{Flag: raw.Flag, Duration: raw.Duration}, true
	case "clear_flag":
		return script.ClearFlag{Flag: raw.Flag}, true
	case "advance_flag":
		return script.AdvanceFlag{Flag: raw.Flag}, true
	case "reset_flag":
		return script.ResetFlag{Flag: raw.Flag}, true

	case "reveal_exit":
		a := script.RevealExit{From: c.lookupRoom(path, raw.From, &ok), Direction: raw.Direction}
		return a, ok
	case "lock_exit":
		a := script.LockExit{From: c.lookupRoom(path, raw.From, &ok), Direction: raw.Direction}
		return a, ok
	case "unlock_exit":
		a := script.UnlockExit{From: c.lookupRoom(path, raw.From, &ok), Direction: raw.Direction}
		return a, ok

	case "award_points":
		return script.AwardPoints{Points: raw.Points}, true
	case "set_npc_state":
		a := script.SetNpcState{Npc: c.lookupNpc(path, raw.Npc, &ok), State: raw.State}
		return a, ok
	case "npc_says":
		a := script.NpcSays{Npc: c.lookupNpc(path, raw.Npc, &ok), Quote: nfc(raw.Text)}
		return a, ok
	case "push_player_to":
		return script.PushPlayerTo{Room: c.lookupRoom(path, raw.Room, &ok)}, ok
	case "complete_goal":
		return script.CompleteGoal{Goal: c.lookupGoal(path, raw.Goal, &ok)}, ok

	case "schedule_in":
		if raw.Turns < 1 {
			c.errs.add(path+".turns", "must be at least 1, got %d", raw.Turns)
			ok = false
		}
		a := script.ScheduleIn{
			Turns:   raw.Turns,
			When:    script.Flatten(c.cookCond(path+".when", raw.When)),
			OnFalse: c.cookPolicy(path+".on_false", raw.OnFalse),
			Actions: c.cookActions(path+".actions", raw.Actions),
			Note:    nfc(raw.Note),
		}
		return a, ok
	case "schedule_at":
		if raw.Turn < 1 {
			c.errs.add(path+".turn", "must be at least 1, got %d", raw.Turn)
			ok = false
		}
		a := script.ScheduleAt{
			Turn:    raw.Turn,
			When:    script.Flatten(c.cookCond(path+".when", raw.When)),
			OnFalse: c.cookPolicy(path+".on_false", raw.OnFalse),
			Actions: c.cookActions(path+".actions", raw.Actions),
			Note:    nfc(raw.Note),
		}
		return a, ok

	default:
		c.errs.add(path, "unknown action type %q", raw.Type)
		return nil, false
	}
}

func (c *cooker) cookPolicy(path string, raw *rawPolicy) script.OnFalsePolicy {
	if raw == nil {
		return script.Cancel()
	}
	switch script.PolicyKind(raw.Kind) {
	case "", script.PolicyCancel:
		return script.Cancel()
	case script.PolicyRetryNextTurn:
		return script.RetryNextTurn()
	case script.PolicyRetryAfter:
		if raw.Turns < 1 {
			c.errs.add(path+".turns", "retry_after needs a positive delay, got %d", raw.Turns)
		}
		return script.RetryAfter(raw.Turns)
	default:
		c.errs.add(path+".kind", "unknown policy %q", raw.Kind)
		return script.Cancel()
	}
}
