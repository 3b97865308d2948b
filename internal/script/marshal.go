package script

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// JSON encoding for the sealed vocabulary.
//
// Conditions and actions cross the persistence boundary inside scheduler
// snapshots, so they need a lossless round-trip. Each variant is encoded as
// an envelope object with a "type" tag plus that variant's fields. Unknown
// tags are a hard decode error - the vocabulary is closed, so an unknown tag
// means a corrupt or newer-format save.

type condEnvelope struct {
	Type      string            `json:"type"`
	Children  []json.RawMessage `json:"children,omitempty"`
	Flag      string            `json:"flag,omitempty"`
	Item      uuid.UUID         `json:"item,omitempty"`
	Room      uuid.UUID         `json:"room,omitempty"`
	Goal      uuid.UUID         `json:"goal,omitempty"`
	Npc       uuid.UUID         `json:"npc,omitempty"`
	Container uuid.UUID         `json:"container,omitempty"`
	State     string            `json:"state,omitempty"`
	Pattern   *Event            `json:"pattern,omitempty"`
}

// MarshalCondition encodes a condition tree. A nil condition encodes as
// JSON null, meaning "unconditional".
func MarshalCondition(c Condition) ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	env, err := condToEnvelope(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalCondition decodes a condition tree. JSON null decodes to nil.
func UnmarshalCondition(data []byte) (Condition, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env condEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode condition: %w", err)
	}
	return envelopeToCond(env)
}

func condToEnvelope(c Condition) (condEnvelope, error) {
	switch node := c.(type) {
	case All:
		children, err := marshalChildren(node.Children)
		if err != nil {
			return condEnvelope{}, err
		}
		return condEnvelope{Type: "all", Children: children}, nil
	case Any:
		children, err := marshalChildren(node.Children)
		if err != nil {
			return condEnvelope{}, err
		}
		return condEnvelope{Type: "any", Children: children}, nil
	case HasFlag:
		return condEnvelope{Type: "has_flag", Flag: node.Flag}, nil
	case MissingFlag:
		return condEnvelope{Type: "missing_flag", Flag: node.Flag}, nil
	case FlagInProgress:
		return condEnvelope{Type: "flag_in_progress", Flag: node.Flag}, nil
	case FlagComplete:
		return condEnvelope{Type: "flag_complete", Flag: node.Flag}, nil
	case HasItem:
		return condEnvelope{Type: "has_item", Item: node.Item}, nil
	case MissingItem:
		return condEnvelope{Type: "missing_item", Item: node.Item}, nil
	case InRoom:
		return condEnvelope{Type: "in_room", Room: node.Room}, nil
	case ReachedRoom:
		return condEnvelope{Type: "reached_room", Room: node.Room}, nil
	case GoalComplete:
		return condEnvelope{Type: "goal_complete", Goal: node.Goal}, nil
	case NpcInState:
		return condEnvelope{Type: "npc_in_state", Npc: node.Npc, State: node.State}, nil
	case NpcHasItem:
		return condEnvelope{Type: "npc_has_item", Npc: node.Npc, Item: node.Item}, nil
	case WithNpc:
		return condEnvelope{Type: "with_npc", Npc: node.Npc}, nil
	case ContainerHasItem:
		return condEnvelope{Type: "container_has_item", Container: node.Container, Item: node.Item}, nil
	case EventMatches:
		pattern := node.Pattern
		return condEnvelope{Type: "event_matches", Pattern: &pattern}, nil
	default:
		return condEnvelope{}, fmt.Errorf("unknown condition type: %T", c)
	}
}

func marshalChildren(children []Condition) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(children))
	for i, child := range children {
		data, err := MarshalCondition(child)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}

func envelopeToCond(env condEnvelope) (Condition, error) {
	switch env.Type {
	case "all", "any":
		children := make([]Condition, len(env.Children))
		for i, raw := range env.Children {
			child, err := UnmarshalCondition(raw)
			if err != nil {
				return nil, fmt.Errorf("%s child %d: %w", env.Type, i, err)
			}
			if child == nil {
				return nil, fmt.Errorf("%s child %d: null child", env.Type, i)
			}
			children[i] = child
		}
		if env.Type == "all" {
			return All{Children: children}, nil
		}
		return Any{Children: children}, nil
	case "has_flag":
		return HasFlag{Flag: env.Flag}, nil
	case "missing_flag":
		return MissingFlag{Flag: env.Flag}, nil
	case "flag_in_progress":
		return FlagInProgress{Flag: env.Flag}, nil
	case "flag_complete":
		return FlagComplete{Flag: env.Flag}, nil
	case "has_item":
		return HasItem{Item: env.Item}, nil
	case "missing_item":
		return MissingItem{Item: env.Item}, nil
	case "in_room":
		return InRoom{Room: env.Room}, nil
	case "reached_room":
		return ReachedRoom{Room: env.Room}, nil
	case "goal_complete":
		return GoalComplete{Goal: env.Goal}, nil
	case "npc_in_state":
		return NpcInState{Npc: env.Npc, State: env.State}, nil
	case "npc_has_item":
		return NpcHasItem{Npc: env.Npc, Item: env.Item}, nil
	case "with_npc":
		return WithNpc{Npc: env.Npc}, nil
	case "container_has_item":
		return ContainerHasItem{Container: env.Container, Item: env.Item}, nil
	case "event_matches":
		if env.Pattern == nil {
			return nil, fmt.Errorf("event_matches: missing pattern")
		}
		return EventMatches{Pattern: *env.Pattern}, nil
	default:
		return nil, fmt.Errorf("unknown condition tag %q", env.Type)
	}
}

type actionEnvelope struct {
	Type      string            `json:"type"`
	Text      string            `json:"text,omitempty"`
	Item      uuid.UUID         `json:"item,omitempty"`
	Room      uuid.UUID         `json:"room,omitempty"`
	Npc       uuid.UUID         `json:"npc,omitempty"`
	Goal      uuid.UUID         `json:"goal,omitempty"`
	Flag      string            `json:"flag,omitempty"`
	Duration  int               `json:"duration,omitempty"`
	From      uuid.UUID         `json:"from,omitempty"`
	Direction string            `json:"direction,omitempty"`
	Points    int               `json:"points,omitempty"`
	State     string            `json:"state,omitempty"`
	Quote     string            `json:"quote,omitempty"`
	Turns     int               `json:"turns,omitempty"`
	Turn      int               `json:"turn,omitempty"`
	When      json.RawMessage   `json:"when,omitempty"`
	OnFalse   *OnFalsePolicy    `json:"on_false,omitempty"`
	Actions   []json.RawMessage `json:"actions,omitempty"`
	Note      string            `json:"note,omitempty"`
}

// MarshalActions encodes an ordered action list.
func MarshalActions(actions []Action) ([]byte, error) {
	envs := make([]json.RawMessage, len(actions))
	for i, a := range actions {
		data, err := marshalAction(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		envs[i] = data
	}
	return json.Marshal(envs)
}

// UnmarshalActions decodes an ordered action list.
func UnmarshalActions(data []byte) ([]Action, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode action list: %w", err)
	}
	actions := make([]Action, len(raws))
	for i, raw := range raws {
		a, err := unmarshalAction(raw)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions[i] = a
	}
	return actions, nil
}

func marshalAction(a Action) ([]byte, error) {
	var env actionEnvelope
	switch act := a.(type) {
	case ShowMessage:
		env = actionEnvelope{Type: "show_message", Text: act.Text}
	case SpawnItemInRoom:
		env = actionEnvelope{Type: "spawn_item_in_room", Item: act.Item, Room: act.Room}
	case SpawnItemInInventory:
		env = actionEnvelope{Type: "spawn_item_in_inventory", Item: act.Item}
	case SpawnItemCurrentRoom:
		env = actionEnvelope{Type: "spawn_item_current_room", Item: act.Item}
	case DespawnItem:
		env = actionEnvelope{Type: "despawn_item", Item: act.Item}
	case SetFlag:
		env = actionEnvelope{Type: "set_flag", Flag: act.Flag, Duration: act.Duration}
	case ClearFlag:
		env = actionEnvelope{Type: "clear_flag", Flag: act.Flag}
	case AdvanceFlag:
		env = actionEnvelope{Type: "advance_flag", Flag: act.Flag}
	case ResetFlag:
		env = actionEnvelope{Type: "reset_flag", Flag: act.Flag}
	case RevealExit:
		env = actionEnvelope{Type: "reveal_exit", From: act.From, Direction: act.Direction}
	case LockExit:
		env = actionEnvelope{Type: "lock_exit", From: act.From, Direction: act.Direction}
	case UnlockExit:
		env = actionEnvelope{Type: "unlock_exit", From: act.From, Direction: act.Direction}
	case AwardPoints:
		env = actionEnvelope{Type: "award_points", Points: act.Points}
	case SetNpcState:
		env = actionEnvelope{Type: "set_npc_state", Npc: act.Npc, State: act.State}
	case NpcSays:
		env = actionEnvelope{Type: "npc_says", Npc: act.Npc, Quote: act.Quote}
	case PushPlayerTo:
		env = actionEnvelope{Type: "push_player_to", Room: act.Room}
	case CompleteGoal:
		env = actionEnvelope{Type: "complete_goal", Goal: act.Goal}
	case ScheduleIn:
		when, err := MarshalCondition(act.When)
		if err != nil {
			return nil, err
		}
		nested, err := marshalNested(act.Actions)
		if err != nil {
			return nil, err
		}
		policy := act.OnFalse
		env = actionEnvelope{Type: "schedule_in", Turns: act.Turns, When: when, OnFalse: &policy, Actions: nested, Note: act.Note}
	case ScheduleAt:
		when, err := MarshalCondition(act.When)
		if err != nil {
			return nil, err
		}
		nested, err := marshalNested(act.Actions)
		if err != nil {
			return nil, err
		}
		policy := act.OnFalse
		env = actionEnvelope{Type: "schedule_at", Turn: act.Turn, When: when, OnFalse: &policy, Actions: nested, Note: act.Note}
	default:
		return nil, fmt.Errorf("unknown action type: %T", a)
	}
	return json.Marshal(env)
}

func marshalNested(actions []Action) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(actions))
	for i, a := range actions {
		data, err := marshalAction(a)
		if err != nil {
			return nil, fmt.Errorf("nested action %d: %w", i, err)
		}
		out[i] = data
	}
	return out, nil
}

func unmarshalAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch env.Type {
	case "show_message":
		return ShowMessage{Text: env.Text}, nil
	case "spawn_item_in_room":
		return SpawnItemInRoom{Item: env.Item, Room: env.Room}, nil
	case "spawn_item_in_inventory":
		return SpawnItemInInventory{Item: env.Item}, nil
	case "spawn_item_current_room":
		return SpawnItemCurrentRoom{Item: env.Item}, nil
	case "despawn_item":
		return DespawnItem{Item: env.Item}, nil
	case "set_flag":
		return SetFlag{Flag: env.Flag, Duration: env.Duration}, nil
	case "clear_flag":
		return ClearFlag{Flag: env.Flag}, nil
	case "advance_flag":
		return AdvanceFlag{Flag: env.Flag}, nil
	case "reset_flag":
		return ResetFlag{Flag: env.Flag}, nil
	case "reveal_exit":
		return RevealExit{From: env.From, Direction: env.Direction}, nil
	case "lock_exit":
		return LockExit{From: env.From, Direction: env.Direction}, nil
	case "unlock_exit":
		return UnlockExit{From: env.From, Direction: env.Direction}, nil
	case "award_points":
		return AwardPoints{Points: env.Points}, nil
	case "set_npc_state":
		return SetNpcState{Npc: env.Npc, State: env.State}, nil
	case "npc_says":
		return NpcSays{Npc: env.Npc, Quote: env.Quote}, nil
	case "push_player_to":
		return PushPlayerTo{Room: env.Room}, nil
	case "complete_goal":
		return CompleteGoal{Goal: env.Goal}, nil
	case "schedule_in", "schedule_at":
		when, err := UnmarshalCondition(env.When)
		if err != nil {
			return nil, err
		}
		nested := make([]Action, len(env.Actions))
		for i, raw := range env.Actions {
			a, err := unmarshalAction(raw)
			if err != nil {
				return nil, fmt.Errorf("nested action %d: %w", i, err)
			}
			nested[i] = a
		}
		policy := Cancel()
		if env.OnFalse != nil {
			policy = *env.OnFalse
		}
		if env.Type == "schedule_in" {
			return ScheduleIn{Turns: env.Turns, When: when, OnFalse: policy, Actions: nested, Note: env.Note}, nil
		}
		return ScheduleAt{Turn: env.Turn, When: when, OnFalse: policy, Actions: nested, Note: env.Note}, nil
	default:
		return nil, fmt.Errorf("unknown action tag %q", env.Type)
	}
}
