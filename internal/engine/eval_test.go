package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/world"
)

func evalWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New("eval", 1)

	hall := &world.Room{ID: world.SymbolID("hall"), Symbol: "hall", Name: "Hall", Visited: true}
	vault := &world.Room{ID: world.SymbolID("vault"), Symbol: "vault", Name: "Vault"}
	w.Rooms[hall.ID] = hall
	w.Rooms[vault.ID] = vault
	w.Player.Room = hall.ID

	key := &world.Item{ID: world.SymbolID("key"), Symbol: "key", Name: "iron key",
		Location: world.InInventory(), Portable: true}
	box := &world.Item{ID: world.SymbolID("box"), Symbol: "box", Name: "box", Container: true,
		Location: world.InRoom(hall.ID)}
	w.Items[key.ID] = key
	w.Items[box.ID] = box
	w.Player.Inventory = append(w.Player.Inventory, key.ID)

	guard := &world.Npc{ID: world.SymbolID("guard"), Symbol: "guard", Name: "guard",
		Room: hall.ID, State: "bored"}
	w.Npcs[guard.ID] = guard

	goal := &world.Goal{ID: world.SymbolID("escape"), Symbol: "escape", Name: "Escape"}
	w.Goals[goal.ID] = goal

	w.Player.SetFlag("torch-lit", 0, 0)
	w.Player.SetSequenceFlag("ritual", 0, 2)
	w.Player.Flag("ritual").Advance()
	return w
}

func TestEvaluate_Leaves(t *testing.T) {
	e := NewEvaluator(discardLogger())
	w := evalWorld(t)

	tests := []struct {
		name string
		cond script.Condition
		want bool
	}{
		{"nil condition is true", nil, true},
		{"has flag", script.HasFlag{Flag: "torch-lit"}, true},
		{"missing flag", script.MissingFlag{Flag: "torch-lit"}, false},
		{"flag in progress", script.FlagInProgress{Flag: "ritual"}, true},
		{"flag not complete", script.FlagComplete{Flag: "ritual"}, false},
		{"has item", script.HasItem{Item: world.SymbolID("key")}, true},
		{"missing item", script.MissingItem{Item: world.SymbolID("key")}, false},
		{"in room", script.InRoom{Room: world.SymbolID("hall")}, true},
		{"reached room", script.ReachedRoom{Room: world.SymbolID("hall")}, true},
		{"unreached room", script.ReachedRoom{Room: world.SymbolID("vault")}, false},
		{"goal incomplete", script.GoalComplete{Goal: world.SymbolID("escape")}, false},
		{"npc in state", script.NpcInState{Npc: world.SymbolID("guard"), State: "bored"}, true},
		{"npc wrong state", script.NpcInState{Npc: world.SymbolID("guard"), State: "angry"}, false},
		{"with npc", script.WithNpc{Npc: world.SymbolID("guard")}, true},
		{"npc lacks item", script.NpcHasItem{Npc: world.SymbolID("guard"), Item: world.SymbolID("key")}, false},
		{"container empty", script.ContainerHasItem{Container: world.SymbolID("box"), Item: world.SymbolID("key")}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Evaluate(tc.cond, w, nil))
		})
	}
}

func TestEvaluate_Composites(t *testing.T) {
	e := NewEvaluator(discardLogger())
	w := evalWorld(t)

	all := script.All{Children: []script.Condition{
		script.HasFlag{Flag: "torch-lit"},
		script.InRoom{Room: world.SymbolID("hall")},
	}}
	assert.True(t, e.Evaluate(all, w, nil))

	any := script.Any{Children: []script.Condition{
		script.HasFlag{Flag: "no-such"},
		script.WithNpc{Npc: world.SymbolID("guard")},
	}}
	assert.True(t, e.Evaluate(any, w, nil))

	assert.True(t, e.Evaluate(script.All{}, w, nil), "empty all is vacuously true")
	assert.False(t, e.Evaluate(script.Any{}, w, nil), "empty any is false")
}

func TestEvaluate_UnknownReferenceFoldsFalse(t *testing.T) {
	e := NewEvaluator(discardLogger())
	w := evalWorld(t)

	ghost := world.SymbolID("nonexistent")
	assert.False(t, e.Evaluate(script.NpcInState{Npc: ghost, State: "any"}, w, nil))
	assert.False(t, e.Evaluate(script.ReachedRoom{Room: ghost}, w, nil))
	assert.False(t, e.Evaluate(script.GoalComplete{Goal: ghost}, w, nil))

	// A bad reference inside Any does not poison the rest.
	cond := script.Any{Children: []script.Condition{
		script.NpcInState{Npc: ghost, State: "any"},
		script.HasFlag{Flag: "torch-lit"},
	}}
	assert.True(t, e.Evaluate(cond, w, nil))
}

func TestEvaluate_EventPattern(t *testing.T) {
	e := NewEvaluator(discardLogger())
	w := evalWorld(t)

	cond := script.EventMatches{Pattern: script.Event{Kind: script.EventTakeItem}}
	ev := script.Event{Kind: script.EventTakeItem, Item: world.SymbolID("key")}

	assert.True(t, e.Evaluate(cond, w, &ev))
	assert.False(t, e.Evaluate(cond, w, nil), "no event in scope during a drain")

	require.False(t, e.Evaluate(script.EventMatches{
		Pattern: script.Event{Kind: script.EventDropItem},
	}, w, &ev))
}
