package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/world"
)

func loadManor(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load(filepath.Join("testdata", "manor.cue"))
	require.NoError(t, err)
	return b
}

func TestLoad_WorldShape(t *testing.T) {
	b := loadManor(t)
	w := b.World

	assert.Equal(t, "The Hollow Manor", w.Name)
	assert.Len(t, w.Rooms, 3)
	assert.Len(t, w.Items, 3)
	assert.Len(t, w.Npcs, 1)
	assert.Len(t, w.Goals, 1)

	foyer := w.Rooms[world.SymbolID("foyer")]
	require.NotNil(t, foyer)
	assert.Equal(t, foyer.ID, w.Player.Room, "player starts in start_room")
	assert.True(t, foyer.Visited)
	assert.True(t, foyer.Exits["down"].Hidden)
	assert.Equal(t, world.SymbolID("library"), foyer.Exits["north"].To)
}

func TestLoad_Placement(t *testing.T) {
	b := loadManor(t)
	w := b.World

	lantern := w.Items[world.SymbolID("lantern")]
	require.NotNil(t, lantern)
	assert.Equal(t, world.InRoom(world.SymbolID("foyer")), lantern.Location)
	assert.Contains(t, w.Rooms[world.SymbolID("foyer")].Contents, lantern.ID)

	ledger := w.Items[world.SymbolID("ledger")]
	require.NotNil(t, ledger)
	assert.Equal(t, world.InContainer(world.SymbolID("desk")), ledger.Location)
	assert.Contains(t, w.Items[world.SymbolID("desk")].Contents, ledger.ID)

	caretaker := w.Npcs[world.SymbolID("caretaker")]
	require.NotNil(t, caretaker)
	assert.Equal(t, world.SymbolID("library"), caretaker.Room)
	assert.Contains(t, w.Rooms[world.SymbolID("library")].Npcs, caretaker.ID)
	require.NotNil(t, caretaker.Movement)
	assert.Equal(t, world.MoveRoute, caretaker.Movement.Kind)
	assert.Equal(t, 3, caretaker.Movement.EveryTurns)
}

func TestLoad_TriggersCooked(t *testing.T) {
	b := loadManor(t)
	require.Len(t, b.Triggers, 2)

	reveal := b.Triggers[0]
	assert.Equal(t, "reveal-cellar", reveal.Name)
	assert.True(t, reveal.FireOnce)
	assert.Equal(t, script.EventUseItem, reveal.On.Kind)
	assert.Equal(t, world.SymbolID("lantern"), reveal.On.Item)
	assert.Equal(t, script.Condition(script.InRoom{Room: world.SymbolID("foyer")}), reveal.When)
	require.Len(t, reveal.Actions, 3)

	sched, ok := reveal.Actions[2].(script.ScheduleIn)
	require.True(t, ok)
	assert.Equal(t, 2, sched.Turns)
	assert.Equal(t, "draft", sched.Note)
	assert.Equal(t, script.PolicyRetryNextTurn, sched.OnFalse.Kind)
	require.Len(t, sched.Actions, 1)

	found := b.Triggers[1]
	assert.Equal(t, script.EventTakeItem, found.On.Kind)
	assert.False(t, found.FireOnce)
	assert.Equal(t, script.Condition(nil), found.When, "omitted when is unconditional")
}

func TestLoad_ScheduleSeeds(t *testing.T) {
	b := loadManor(t)
	require.Len(t, b.Seeds, 1)

	at, ok := b.Seeds[0].(script.ScheduleAt)
	require.True(t, ok)
	assert.Equal(t, 3, at.Turn)
	assert.Equal(t, "storm", at.Note)
	require.Len(t, at.Actions, 1)
}

func TestLoadBytes_ScheduleRejectsNonScheduling(t *testing.T) {
	src := []byte(`
world: {name: "W", start_room: "hall", seed: 1}
rooms: [{symbol: "hall", name: "Hall", description: "x"}]
schedule: [{type: "show_message", text: "too eager"}]
`)
	_, err := LoadBytes(src, "eager.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule_in")
}

func TestLoad_DeterministicIDs(t *testing.T) {
	a := loadManor(t)
	b := loadManor(t)

	assert.Equal(t, a.World.Player.Room, b.World.Player.Room)
	assert.Equal(t, a.Triggers[0].ID, b.Triggers[0].ID)
}

func TestLoadBytes_DanglingReferencesCollected(t *testing.T) {
	src := []byte(`
world: {name: "Broken", start_room: "nowhere", seed: 1}
rooms: [{symbol: "hall", name: "Hall", description: "x"}]
items: [{symbol: "coin", name: "coin", description: "x", room: "vault"}]
triggers: [
	{
		name: "bad"
		on: {kind: "always"}
		when: {type: "in_room", room: "vault"}
		actions: [{type: "npc_says", npc: "ghost", text: "boo"}]
	},
]
`)
	_, err := LoadBytes(src, "broken.cue")
	require.Error(t, err)

	var list *ErrorList
	require.ErrorAs(t, err, &list)
	assert.GreaterOrEqual(t, len(list.Errors), 4,
		"start room, item room, trigger pattern, and npc_says problems all reported")

	msg := err.Error()
	assert.Contains(t, msg, "nowhere")
	assert.Contains(t, msg, "vault")
	assert.Contains(t, msg, "ghost")
}

func TestLoadBytes_DuplicateGoalSymbol(t *testing.T) {
	src := []byte(`
world: {name: "W", start_room: "hall", seed: 1}
rooms: [{symbol: "hall", name: "Hall", description: "x"}]
goals: [
	{symbol: "escape", name: "Escape"},
	{symbol: "escape", name: "Escape Again"},
]
`)
	_, err := LoadBytes(src, "twice.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `goals[1]: duplicate symbol "escape"`)
}

func TestLoadBytes_InvalidCUE(t *testing.T) {
	_, err := LoadBytes([]byte(`world: {name: }`), "syntax.cue")
	require.Error(t, err)
}

func TestLoadBytes_UnknownVocabulary(t *testing.T) {
	src := []byte(`
world: {name: "W", start_room: "hall", seed: 1}
rooms: [{symbol: "hall", name: "Hall", description: "x"}]
triggers: [
	{
		name: "odd"
		on: {kind: "sneeze"}
		when: {type: "phase_of_moon"}
		actions: [{type: "explode"}]
	},
]
`)
	_, err := LoadBytes(src, "odd.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sneeze")
}

func TestLoad_ConditionsFlattened(t *testing.T) {
	src := []byte(`
world: {name: "W", start_room: "hall", seed: 1}
rooms: [{symbol: "hall", name: "Hall", description: "x"}]
triggers: [
	{
		name: "nested"
		on: {kind: "always"}
		when: {type: "all", all: [
			{type: "all", all: [
				{type: "has_flag", flag: "a"},
				{type: "has_flag", flag: "b"},
			]},
			{type: "has_flag", flag: "c"},
		]}
		actions: [{type: "show_message", text: "hi"}]
	},
]
`)
	b, err := LoadBytes(src, "nested.cue")
	require.NoError(t, err)
	require.Len(t, b.Triggers, 1)

	all, ok := b.Triggers[0].When.(script.All)
	require.True(t, ok)
	assert.Len(t, all.Children, 3, "nested all merges into its parent")
}
