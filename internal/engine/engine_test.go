package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

func pipelineWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New("pipeline", 99)

	north := &world.Room{ID: world.SymbolID("north"), Symbol: "north", Name: "North Hall",
		Exits: map[string]*world.Exit{"south": {To: world.SymbolID("south")}}}
	south := &world.Room{ID: world.SymbolID("south"), Symbol: "south", Name: "South Hall",
		Exits: map[string]*world.Exit{"north": {To: world.SymbolID("north")}}}
	w.Rooms[north.ID] = north
	w.Rooms[south.ID] = south
	w.Player.Room = north.ID
	north.Visited = true
	return w
}

func newTrigger(name string, on script.Event, when script.Condition, once bool, actions ...script.Action) *script.Trigger {
	return &script.Trigger{
		ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Name:     name,
		On:       on,
		When:     when,
		Actions:  actions,
		FireOnce: once,
	}
}

func TestDispatch_DeclarationOrder(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	on := script.Event{Kind: script.EventAlways}
	e.Register(newTrigger("b-second", on, nil, false, script.ShowMessage{Text: "one"}))
	e.Register(newTrigger("a-first", on, nil, false, script.ShowMessage{Text: "two"}))

	fired := e.Dispatch(w, v, script.Event{Kind: script.EventAlways})
	assert.Len(t, fired, 2)
	assert.Equal(t, []string{"one", "two"}, texts(v.Drain()),
		"dispatch order is registration order, not name order")
}

func TestDispatch_EarlierEffectsVisibleToLaterConditions(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	on := script.Event{Kind: script.EventAlways}
	e.Register(newTrigger("setter", on, nil, true, script.SetFlag{Flag: "chain"}))
	e.Register(newTrigger("chained", on, script.HasFlag{Flag: "chain"}, false,
		script.ShowMessage{Text: "saw it"}))

	e.Dispatch(w, v, script.Event{Kind: script.EventAlways})
	assert.Equal(t, []string{"saw it"}, texts(v.Drain()))
}

func TestDispatch_FireOnce(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	tr := newTrigger("once", script.Event{Kind: script.EventAlways}, nil, true,
		script.ShowMessage{Text: "only once"})
	e.Register(tr)

	e.Dispatch(w, v, script.Event{Kind: script.EventAlways})
	e.Dispatch(w, v, script.Event{Kind: script.EventAlways})
	assert.Equal(t, []string{"only once"}, texts(v.Drain()))

	st := e.Reg.State(tr.ID)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.FireCount)
}

func TestDispatch_DisabledTriggerSkipped(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	tr := newTrigger("mutable", script.Event{Kind: script.EventAlways}, nil, false,
		script.ShowMessage{Text: "alive"})
	e.Register(tr)

	require.True(t, e.Reg.SetEnabled(tr.ID, false))
	e.Dispatch(w, v, script.Event{Kind: script.EventAlways})
	assert.Empty(t, v.Drain(), "disabled trigger never matches")
	assert.Equal(t, 0, e.Reg.State(tr.ID).FireCount)

	require.True(t, e.Reg.SetEnabled(tr.ID, true))
	e.Dispatch(w, v, script.Event{Kind: script.EventAlways})
	assert.Equal(t, []string{"alive"}, texts(v.Drain()))

	assert.False(t, e.Reg.SetEnabled(uuid.New(), false), "unknown trigger id")
}

func TestDispatch_StampsScheduleSource(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	tr := newTrigger("delayed-echo", script.Event{Kind: script.EventAlways}, nil, true,
		script.ScheduleIn{Turns: 2, OnFalse: script.Cancel(), Actions: say("echo")})
	e.Register(tr)

	e.Dispatch(w, v, script.Event{Kind: script.EventAlways})

	pending := e.Sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, tr.ID, pending[0].Source, "queued event records the trigger that scheduled it")
}

func TestDispatch_PatternFiltersEntity(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	e.Register(newTrigger("north-only",
		script.Event{Kind: script.EventEnterRoom, Room: world.SymbolID("north")},
		nil, false, script.ShowMessage{Text: "north"}))

	e.Dispatch(w, v, script.Event{Kind: script.EventEnterRoom, Room: world.SymbolID("south")})
	assert.Empty(t, v.Drain())

	e.Dispatch(w, v, script.Event{Kind: script.EventEnterRoom, Room: world.SymbolID("north")})
	assert.Equal(t, []string{"north"}, texts(v.Drain()))
}

func TestFinishCommand_OneTurnDelayFiresSameCycle(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	// Scheduled during command handling at turn 0; due turn 1. The same
	// cycle's FinishCommand advances to turn 1 and drains it.
	e.BeginCommand()
	_, err := e.Sched.ScheduleIn(w.TurnCount, 1, nil, script.Cancel(), say("rumble"), "", uuid.Nil)
	require.NoError(t, err)

	e.FinishCommand(w, v, true)
	assert.Equal(t, 1, w.TurnCount)
	assert.Equal(t, []string{"rumble"}, texts(v.Drain()))
}

func TestFinishCommand_NoTurnNoDrain(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	_, err := e.Sched.ScheduleIn(w.TurnCount, 1, nil, script.Cancel(), say("rumble"), "", uuid.Nil)
	require.NoError(t, err)
	e.Register(newTrigger("ambient", script.Event{Kind: script.EventAlways}, nil, false,
		script.ShowMessage{Text: "the wind howls"}))

	// A free command: no turn, no drain, but ambient triggers still run.
	e.BeginCommand()
	e.FinishCommand(w, v, false)
	assert.Equal(t, 0, w.TurnCount)
	assert.Equal(t, []string{"the wind howls"}, texts(v.Drain()))

	e.BeginCommand()
	e.FinishCommand(w, v, true)
	assert.Equal(t, []string{"rumble", "the wind howls"}, texts(v.Drain()))
}

func TestFinishCommand_TimedFlagExpires(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	w.Player.SetFlag("dizzy", 0, 2)

	e.BeginCommand()
	e.FinishCommand(w, v, true) // turn 1
	assert.True(t, w.Player.HasFlag("dizzy"))
	v.Drain()

	e.BeginCommand()
	e.FinishCommand(w, v, true) // turn 2: expires
	assert.False(t, w.Player.HasFlag("dizzy"))
	assert.Contains(t, texts(v.Drain()), "The dizzy feeling passes.")
}

func TestPushPlayer_DispatchesRoomEvents(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	e.Register(newTrigger("on-enter-south",
		script.Event{Kind: script.EventEnterRoom, Room: world.SymbolID("south")},
		nil, false, script.ShowMessage{Text: "you stumble in"}))

	e.BeginCommand()
	e.Exec.Apply(w, v, uuid.Nil, []script.Action{script.PushPlayerTo{Room: world.SymbolID("south")}})

	assert.Equal(t, world.SymbolID("south"), w.Player.Room)
	assert.Equal(t, []string{"you stumble in"}, texts(v.Drain()))
}

func TestExecutor_BadActionSkippedBatchContinues(t *testing.T) {
	e := newTestEngine()
	w := pipelineWorld(t)
	v := view.New()

	e.BeginCommand()
	e.Exec.Apply(w, v, uuid.Nil, []script.Action{
		script.ShowMessage{Text: "before"},
		script.SetNpcState{Npc: world.SymbolID("no-such-npc"), State: "angry"},
		script.ShowMessage{Text: "after"},
	})
	assert.Equal(t, []string{"before", "after"}, texts(v.Drain()))
}

func TestMoveNpcs_RouteAndInterval(t *testing.T) {
	w := pipelineWorld(t)
	v := view.New()
	log := discardLogger()

	patrol := &world.Npc{ID: world.SymbolID("patrol"), Symbol: "patrol", Name: "the patrol",
		Room: world.SymbolID("south"),
		Movement: &world.MovementPlan{
			Kind:       world.MoveRoute,
			Route:      []uuid.UUID{world.SymbolID("north"), world.SymbolID("south")},
			EveryTurns: 2,
			Active:     true,
		}}
	w.Npcs[patrol.ID] = patrol
	w.Rooms[world.SymbolID("south")].Npcs = []uuid.UUID{patrol.ID}

	w.TurnCount = 1
	MoveNpcs(w, v, log)
	assert.Equal(t, world.SymbolID("south"), patrol.Room, "interval not yet elapsed")

	w.TurnCount = 2
	MoveNpcs(w, v, log)
	assert.Equal(t, world.SymbolID("north"), patrol.Room)
	assert.Equal(t, []string{"the patrol arrives."}, texts(v.Drain()),
		"arrival into the player's room is announced")

	w.TurnCount = 3
	MoveNpcs(w, v, log)
	assert.Equal(t, world.SymbolID("north"), patrol.Room, "moved last turn, waits out the interval")

	w.TurnCount = 4
	MoveNpcs(w, v, log)
	assert.Equal(t, world.SymbolID("south"), patrol.Room, "route wraps")
	assert.Equal(t, []string{"the patrol leaves."}, texts(v.Drain()))
}

func TestMoveNpcs_WanderIsDeterministicPerSeed(t *testing.T) {
	runWalk := func() []uuid.UUID {
		w := pipelineWorld(t)
		v := view.New()
		wanderer := &world.Npc{ID: world.SymbolID("cat"), Symbol: "cat", Name: "a cat",
			Room: world.SymbolID("south"),
			Movement: &world.MovementPlan{
				Kind: world.MoveWander, EveryTurns: 1, Active: true,
			}}
		w.Npcs[wanderer.ID] = wanderer
		w.Rooms[world.SymbolID("south")].Npcs = []uuid.UUID{wanderer.ID}

		var walk []uuid.UUID
		for turn := 1; turn <= 8; turn++ {
			w.TurnCount = turn
			MoveNpcs(w, v, discardLogger())
			walk = append(walk, wanderer.Room)
		}
		return walk
	}

	assert.Equal(t, runWalk(), runWalk(), "same seed, same walk")
}

func TestFullCycle_DeterministicTranscript(t *testing.T) {
	run := func() []view.Item {
		e := newTestEngine()
		w := pipelineWorld(t)
		v := view.New()

		e.Register(newTrigger("greeting", script.Event{Kind: script.EventAlways},
			script.MissingFlag{Flag: "greeted"}, false,
			script.SetFlag{Flag: "greeted"},
			script.ShowMessage{Text: "A voice whispers hello."},
			script.ScheduleIn{Turns: 2, OnFalse: script.Cancel(),
				Actions: say("The whisper returns.")}))

		var out []view.Item
		for i := 0; i < 5; i++ {
			e.BeginCommand()
			e.FinishCommand(w, v, true)
			out = append(out, v.Drain()...)
		}
		return out
	}

	assert.Equal(t, run(), run())
}
