package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine() *Engine {
	return New(discardLogger())
}

func emptyWorld() *world.World {
	return world.New("test", 1)
}

// texts extracts the message lines pushed during a drain.
func texts(items []view.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}

func say(msg string) []script.Action {
	return []script.Action{script.ShowMessage{Text: msg}}
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())

	resumed := NewClockAt(10)
	assert.Equal(t, int64(11), resumed.Next())
}

func TestDrain_OrderByDueTurnThenID(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	// Scheduled out of due order; same-turn ties must fire in schedule order.
	_, err := e.Sched.ScheduleIn(0, 2, nil, script.Cancel(), say("second-a"), "", uuid.Nil)
	require.NoError(t, err)
	_, err = e.Sched.ScheduleIn(0, 1, nil, script.Cancel(), say("first"), "", uuid.Nil)
	require.NoError(t, err)
	_, err = e.Sched.ScheduleIn(0, 2, nil, script.Cancel(), say("second-b"), "", uuid.Nil)
	require.NoError(t, err)

	e.Sched.DrainDue(w, v, 1)
	assert.Equal(t, []string{"first"}, texts(v.Drain()))

	e.Sched.DrainDue(w, v, 2)
	assert.Equal(t, []string{"second-a", "second-b"}, texts(v.Drain()))
}

func TestDrain_CatchesUpPastDueEvents(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	_, err := e.Sched.ScheduleIn(0, 1, nil, script.Cancel(), say("overdue"), "", uuid.Nil)
	require.NoError(t, err)

	// Drained well after the due turn: still fires, exactly once.
	e.Sched.DrainDue(w, v, 5)
	assert.Equal(t, []string{"overdue"}, texts(v.Drain()))

	e.Sched.DrainDue(w, v, 6)
	assert.Empty(t, v.Drain())
}

func TestDrain_ConditionTrueFiresAndTombstones(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	w.Player.SetFlag("ready", 0, 0)
	v := view.New()

	id, err := e.Sched.ScheduleIn(0, 1, script.HasFlag{Flag: "ready"}, script.Cancel(), say("boom"), "", uuid.Nil)
	require.NoError(t, err)

	e.Sched.DrainDue(w, v, 1)
	assert.Equal(t, []string{"boom"}, texts(v.Drain()))

	tomb, ok := e.Sched.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, TombstoneFired, tomb.Status)
	assert.Empty(t, e.Sched.Pending(), "consumed id never stays pending")
}

func TestDrain_CancelPolicy(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	id, err := e.Sched.ScheduleIn(0, 1, script.HasFlag{Flag: "never-set"}, script.Cancel(), say("nope"), "", uuid.Nil)
	require.NoError(t, err)

	e.Sched.DrainDue(w, v, 1)
	assert.Empty(t, v.Drain())

	tomb, ok := e.Sched.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, TombstoneCancelled, tomb.Status)
	assert.Empty(t, e.Sched.Pending())
}

func TestDrain_RetryGetsFreshID(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	source := world.SymbolID("trigger/gatekeeper")
	id, err := e.Sched.ScheduleIn(0, 1, script.HasFlag{Flag: "gate"}, script.RetryNextTurn(), say("through"), "gate-watch", source)
	require.NoError(t, err)

	e.Sched.DrainDue(w, v, 1)
	assert.Empty(t, v.Drain())

	tomb, ok := e.Sched.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, TombstoneRescheduled, tomb.Status)
	assert.NotZero(t, tomb.SupersededBy)
	assert.NotEqual(t, id, tomb.SupersededBy)

	pending := e.Sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, tomb.SupersededBy, pending[0].ID)
	assert.Equal(t, 2, pending[0].DueTurn)
	assert.Equal(t, "gate-watch", pending[0].Note, "retry keeps the authored note")
	assert.Equal(t, source, pending[0].Source, "retry keeps the originating trigger")

	// Condition satisfied before the retry comes due: it fires.
	w.Player.SetFlag("gate", 1, 0)
	e.Sched.DrainDue(w, v, 2)
	assert.Equal(t, []string{"through"}, texts(v.Drain()))
}

func TestDrain_RetryAfterClampsBadDelay(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	_, err := e.Sched.ScheduleIn(0, 1, script.HasFlag{Flag: "gate"}, script.RetryAfter(0), say("x"), "", uuid.Nil)
	require.NoError(t, err)

	e.Sched.DrainDue(w, v, 1)

	pending := e.Sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].DueTurn, "non-positive retry delay clamps to one turn")
}

func TestDrain_InsertedDuringDrainWaitsForNextPass(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	chained := []script.Action{
		script.ShowMessage{Text: "first"},
		script.ScheduleIn{Turns: 1, OnFalse: script.Cancel(), Actions: say("chained")},
	}
	_, err := e.Sched.ScheduleIn(0, 1, nil, script.Cancel(), chained, "", uuid.Nil)
	require.NoError(t, err)

	e.Sched.DrainDue(w, v, 1)
	assert.Equal(t, []string{"first"}, texts(v.Drain()), "chained event must not fire in the same pass")

	e.Sched.DrainDue(w, v, 2)
	assert.Equal(t, []string{"chained"}, texts(v.Drain()))
}

func TestScheduleIn_ClampsZeroDelay(t *testing.T) {
	e := newTestEngine()

	_, err := e.Sched.ScheduleIn(5, 0, nil, script.Cancel(), say("x"), "", uuid.Nil)
	require.NoError(t, err)

	pending := e.Sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 6, pending[0].DueTurn)
}

func TestScheduleAt_ClampsPastTurn(t *testing.T) {
	e := newTestEngine()

	_, err := e.Sched.ScheduleAt(5, 3, nil, script.Cancel(), say("x"), "", uuid.Nil)
	require.NoError(t, err)

	pending := e.Sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 6, pending[0].DueTurn)
}

func TestCancelAndDelay(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	a, _ := e.Sched.ScheduleIn(0, 2, nil, script.Cancel(), say("a"), "", uuid.Nil)
	b, _ := e.Sched.ScheduleIn(0, 2, nil, script.Cancel(), say("b"), "", uuid.Nil)

	require.True(t, e.Sched.Cancel(a, 0))
	assert.False(t, e.Sched.Cancel(a, 0), "already consumed")

	tomb, ok := e.Sched.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, TombstoneCancelled, tomb.Status)

	require.True(t, e.Sched.Delay(b, 3))
	assert.False(t, e.Sched.Delay(999, 1), "unknown id")

	e.Sched.DrainDue(w, v, 2)
	assert.Empty(t, v.Drain(), "cancelled and delayed events do not fire at the old turn")

	e.Sched.DrainDue(w, v, 5)
	assert.Equal(t, []string{"b"}, texts(v.Drain()))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	source := world.SymbolID("trigger/patient")
	_, err := e.Sched.ScheduleIn(0, 3, script.HasFlag{Flag: "ready"}, script.RetryAfter(2), say("later"), "note-kept", source)
	require.NoError(t, err)
	consumed, _ := e.Sched.ScheduleIn(0, 1, nil, script.Cancel(), say("soon"), "", uuid.Nil)
	e.Sched.DrainDue(w, v, 1)
	v.Drain()

	snap, err := e.Sched.Snapshot()
	require.NoError(t, err)

	restored := New(discardLogger())
	require.NoError(t, restored.Sched.Restore(snap, 1))

	pending := restored.Sched.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 3, pending[0].DueTurn)
	assert.Equal(t, "note-kept", pending[0].Note)
	assert.Equal(t, source, pending[0].Source)
	assert.Equal(t, script.Condition(script.HasFlag{Flag: "ready"}), pending[0].When)
	assert.Equal(t, script.PolicyRetryAfter, pending[0].OnFalse.Kind)

	tomb, ok := restored.Sched.Lookup(consumed)
	require.True(t, ok)
	assert.Equal(t, TombstoneFired, tomb.Status)

	// New ids continue above the restored clock.
	next, err := restored.Sched.ScheduleIn(1, 1, nil, script.Cancel(), say("new"), "", uuid.Nil)
	require.NoError(t, err)
	assert.Greater(t, next, snap.Clock)

	// The restored queue fires identically.
	w.Player.SetFlag("ready", 1, 0)
	restored.Sched.DrainDue(w, v, 3)
	assert.Equal(t, []string{"later"}, texts(v.Drain()))
}

func TestRestore_CorruptionIsFatal(t *testing.T) {
	base := func() *SchedulerSnapshot {
		return &SchedulerSnapshot{
			Clock: 5,
			Pending: []eventRecord{
				{ID: 2, DueTurn: 4, Actions: []byte("[]"), OnFalse: script.Cancel()},
			},
			Tombstones: map[int64]Tombstone{1: {Status: TombstoneFired, Turn: 1}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*SchedulerSnapshot)
	}{
		{"duplicate pending id", func(s *SchedulerSnapshot) {
			s.Pending = append(s.Pending, eventRecord{ID: 2, DueTurn: 4, Actions: []byte("[]")})
		}},
		{"pending and tombstoned", func(s *SchedulerSnapshot) {
			s.Tombstones[2] = Tombstone{Status: TombstoneCancelled, Turn: 1}
		}},
		{"id above clock", func(s *SchedulerSnapshot) {
			s.Pending[0].ID = 9
		}},
		{"tombstone above clock", func(s *SchedulerSnapshot) {
			s.Tombstones[9] = Tombstone{Status: TombstoneFired, Turn: 1}
		}},
		{"due before restored turn", func(s *SchedulerSnapshot) {
			s.Pending[0].DueTurn = 1
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := base()
			tc.mutate(snap)
			err := New(discardLogger()).Sched.Restore(snap, 2)
			require.Error(t, err)
			assert.True(t, IsCorruption(err))
		})
	}

	// The unmutated snapshot is fine.
	require.NoError(t, New(discardLogger()).Sched.Restore(base(), 2))
}

func TestCompactTombstones(t *testing.T) {
	e := newTestEngine()
	w := emptyWorld()
	v := view.New()

	old, _ := e.Sched.ScheduleIn(0, 1, nil, script.Cancel(), say("a"), "", uuid.Nil)
	e.Sched.DrainDue(w, v, 1)
	recent, _ := e.Sched.ScheduleIn(9, 1, nil, script.Cancel(), say("b"), "", uuid.Nil)
	e.Sched.DrainDue(w, v, 10)
	v.Drain()

	e.Sched.CompactTombstones(10, 5)

	_, ok := e.Sched.Lookup(old)
	assert.False(t, ok, "tombstone past the keep window is dropped")
	_, ok = e.Sched.Lookup(recent)
	assert.True(t, ok)
}
