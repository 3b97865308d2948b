package engine

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// ScheduledEvent is a queued future effect: a batch of actions due on a
// turn, optionally guarded by a condition with an on-false policy. Source
// is the trigger that scheduled it, for traceability; uuid.Nil marks an
// event not raised by a trigger (bundle seeds, direct scheduling).
type ScheduledEvent struct {
	ID          int64                `json:"id"`
	DueTurn     int                  `json:"due_turn"`
	CreatedTurn int                  `json:"created_turn"`
	When        script.Condition     `json:"-"`
	OnFalse     script.OnFalsePolicy `json:"on_false"`
	Actions     []script.Action      `json:"-"`
	Note        string               `json:"note,omitempty"`
	Source      uuid.UUID            `json:"source"`
}

// TombstoneStatus records how a consumed event left the queue.
type TombstoneStatus string

const (
	TombstoneFired       TombstoneStatus = "fired"
	TombstoneCancelled   TombstoneStatus = "cancelled"
	TombstoneRescheduled TombstoneStatus = "rescheduled"
)

// Tombstone is the terminal record for a consumed event id. Exactly one
// tombstone exists per consumed id; an id is never both pending and
// tombstoned. Rescheduled tombstones point at the replacement id.
type Tombstone struct {
	Status       TombstoneStatus `json:"status"`
	Turn         int             `json:"turn"`
	SupersededBy int64           `json:"superseded_by,omitempty"`
}

// Scheduler owns the future-event queue.
//
// Ids come from a monotonic clock, and the drain consumes due events in
// (due turn ascending, id ascending) order, so two events scheduled for the
// same turn fire in the order they were scheduled. Events inserted while a
// drain is running carry ids above the drain's snapshot and wait for the
// next pass.
type Scheduler struct {
	clock      *Clock
	pending    []*ScheduledEvent
	tombstones map[int64]Tombstone
	eval       *Evaluator
	exec       *Executor
	log        *slog.Logger
}

// NewScheduler creates an empty scheduler. The executor back-reference is
// wired by New after both sides exist.
func NewScheduler(eval *Evaluator, log *slog.Logger) *Scheduler {
	return &Scheduler{
		clock:      NewClock(),
		tombstones: make(map[int64]Tombstone),
		eval:       eval,
		log:        log,
	}
}

// ScheduleIn queues actions to fire turns counted turns from now, stamped
// with the originating trigger. A delay below one is clamped to one with a
// warning, so the earliest an event can fire is the end of the next counted
// turn.
func (s *Scheduler) ScheduleIn(now, turns int, when script.Condition, onFalse script.OnFalsePolicy, actions []script.Action, note string, source uuid.UUID) (int64, error) {
	if turns < 1 {
		s.log.Warn("schedule delay clamped to 1 turn", slog.Int("turns", turns), slog.String("note", note))
		turns = 1
	}
	return s.insert(now, now+turns, when, onFalse, actions, note, source), nil
}

// ScheduleAt queues actions for an absolute turn, stamped with the
// originating trigger. A target at or before the current turn is clamped to
// the next turn with a warning.
func (s *Scheduler) ScheduleAt(now, turn int, when script.Condition, onFalse script.OnFalsePolicy, actions []script.Action, note string, source uuid.UUID) (int64, error) {
	if turn <= now {
		s.log.Warn("scheduled turn already passed, clamped to next turn",
			slog.Int("turn", turn), slog.Int("now", now), slog.String("note", note))
		turn = now + 1
	}
	return s.insert(now, turn, when, onFalse, actions, note, source), nil
}

func (s *Scheduler) insert(now, due int, when script.Condition, onFalse script.OnFalsePolicy, actions []script.Action, note string, source uuid.UUID) int64 {
	ev := &ScheduledEvent{
		ID:          s.clock.Next(),
		DueTurn:     due,
		CreatedTurn: now,
		When:        when,
		OnFalse:     onFalse,
		Actions:     actions,
		Note:        note,
		Source:      source,
	}
	s.pending = append(s.pending, ev)
	s.log.Debug("event scheduled",
		slog.Int64("id", ev.ID), slog.Int("due_turn", due), slog.String("note", note))
	return ev.ID
}

// DrainDue fires every pending event due at or before now.
//
// The due set is snapshotted before anything runs, so events inserted by
// fired actions are not reconsidered in the same pass even when nominally
// due. Within the snapshot, order is (due turn, id). Each consumed id gets
// exactly one tombstone; retries are fresh events with fresh ids, never
// mutations of the consumed one.
func (s *Scheduler) DrainDue(w *world.World, v *view.View, now int) {
	due := s.takeDue(now)
	for _, ev := range due {
		if s.eval.Evaluate(ev.When, w, nil) {
			s.log.Debug("scheduled event fired", slog.Int64("id", ev.ID), slog.Int("turn", now))
			s.exec.Apply(w, v, ev.Source, ev.Actions)
			s.tombstones[ev.ID] = Tombstone{Status: TombstoneFired, Turn: now}
			continue
		}
		if !ev.OnFalse.IsRetry() {
			s.log.Debug("scheduled event cancelled by policy", slog.Int64("id", ev.ID), slog.Int("turn", now))
			s.tombstones[ev.ID] = Tombstone{Status: TombstoneCancelled, Turn: now}
			continue
		}

		delay, clamped := ev.OnFalse.RetryDelay()
		if clamped {
			s.log.Warn("retry policy clamped", slog.String("error",
				(&PolicyError{EventID: ev.ID, Turns: ev.OnFalse.Turns}).Error()))
		}
		next := s.insert(now, now+delay, ev.When, ev.OnFalse, ev.Actions, ev.Note, ev.Source)
		s.tombstones[ev.ID] = Tombstone{Status: TombstoneRescheduled, Turn: now, SupersededBy: next}
		s.log.Debug("scheduled event retried",
			slog.Int64("id", ev.ID), slog.Int64("next_id", next), slog.Int("due_turn", now+delay))
	}
}

// takeDue removes and returns events due at or before now, sorted by
// (due turn, id).
func (s *Scheduler) takeDue(now int) []*ScheduledEvent {
	var due []*ScheduledEvent
	var rest []*ScheduledEvent
	for _, ev := range s.pending {
		if ev.DueTurn <= now {
			due = append(due, ev)
		} else {
			rest = append(rest, ev)
		}
	}
	s.pending = rest
	sort.Slice(due, func(i, j int) bool {
		if due[i].DueTurn != due[j].DueTurn {
			return due[i].DueTurn < due[j].DueTurn
		}
		return due[i].ID < due[j].ID
	})
	return due
}

// Pending returns the queued events sorted by (due turn, id), for the dev
// inspection surface. The returned slice is fresh; the events are shared.
func (s *Scheduler) Pending() []*ScheduledEvent {
	out := make([]*ScheduledEvent, len(s.pending))
	copy(out, s.pending)
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueTurn != out[j].DueTurn {
			return out[i].DueTurn < out[j].DueTurn
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Cancel removes a pending event by id, leaving a cancelled tombstone.
// Returns false if the id is not pending.
func (s *Scheduler) Cancel(id int64, now int) bool {
	for i, ev := range s.pending {
		if ev.ID == id {
			s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
			s.tombstones[id] = Tombstone{Status: TombstoneCancelled, Turn: now}
			return true
		}
	}
	return false
}

// Delay pushes a pending event's due turn back by turns. The id is kept:
// a delay is a debug adjustment, not a consumption. Returns false if the id
// is not pending.
func (s *Scheduler) Delay(id int64, turns int) bool {
	for _, ev := range s.pending {
		if ev.ID == id {
			ev.DueTurn += turns
			return true
		}
	}
	return false
}

// Lookup returns the tombstone for a consumed id, if any.
func (s *Scheduler) Lookup(id int64) (Tombstone, bool) {
	t, ok := s.tombstones[id]
	return t, ok
}

// CompactTombstones drops tombstones older than keep turns before now.
// Called after a successful save, when the history is durably recorded.
func (s *Scheduler) CompactTombstones(now, keep int) {
	for id, t := range s.tombstones {
		if t.Turn < now-keep {
			delete(s.tombstones, id)
		}
	}
}
