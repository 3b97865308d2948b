package engine

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/script"
)

// eventRecord is the wire form of a ScheduledEvent. Condition and action
// trees serialize through the tagged-union envelopes.
type eventRecord struct {
	ID          int64                `json:"id"`
	DueTurn     int                  `json:"due_turn"`
	CreatedTurn int                  `json:"created_turn"`
	When        json.RawMessage      `json:"when,omitempty"`
	OnFalse     script.OnFalsePolicy `json:"on_false"`
	Actions     json.RawMessage      `json:"actions"`
	Note        string               `json:"note,omitempty"`
	Source      uuid.UUID            `json:"source"`
}

// SchedulerSnapshot is the persistent form of the queue: clock position,
// pending events, and tombstones.
type SchedulerSnapshot struct {
	Clock      int64               `json:"clock"`
	Pending    []eventRecord       `json:"pending"`
	Tombstones map[int64]Tombstone `json:"tombstones,omitempty"`
}

// Snapshot exports the queue for persistence.
func (s *Scheduler) Snapshot() (*SchedulerSnapshot, error) {
	snap := &SchedulerSnapshot{
		Clock:      s.clock.Current(),
		Pending:    make([]eventRecord, 0, len(s.pending)),
		Tombstones: make(map[int64]Tombstone, len(s.tombstones)),
	}
	for _, ev := range s.Pending() {
		when, err := script.MarshalCondition(ev.When)
		if err != nil {
			return nil, fmt.Errorf("snapshot event %d condition: %w", ev.ID, err)
		}
		actions, err := script.MarshalActions(ev.Actions)
		if err != nil {
			return nil, fmt.Errorf("snapshot event %d actions: %w", ev.ID, err)
		}
		snap.Pending = append(snap.Pending, eventRecord{
			ID:          ev.ID,
			DueTurn:     ev.DueTurn,
			CreatedTurn: ev.CreatedTurn,
			When:        when,
			OnFalse:     ev.OnFalse,
			Actions:     actions,
			Note:        ev.Note,
			Source:      ev.Source,
		})
	}
	for id, t := range s.tombstones {
		snap.Tombstones[id] = t
	}
	return snap, nil
}

// Restore replaces the queue with a snapshot taken at turn now.
//
// The snapshot is validated before anything is applied: duplicate ids, an id
// both pending and tombstoned, an id above the recorded clock, or a pending
// event due before the restored turn are all corruption, and corruption is
// fatal. The clock resumes from the snapshot position so new ids never
// collide with consumed ones.
func (s *Scheduler) Restore(snap *SchedulerSnapshot, now int) error {
	seen := make(map[int64]bool, len(snap.Pending))
	for _, rec := range snap.Pending {
		if seen[rec.ID] {
			return &CorruptionError{EventID: rec.ID, Reason: "duplicate pending id"}
		}
		seen[rec.ID] = true
		if _, dead := snap.Tombstones[rec.ID]; dead {
			return &CorruptionError{EventID: rec.ID, Reason: "id is both pending and tombstoned"}
		}
		if rec.ID > snap.Clock {
			return &CorruptionError{EventID: rec.ID, Reason: "id above recorded clock"}
		}
		if rec.DueTurn < now {
			return &CorruptionError{EventID: rec.ID,
				Reason: fmt.Sprintf("due turn %d is before restored turn %d", rec.DueTurn, now)}
		}
	}
	for id := range snap.Tombstones {
		if id > snap.Clock {
			return &CorruptionError{EventID: id, Reason: "tombstoned id above recorded clock"}
		}
	}

	pending := make([]*ScheduledEvent, 0, len(snap.Pending))
	for _, rec := range snap.Pending {
		var when script.Condition
		if len(rec.When) > 0 {
			var err error
			when, err = script.UnmarshalCondition(rec.When)
			if err != nil {
				return &CorruptionError{EventID: rec.ID, Reason: fmt.Sprintf("condition: %v", err)}
			}
		}
		actions, err := script.UnmarshalActions(rec.Actions)
		if err != nil {
			return &CorruptionError{EventID: rec.ID, Reason: fmt.Sprintf("actions: %v", err)}
		}
		pending = append(pending, &ScheduledEvent{
			ID:          rec.ID,
			DueTurn:     rec.DueTurn,
			CreatedTurn: rec.CreatedTurn,
			When:        when,
			OnFalse:     rec.OnFalse,
			Actions:     actions,
			Note:        rec.Note,
			Source:      rec.Source,
		})
	}

	s.clock = NewClockAt(snap.Clock)
	s.pending = pending
	s.tombstones = make(map[int64]Tombstone, len(snap.Tombstones))
	for id, t := range snap.Tombstones {
		s.tombstones[id] = t
	}
	return nil
}
