package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// TriggerState is the mutable runtime side of a trigger: whether it is
// enabled, and how often and when it last fired. It rides along in
// snapshots; the trigger definitions themselves are reloaded from the
// bundle.
type TriggerState struct {
	Enabled       bool `json:"enabled"`
	FireCount     int  `json:"fire_count"`
	LastFiredTurn int  `json:"last_fired_turn"`
}

// HasFired reports whether the trigger ever fired.
func (s *TriggerState) HasFired() bool { return s.FireCount > 0 }

// Registry holds the loaded triggers and dispatches game events to them.
//
// Triggers are kept in declaration order per event kind, and dispatch walks
// that order. Effects of an earlier trigger are visible to the conditions of
// later ones in the same dispatch, so authors can chain triggers on one
// event.
type Registry struct {
	byKind map[script.EventKind][]*script.Trigger
	state  map[uuid.UUID]*TriggerState
	eval   *Evaluator
	exec   *Executor
	log    *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(eval *Evaluator, exec *Executor, log *slog.Logger) *Registry {
	return &Registry{
		byKind: make(map[script.EventKind][]*script.Trigger),
		state:  make(map[uuid.UUID]*TriggerState),
		eval:   eval,
		exec:   exec,
		log:    log,
	}
}

// Register appends a trigger, enabled. Order of registration is the order
// of dispatch for triggers on the same event kind.
func (r *Registry) Register(t *script.Trigger) {
	r.byKind[t.On.Kind] = append(r.byKind[t.On.Kind], t)
	r.state[t.ID] = &TriggerState{Enabled: true}
}

// SetEnabled flips a trigger's enabled gate. A disabled trigger keeps its
// fired history and never matches until re-enabled. Returns false for an
// unknown id.
func (r *Registry) SetEnabled(id uuid.UUID, enabled bool) bool {
	st, ok := r.state[id]
	if !ok {
		return false
	}
	st.Enabled = enabled
	return true
}

// State returns the runtime state for a trigger id, or nil if unknown.
func (r *Registry) State(id uuid.UUID) *TriggerState {
	return r.state[id]
}

// Triggers returns all registered triggers in declaration order across
// kinds, for the dev inspection surface.
func (r *Registry) Triggers() []*script.Trigger {
	var all []*script.Trigger
	for _, kind := range script.EventKindOrder {
		all = append(all, r.byKind[kind]...)
	}
	return all
}

// Dispatch delivers a concrete event to every registered trigger whose
// pattern matches, in declaration order. Matching triggers have their
// condition evaluated with the event in scope; on true, their actions run
// through the executor. Disabled triggers and fire-once triggers that have
// fired are skipped.
//
// Returns the ids of triggers that fired. A failing action never stops the
// walk: dispatch is best-effort across the whole list.
func (r *Registry) Dispatch(w *world.World, v *view.View, ev script.Event) []uuid.UUID {
	var fired []uuid.UUID
	for _, t := range r.byKind[ev.Kind] {
		if !ev.Matches(t.On) {
			continue
		}
		st := r.state[t.ID]
		if !st.Enabled {
			continue
		}
		if t.FireOnce && st.HasFired() {
			continue
		}
		if !r.eval.Evaluate(t.When, w, &ev) {
			continue
		}

		r.log.Debug("trigger fired",
			slog.String("trigger", t.Name),
			slog.String("event", string(ev.Kind)),
			slog.Int("turn", w.TurnCount))

		r.exec.Apply(w, v, t.ID, t.Actions)
		st.FireCount++
		st.LastFiredTurn = w.TurnCount
		fired = append(fired, t.ID)
	}
	return fired
}

// SnapshotState exports per-trigger runtime state keyed by trigger id.
func (r *Registry) SnapshotState() map[uuid.UUID]*TriggerState {
	out := make(map[uuid.UUID]*TriggerState, len(r.state))
	for id, st := range r.state {
		copied := *st
		out[id] = &copied
	}
	return out
}

// RestoreState overlays saved runtime state onto registered triggers.
// State for trigger ids no longer present in the bundle is dropped with a
// warning rather than failing the load.
func (r *Registry) RestoreState(saved map[uuid.UUID]*TriggerState) {
	for id, st := range saved {
		if _, ok := r.state[id]; !ok {
			r.log.Warn("saved state for unknown trigger dropped", slog.String("trigger_id", id.String()))
			continue
		}
		copied := *st
		r.state[id] = &copied
	}
}
