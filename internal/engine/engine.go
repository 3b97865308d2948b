package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// Engine wires the evaluator, executor, scheduler, and registry into one
// facade. All four share the logger and dispatch into each other within the
// package; callers see Dispatch, FinishCommand, and the scheduler's debug
// surface.
type Engine struct {
	Eval  *Evaluator
	Exec  *Executor
	Sched *Scheduler
	Reg   *Registry

	log *slog.Logger
}

// New builds a fully wired engine.
func New(log *slog.Logger) *Engine {
	eval := NewEvaluator(log)
	sched := NewScheduler(eval, log)
	exec := NewExecutor(sched, log)
	reg := NewRegistry(eval, exec, log)

	// Mutual references within the package: the scheduler fires actions
	// through the executor, and player-push actions re-enter trigger
	// dispatch through the registry.
	sched.exec = exec
	exec.dispatch = func(w *world.World, v *view.View, ev script.Event) {
		reg.Dispatch(w, v, ev)
	}

	return &Engine{Eval: eval, Exec: exec, Sched: sched, Reg: reg, log: log}
}

// Register adds a loaded trigger to the registry.
func (e *Engine) Register(t *script.Trigger) {
	e.Reg.Register(t)
}

// Dispatch delivers a game event to matching triggers and returns the ids
// of triggers that fired. Command handlers call this at the point the event
// semantically happens (after the take, before the turn finishes).
func (e *Engine) Dispatch(w *world.World, v *view.View, ev script.Event) []uuid.UUID {
	return e.Reg.Dispatch(w, v, ev)
}

// BeginCommand rearms per-cycle limits. The session calls it before
// handling each player command.
func (e *Engine) BeginCommand() {
	e.Exec.ResetBudget()
}

// FinishCommand completes one command cycle.
//
// When the command consumed a turn, the pipeline runs in fixed order: the
// turn counter advances, NPCs move, scheduled events due at the new turn
// drain, and timed flags expire. Ambient triggers are checked every cycle,
// turn or no turn, so "look" still lets the world breathe. An event
// scheduled with a one-turn delay during command handling at turn N is due
// at N+1 and therefore fires in this same cycle's drain.
//
// The caller flushes the view afterwards; output order is exactly the order
// stages pushed lines.
func (e *Engine) FinishCommand(w *world.World, v *view.View, turnTaken bool) {
	if turnTaken {
		w.TurnCount++
		MoveNpcs(w, v, e.log)
		e.Sched.DrainDue(w, v, w.TurnCount)
		TickStatus(w, v)
	}

	e.Reg.Dispatch(w, v, script.Event{Kind: script.EventAlways})
}
