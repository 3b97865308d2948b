package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/world"
)

// Evaluator decides whether conditions hold against current world state.
//
// Evaluation is pure: no world mutation, no output. A condition referencing
// an unknown entity is logged and folds to false rather than failing the
// cycle, so one bad authored reference cannot wedge a session.
type Evaluator struct {
	log *slog.Logger
}

// NewEvaluator creates an evaluator logging diagnostics to log.
func NewEvaluator(log *slog.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// Evaluate reports whether cond holds. A nil condition is vacuously true.
//
// ev is the event under dispatch, used by event-pattern predicates; it is
// nil during scheduled-event drains, where such predicates fold to false.
//
// All and Any short-circuit left to right, so a reference failure in a
// later child is not even observed when an earlier child decides the
// composite. This mirrors how authors reason about guard ordering.
func (e *Evaluator) Evaluate(cond script.Condition, w *world.World, ev *script.Event) bool {
	if cond == nil {
		return true
	}
	switch c := cond.(type) {
	case script.All:
		for _, child := range c.Children {
			if !e.Evaluate(child, w, ev) {
				return false
			}
		}
		return true

	case script.Any:
		for _, child := range c.Children {
			if e.Evaluate(child, w, ev) {
				return true
			}
		}
		return false

	case script.HasFlag:
		return w.Player.HasFlag(c.Flag)

	case script.MissingFlag:
		return !w.Player.HasFlag(c.Flag)

	case script.FlagInProgress:
		f := w.Player.Flag(c.Flag)
		return f != nil && f.InProgress()

	case script.FlagComplete:
		f := w.Player.Flag(c.Flag)
		return f != nil && f.Complete()

	case script.HasItem:
		return w.Player.Carrying(c.Item)

	case script.MissingItem:
		return !w.Player.Carrying(c.Item)

	case script.InRoom:
		return w.Player.Room == c.Room

	case script.ReachedRoom:
		room, err := w.Room(c.Room)
		if err != nil {
			return e.foldFalse(err, cond)
		}
		return room.Visited

	case script.GoalComplete:
		goal, err := w.Goal(c.Goal)
		if err != nil {
			return e.foldFalse(err, cond)
		}
		return goal.Done

	case script.NpcInState:
		npc, err := w.Npc(c.Npc)
		if err != nil {
			return e.foldFalse(err, cond)
		}
		return npc.State == c.State

	case script.NpcHasItem:
		npc, err := w.Npc(c.Npc)
		if err != nil {
			return e.foldFalse(err, cond)
		}
		return npc.HasItem(c.Item)

	case script.WithNpc:
		npc, err := w.Npc(c.Npc)
		if err != nil {
			return e.foldFalse(err, cond)
		}
		return npc.Room == w.Player.Room

	case script.ContainerHasItem:
		container, err := w.Item(c.Container)
		if err != nil {
			return e.foldFalse(err, cond)
		}
		for _, id := range container.Contents {
			if id == c.Item {
				return true
			}
		}
		return false

	case script.EventMatches:
		if ev == nil {
			e.log.Debug("event predicate outside event dispatch folds to false",
				slog.String("kind", string(c.Pattern.Kind)))
			return false
		}
		return ev.Matches(c.Pattern)

	default:
		// Unreachable for the sealed vocabulary; guards against a variant
		// added without an evaluation arm.
		e.log.Error("unhandled condition variant", slog.String("type", fmt.Sprintf("%T", cond)))
		return false
	}
}

// foldFalse logs a reference failure and returns false.
func (e *Evaluator) foldFalse(err error, cond script.Condition) bool {
	e.log.Warn("condition references unknown entity, treating as false",
		slog.String("condition", fmt.Sprintf("%T", cond)),
		slog.String("error", err.Error()))
	return false
}
