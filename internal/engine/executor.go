package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/script"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// defaultActionBudget bounds the actions run in one command cycle. Trigger
// chains (push player -> enter-room trigger -> push player ...) are authored
// content and can loop; the budget turns a runaway chain into a logged
// truncation instead of a hung session.
const defaultActionBudget = 1000

// Executor applies authored actions to the world and the view.
//
// Application is best-effort: an action referencing a missing entity logs a
// warning and is skipped, and the rest of the batch still runs. Scheduling
// actions hand off to the Scheduler; player-push actions re-enter trigger
// dispatch through the dispatch hook set by New.
type Executor struct {
	sched    *Scheduler
	dispatch func(w *world.World, v *view.View, ev script.Event)
	log      *slog.Logger

	spent  int
	budget int
}

// NewExecutor creates an executor. The dispatch hook is wired afterwards by
// New, once the registry exists.
func NewExecutor(sched *Scheduler, log *slog.Logger) *Executor {
	return &Executor{sched: sched, log: log, budget: defaultActionBudget}
}

// ResetBudget rearms the per-cycle action budget. Called by the engine at
// the start of every command cycle.
func (x *Executor) ResetBudget() {
	x.spent = 0
}

// Apply runs each action in order against the world. Scheduling actions in
// the batch are stamped with source, the trigger the batch came from;
// uuid.Nil marks a batch with no originating trigger.
func (x *Executor) Apply(w *world.World, v *view.View, source uuid.UUID, actions []script.Action) {
	for _, a := range actions {
		if x.spent >= x.budget {
			x.log.Error("action budget exhausted, truncating cycle",
				slog.Int("budget", x.budget), slog.Int("turn", w.TurnCount))
			return
		}
		x.spent++
		if err := x.apply(w, v, source, a); err != nil {
			x.log.Warn("action skipped",
				slog.String("action", fmt.Sprintf("%T", a)),
				slog.String("error", err.Error()),
				slog.Int("turn", w.TurnCount))
		}
	}
}

func (x *Executor) apply(w *world.World, v *view.View, source uuid.UUID, action script.Action) error {
	switch a := action.(type) {
	case script.ShowMessage:
		v.Push(view.TagAmbient, a.Text)
		return nil

	case script.SpawnItemInRoom:
		return w.PlaceItemInRoom(a.Item, a.Room)

	case script.SpawnItemInInventory:
		return w.PlaceItemInInventory(a.Item)

	case script.SpawnItemCurrentRoom:
		return w.PlaceItemInRoom(a.Item, w.Player.Room)

	case script.DespawnItem:
		return w.RemoveItemEverywhere(a.Item)

	case script.SetFlag:
		w.Player.SetFlag(a.Flag, w.TurnCount, a.Duration)
		return nil

	case script.ClearFlag:
		w.Player.ClearFlag(a.Flag)
		return nil

	case script.AdvanceFlag:
		f := w.Player.Flag(a.Flag)
		if f == nil {
			return &world.ReferenceError{Kind: "flag", Name: a.Flag}
		}
		f.Advance()
		return nil

	case script.ResetFlag:
		f := w.Player.Flag(a.Flag)
		if f == nil {
			return &world.ReferenceError{Kind: "flag", Name: a.Flag}
		}
		f.Reset()
		return nil

	case script.RevealExit:
		return w.RevealExit(a.From, a.Direction)

	case script.LockExit:
		return w.LockExit(a.From, a.Direction)

	case script.UnlockExit:
		return w.UnlockExit(a.From, a.Direction)

	case script.AwardPoints:
		w.Player.Score += a.Points
		if a.Points >= 0 {
			v.Pushf(view.TagPoints, "[+%d points]", a.Points)
		} else {
			v.Pushf(view.TagPoints, "[%d points]", a.Points)
		}
		return nil

	case script.SetNpcState:
		npc, err := w.Npc(a.Npc)
		if err != nil {
			return err
		}
		npc.State = a.State
		return nil

	case script.NpcSays:
		npc, err := w.Npc(a.Npc)
		if err != nil {
			return err
		}
		v.Pushf(view.TagDialogue, "%s: %q", npc.Name, a.Quote)
		return nil

	case script.CompleteGoal:
		goal, err := w.Goal(a.Goal)
		if err != nil {
			return err
		}
		goal.Done = true
		return nil

	case script.PushPlayerTo:
		if _, err := w.Room(a.Room); err != nil {
			return err
		}
		prev := w.Player.Room
		if err := w.MovePlayerTo(a.Room); err != nil {
			return err
		}
		if x.dispatch != nil && prev != a.Room {
			x.dispatch(w, v, script.Event{Kind: script.EventLeaveRoom, Room: prev})
			x.dispatch(w, v, script.Event{Kind: script.EventEnterRoom, Room: a.Room})
		}
		return nil

	case script.ScheduleIn:
		_, err := x.sched.ScheduleIn(w.TurnCount, a.Turns, a.When, a.OnFalse, a.Actions, a.Note, source)
		return err

	case script.ScheduleAt:
		_, err := x.sched.ScheduleAt(w.TurnCount, a.Turn, a.When, a.OnFalse, a.Actions, a.Note, source)
		return err

	default:
		return fmt.Errorf("unhandled action variant %T", action)
	}
}
