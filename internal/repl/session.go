// Package repl runs an interactive session: it parses player commands,
// dispatches the resulting game events, and completes each command cycle
// through the engine pipeline before flushing output.
package repl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/engine"
	"github.com/roach88/amble/internal/loader"
	"github.com/roach88/amble/internal/store"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// AutosaveSlot is the slot the session writes on its autosave cadence.
const AutosaveSlot = "autosave"

// tombstoneKeepTurns is how much consumed-event history survives a save.
// Compaction runs only after the save succeeds.
const tombstoneKeepTurns = 200

// Session owns one playthrough: world, engine, output buffer, and the
// optional save store.
type Session struct {
	World *world.World
	Eng   *engine.Engine
	View  *view.View

	BundleName    string
	Store         *store.Store // nil disables save, load, and autosave
	AutosaveEvery int          // counted turns between autosaves; 0 disables
	DevMode       bool         // enables the ":" command surface

	log  *slog.Logger
	done bool
}

// Option configures a session.
type Option func(*Session)

// WithStore attaches a save store.
func WithStore(st *store.Store) Option {
	return func(s *Session) { s.Store = st }
}

// WithAutosaveEvery sets the autosave cadence in counted turns.
func WithAutosaveEvery(turns int) Option {
	return func(s *Session) { s.AutosaveEvery = turns }
}

// WithDevMode enables the ":" debug commands.
func WithDevMode() Option {
	return func(s *Session) { s.DevMode = true }
}

// NewSession builds a session from a loaded bundle.
func NewSession(bundleName string, b *loader.Bundle, log *slog.Logger, opts ...Option) *Session {
	s := &Session{
		World:      b.World,
		Eng:        engine.New(log),
		View:       view.New(),
		BundleName: bundleName,
		log:        log,
	}
	for _, t := range b.Triggers {
		s.Eng.Register(t)
	}
	// Bundle-seeded events enter the queue before the first command, so
	// their due turns count from turn zero. No trigger raised them.
	s.Eng.Exec.Apply(s.World, s.View, uuid.Nil, b.Seeds)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Done reports whether the player has quit.
func (s *Session) Done() bool { return s.done }

// Start pushes the opening room description. The caller flushes.
func (s *Session) Start() {
	s.describeRoom()
}

// Handle processes one line of player input through a full command cycle:
// parse and execute the command, then finish the turn pipeline. The view
// holds the cycle's output afterwards; the caller flushes it.
func (s *Session) Handle(ctx context.Context, line string) error {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil
	}

	s.Eng.BeginCommand()

	if strings.HasPrefix(fields[0], ":") {
		s.handleDev(fields)
		// Dev commands bypass the pipeline entirely: no turn, no
		// ambient triggers, so inspecting state never perturbs it.
		return nil
	}

	turnTaken := s.dispatch(ctx, fields)
	s.Eng.FinishCommand(s.World, s.View, turnTaken)

	if turnTaken {
		if err := s.maybeAutosave(ctx); err != nil {
			s.log.Error("autosave failed", slog.String("error", err.Error()))
			s.View.Push(view.TagError, "Autosave failed; see the log.")
		}
	}
	return nil
}

// dispatch runs one command and reports whether it consumed a turn.
func (s *Session) dispatch(ctx context.Context, fields []string) bool {
	verb := strings.ToLower(fields[0])
	rest := fields[1:]

	switch verb {
	case "look", "l":
		s.describeRoom()
		return false
	case "inventory", "i", "inv":
		s.showInventory()
		return false
	case "goals":
		s.showGoals()
		return false
	case "score":
		s.View.Pushf(view.TagSystem, "Score: %d points in %d turns.", s.World.Player.Score, s.World.TurnCount)
		return false
	case "quit", "q":
		s.done = true
		s.View.Push(view.TagSystem, "Goodbye.")
		return false
	case "save":
		s.cmdSave(ctx, rest)
		return false
	case "load":
		s.cmdLoad(ctx, rest)
		return false

	case "wait", "z":
		s.View.Push(view.TagEnvironment, "Time passes.")
		return true
	case "go", "walk":
		return s.cmdGo(rest)
	case "north", "south", "east", "west", "up", "down":
		return s.cmdGo([]string{verb})
	case "n", "s", "e", "w":
		return s.cmdGo([]string{expandDirection(verb)})
	case "take", "get":
		return s.cmdTake(rest)
	case "drop":
		return s.cmdDrop(rest)
	case "open":
		return s.cmdOpen(rest)
	case "use":
		return s.cmdUse(rest)
	case "examine", "x":
		return s.cmdExamine(rest)
	case "talk":
		return s.cmdTalk(rest)
	case "give":
		return s.cmdGive(rest)

	default:
		s.View.Pushf(view.TagFailure, "I don't know how to %q.", verb)
		return false
	}
}

func expandDirection(short string) string {
	switch short {
	case "n":
		return "north"
	case "s":
		return "south"
	case "e":
		return "east"
	case "w":
		return "west"
	}
	return short
}

// maybeAutosave writes the autosave slot when the cadence comes due, then
// compacts old tombstones; the history is durable once the save lands.
func (s *Session) maybeAutosave(ctx context.Context) error {
	if s.Store == nil || s.AutosaveEvery <= 0 {
		return nil
	}
	if s.World.TurnCount%s.AutosaveEvery != 0 {
		return nil
	}
	if err := s.saveTo(ctx, AutosaveSlot); err != nil {
		return err
	}
	s.Eng.Sched.CompactTombstones(s.World.TurnCount, tombstoneKeepTurns)
	return nil
}

func (s *Session) saveTo(ctx context.Context, slot string) error {
	snap, err := s.Eng.Sched.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot scheduler: %w", err)
	}
	return s.Store.Save(ctx, slot, &store.SaveData{
		BundleName: s.BundleName,
		World:      s.World,
		Scheduler:  snap,
		Triggers:   s.Eng.Reg.SnapshotState(),
	})
}

// loadFrom replaces session state from a slot. The scheduler snapshot is
// validated before anything is swapped in; a corrupt queue aborts the load
// and the running session keeps its state.
func (s *Session) loadFrom(ctx context.Context, slot string) error {
	data, err := s.Store.Load(ctx, slot)
	if err != nil {
		return err
	}
	if data.BundleName != s.BundleName {
		return fmt.Errorf("slot %q was saved from bundle %q, this session runs %q",
			slot, data.BundleName, s.BundleName)
	}

	restored := engine.New(s.log)
	if err := restored.Sched.Restore(data.Scheduler, data.World.TurnCount); err != nil {
		return fmt.Errorf("load slot %q: %w", slot, err)
	}
	for _, t := range s.Eng.Reg.Triggers() {
		restored.Register(t)
	}
	restored.Reg.RestoreState(data.Triggers)

	s.World = data.World
	s.Eng = restored
	return nil
}

func (s *Session) cmdSave(ctx context.Context, args []string) {
	if s.Store == nil {
		s.View.Push(view.TagFailure, "Saving is not available in this session.")
		return
	}
	slot := "save"
	if len(args) > 0 {
		slot = args[0]
	}
	if err := s.saveTo(ctx, slot); err != nil {
		s.log.Error("save failed", slog.String("slot", slot), slog.String("error", err.Error()))
		s.View.Push(view.TagError, "Save failed; see the log.")
		return
	}
	s.View.Pushf(view.TagSystem, "Saved to %q.", slot)
}

func (s *Session) cmdLoad(ctx context.Context, args []string) {
	if s.Store == nil {
		s.View.Push(view.TagFailure, "Loading is not available in this session.")
		return
	}
	slot := "save"
	if len(args) > 0 {
		slot = args[0]
	}
	if err := s.loadFrom(ctx, slot); err != nil {
		s.log.Error("load failed", slog.String("slot", slot), slog.String("error", err.Error()))
		s.View.Pushf(view.TagError, "Load failed: %v", err)
		return
	}
	s.View.Pushf(view.TagSystem, "Loaded %q.", slot)
	s.describeRoom()
}
