package repl

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// handleDev runs the ":" debug surface. Everything here is read-or-tweak
// tooling for authors; none of it consumes a turn or fires triggers.
func (s *Session) handleDev(fields []string) {
	if !s.DevMode {
		s.View.Push(view.TagFailure, "Debug commands are disabled.")
		return
	}

	switch fields[0] {
	case ":sched":
		s.devSched()
	case ":sched-cancel":
		s.devSchedCancel(fields[1:])
	case ":sched-delay":
		s.devSchedDelay(fields[1:])
	case ":flags":
		s.devFlags()
	case ":triggers":
		s.devTriggers()
	case ":trigger-toggle":
		s.devTriggerToggle(fields[1:])
	case ":teleport":
		s.devTeleport(fields[1:])
	default:
		s.View.Pushf(view.TagFailure, "Unknown debug command %s.", fields[0])
	}
}

func (s *Session) devSched() {
	pending := s.Eng.Sched.Pending()
	if len(pending) == 0 {
		s.View.Push(view.TagSystem, "No scheduled events.")
		return
	}
	s.View.Pushf(view.TagSystem, "%d scheduled event(s), current turn %d:", len(pending), s.World.TurnCount)
	for _, ev := range pending {
		note := ev.Note
		if note == "" {
			note = "(no note)"
		}
		policy := string(ev.OnFalse.Kind)
		if ev.When == nil {
			policy = "unconditional"
		}
		line := fmt.Sprintf("  #%d due turn %d (%s) %s", ev.ID, ev.DueTurn, policy, note)
		if ev.Source != uuid.Nil {
			line += " (from " + s.triggerName(ev.Source) + ")"
		}
		s.View.Push(view.TagSystem, line)
	}
}

// triggerName resolves a trigger id to its authored name, falling back to
// the raw id when the trigger is no longer registered.
func (s *Session) triggerName(id uuid.UUID) string {
	for _, t := range s.Eng.Reg.Triggers() {
		if t.ID == id {
			return t.Name
		}
	}
	return id.String()
}

func (s *Session) devSchedCancel(args []string) {
	if len(args) != 1 {
		s.View.Push(view.TagFailure, "Usage: :sched-cancel <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.View.Pushf(view.TagFailure, "Bad event id %q.", args[0])
		return
	}
	if !s.Eng.Sched.Cancel(id, s.World.TurnCount) {
		s.View.Pushf(view.TagFailure, "No pending event #%d.", id)
		return
	}
	s.View.Pushf(view.TagSystem, "Cancelled event #%d.", id)
}

func (s *Session) devSchedDelay(args []string) {
	if len(args) != 2 {
		s.View.Push(view.TagFailure, "Usage: :sched-delay <id> <turns>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.View.Pushf(view.TagFailure, "Bad event id %q.", args[0])
		return
	}
	turns, err := strconv.Atoi(args[1])
	if err != nil || turns < 1 {
		s.View.Pushf(view.TagFailure, "Bad delay %q.", args[1])
		return
	}
	if !s.Eng.Sched.Delay(id, turns) {
		s.View.Pushf(view.TagFailure, "No pending event #%d.", id)
		return
	}
	s.View.Pushf(view.TagSystem, "Delayed event #%d by %d turn(s).", id, turns)
}

func (s *Session) devFlags() {
	flags := s.World.Player.Flags
	if len(flags) == 0 {
		s.View.Push(view.TagSystem, "No flags set.")
		return
	}
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.View.Pushf(view.TagSystem, "  %s", flags[name].String())
	}
}

func (s *Session) devTriggers() {
	triggers := s.Eng.Reg.Triggers()
	if len(triggers) == 0 {
		s.View.Push(view.TagSystem, "No triggers registered.")
		return
	}
	for _, t := range triggers {
		st := s.Eng.Reg.State(t.ID)
		status := "never fired"
		if st != nil && st.HasFired() {
			status = "fired " + strconv.Itoa(st.FireCount) + "x, last turn " + strconv.Itoa(st.LastFiredTurn)
		}
		marks := ""
		if t.FireOnce {
			marks = " (once)"
		}
		if st != nil && !st.Enabled {
			marks += " (disabled)"
		}
		s.View.Pushf(view.TagSystem, "  %s on %s%s - %s", t.Name, t.On.Kind, marks, status)
	}
}

// devTriggerToggle flips a trigger's enabled gate by authored name.
func (s *Session) devTriggerToggle(args []string) {
	if len(args) != 1 {
		s.View.Push(view.TagFailure, "Usage: :trigger-toggle <name>")
		return
	}
	for _, t := range s.Eng.Reg.Triggers() {
		if t.Name != args[0] {
			continue
		}
		st := s.Eng.Reg.State(t.ID)
		s.Eng.Reg.SetEnabled(t.ID, !st.Enabled)
		if st.Enabled {
			s.View.Pushf(view.TagSystem, "Trigger %q enabled.", t.Name)
		} else {
			s.View.Pushf(view.TagSystem, "Trigger %q disabled.", t.Name)
		}
		return
	}
	s.View.Pushf(view.TagFailure, "No trigger %q.", args[0])
}

func (s *Session) devTeleport(args []string) {
	if len(args) != 1 {
		s.View.Push(view.TagFailure, "Usage: :teleport <room-symbol>")
		return
	}
	id := world.SymbolID(args[0])
	if err := s.World.MovePlayerTo(id); err != nil {
		s.View.Pushf(view.TagFailure, "No room %q.", args[0])
		return
	}
	s.describeRoom()
}
