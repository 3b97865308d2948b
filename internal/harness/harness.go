package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/amble/internal/loader"
	"github.com/roach88/amble/internal/repl"
	"github.com/roach88/amble/internal/view"
	"github.com/roach88/amble/internal/world"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Transcript is the tagged output, one line per view item.
	Transcript []string

	// Failures lists assertion failures; empty means the scenario passed.
	Failures []string

	// World is the final world state, for ad-hoc inspection in tests.
	World *world.World
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// transcriptSink records tagged lines into the result.
type transcriptSink struct {
	lines *[]string
}

func (s *transcriptSink) Render(items []view.Item) error {
	for _, item := range items {
		*s.lines = append(*s.lines, fmt.Sprintf("[%s] %s", item.Tag, item.Text))
	}
	return nil
}

// Run executes a scenario loaded from scenarioPath's directory. Each run
// starts from a freshly loaded bundle, so scenarios never see each other's
// state. Dev commands are available to scenarios; saving is not.
func Run(scenario *Scenario, scenarioPath string) (*Result, error) {
	bundlePath := filepath.Join(filepath.Dir(scenarioPath), scenario.Bundle)
	bundle, err := loader.Load(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := repl.NewSession(scenario.Name, bundle, log, repl.WithDevMode())

	result := &Result{}
	sink := &transcriptSink{lines: &result.Transcript}

	session.Start()
	if err := session.View.Flush(sink); err != nil {
		return nil, err
	}

	ctx := context.Background()
	for _, cmd := range scenario.Commands {
		if session.Done() {
			break
		}
		if err := session.Handle(ctx, cmd); err != nil {
			return nil, fmt.Errorf("scenario %s, command %q: %w", scenario.Name, cmd, err)
		}
		if err := session.View.Flush(sink); err != nil {
			return nil, err
		}
	}

	result.World = session.World
	evaluate(scenario, result)
	return result, nil
}

// evaluate checks every assertion, collecting all failures.
func evaluate(scenario *Scenario, result *Result) {
	transcript := strings.Join(result.Transcript, "\n")
	w := result.World

	for i, a := range scenario.Assertions {
		fail := func(format string, args ...any) {
			result.Failures = append(result.Failures,
				fmt.Sprintf("assertion %d (%s): %s", i, a.Type, fmt.Sprintf(format, args...)))
		}

		switch a.Type {
		case AssertTranscriptContains:
			if !strings.Contains(transcript, a.Text) {
				fail("transcript does not contain %q", a.Text)
			}
		case AssertTranscriptAbsent:
			if strings.Contains(transcript, a.Text) {
				fail("transcript unexpectedly contains %q", a.Text)
			}
		case AssertTranscriptOrder:
			pos := 0
			for _, text := range a.Texts {
				idx := strings.Index(transcript[pos:], text)
				if idx < 0 {
					fail("did not find %q after position %d", text, pos)
					break
				}
				pos += idx + len(text)
			}
		case AssertFlagSet:
			if !w.Player.HasFlag(a.Flag) {
				fail("flag %q is not set", a.Flag)
			}
		case AssertFlagClear:
			if w.Player.HasFlag(a.Flag) {
				fail("flag %q is set", a.Flag)
			}
		case AssertGoalComplete:
			goal, err := w.Goal(world.SymbolID(a.Goal))
			if err != nil {
				fail("unknown goal %q", a.Goal)
			} else if !goal.Done {
				fail("goal %q is not complete", a.Goal)
			}
		case AssertPlayerIn:
			if w.Player.Room != world.SymbolID(a.Room) {
				fail("player is not in %q", a.Room)
			}
		case AssertScore:
			if w.Player.Score != a.Score {
				fail("score is %d, want %d", w.Player.Score, a.Score)
			}
		case AssertTurns:
			if w.TurnCount != a.Turns {
				fail("turn count is %d, want %d", w.TurnCount, a.Turns)
			}
		default:
			fail("unknown assertion type")
		}
	}
}
