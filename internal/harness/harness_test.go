package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/lamp.yaml")
	require.NoError(t, err)

	assert.Equal(t, "lamp", s.Name)
	assert.Equal(t, "lighthouse.cue", s.Bundle)
	assert.Len(t, s.Commands, 5)
	require.NotEmpty(t, s.Assertions)
	assert.Equal(t, AssertFlagSet, s.Assertions[0].Type)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", "bundle: x.cue\ncommands: [wait]\n"},
		{"missing bundle", "name: x\ncommands: [wait]\n"},
		{"bad yaml", "name: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := LoadScenario(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario_NoSuchFile(t *testing.T) {
	_, err := LoadScenario("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestScenario_Lamp(t *testing.T) {
	result := RunWithGolden(t, "testdata/lamp.yaml")
	assert.True(t, result.Passed())
}

func TestScenario_SchedInspect(t *testing.T) {
	result := RunWithGolden(t, "testdata/sched-inspect.yaml")
	assert.True(t, result.Passed())
}

func TestRun_UnknownBundle(t *testing.T) {
	s := &Scenario{Name: "ghost", Bundle: "no-such.cue"}
	_, err := Run(s, "testdata/ghost.yaml")
	assert.Error(t, err)
}

// Failing assertions should be collected, not short-circuited.
func TestRun_CollectsFailures(t *testing.T) {
	s := &Scenario{
		Name:     "wrong",
		Bundle:   "lighthouse.cue",
		Commands: []string{"take matches"},
		Assertions: []Assertion{
			{Type: AssertFlagSet, Flag: "lamp-lit"},
			{Type: AssertScore, Score: 99},
			{Type: AssertTranscriptContains, Text: "no such line"},
			{Type: AssertTranscriptAbsent, Text: "Taken."},
			{Type: AssertPlayerIn, Room: "lamproom"},
			{Type: AssertTurns, Turns: 1},
		},
	}
	result, err := Run(s, "testdata/wrong.yaml")
	require.NoError(t, err)

	assert.False(t, result.Passed())
	require.Len(t, result.Failures, 5)
	assert.Contains(t, result.Failures[0], "flag_set")
	assert.Contains(t, result.Failures[1], "score is 0, want 99")
	assert.Contains(t, result.Failures[2], "does not contain")
	assert.Contains(t, result.Failures[3], "unexpectedly contains")
	assert.Contains(t, result.Failures[4], "player_in")
}

func TestRun_TranscriptOrder(t *testing.T) {
	s := &Scenario{
		Name:     "order",
		Bundle:   "lighthouse.cue",
		Commands: []string{"take matches", "go up"},
		Assertions: []Assertion{
			{Type: AssertTranscriptOrder, Texts: []string{"Taken.", "Lamp Room", "echo rolls"}},
			// Reversed order must fail.
			{Type: AssertTranscriptOrder, Texts: []string{"Lamp Room", "Taken."}},
		},
	}
	result, err := Run(s, "testdata/order.yaml")
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], `did not find "Taken."`)
}

func TestRun_QuitStopsScript(t *testing.T) {
	s := &Scenario{
		Name:     "quit",
		Bundle:   "lighthouse.cue",
		Commands: []string{"quit", "take matches"},
		Assertions: []Assertion{
			{Type: AssertTranscriptAbsent, Text: "Taken."},
			{Type: AssertTurns, Turns: 0},
		},
	}
	result, err := Run(s, "testdata/quit.yaml")
	require.NoError(t, err)
	assert.True(t, result.Passed(), "failures: %v", result.Failures)
}
