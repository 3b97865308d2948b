// Package harness runs authored test scenarios: a bundle, a command script,
// and assertions over the resulting transcript and world state. Golden
// transcript files guard against regressions in output wording and order.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one playthrough test.
type Scenario struct {
	// Name uniquely identifies this scenario; also names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Bundle is the CUE bundle path, relative to the scenario file.
	Bundle string `yaml:"bundle"`

	// Commands is the player input, one command per entry, fed in order.
	Commands []string `yaml:"commands"`

	// Assertions validate the transcript and the final world state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates one aspect of a finished playthrough.
type Assertion struct {
	// Type selects the check:
	//   transcript_contains - Text appears somewhere in the transcript
	//   transcript_absent   - Text appears nowhere in the transcript
	//   transcript_order    - Texts appear in this relative order
	//   flag_set            - Flag is set on the player at the end
	//   flag_clear          - Flag is not set at the end
	//   goal_complete       - the goal with symbol Goal is done
	//   player_in           - the player ends in the room with symbol Room
	//   score               - final score equals Score
	//   turns               - final turn count equals Turns
	Type string `yaml:"type"`

	Text  string   `yaml:"text,omitempty"`
	Texts []string `yaml:"texts,omitempty"`
	Flag  string   `yaml:"flag,omitempty"`
	Goal  string   `yaml:"goal,omitempty"`
	Room  string   `yaml:"room,omitempty"`
	Score int      `yaml:"score,omitempty"`
	Turns int      `yaml:"turns,omitempty"`
}

// Assertion type constants.
const (
	AssertTranscriptContains = "transcript_contains"
	AssertTranscriptAbsent   = "transcript_absent"
	AssertTranscriptOrder    = "transcript_order"
	AssertFlagSet            = "flag_set"
	AssertFlagClear          = "flag_clear"
	AssertGoalComplete       = "goal_complete"
	AssertPlayerIn           = "player_in"
	AssertScore              = "score"
	AssertTurns              = "turns"
)

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Bundle == "" {
		return nil, fmt.Errorf("scenario %s: bundle is required", path)
	}
	return &s, nil
}
