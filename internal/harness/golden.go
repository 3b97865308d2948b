package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario file, checks its assertions, and
// compares the transcript against testdata/golden/{name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenarioPath string) *Result {
	t.Helper()

	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}

	result, err := Run(scenario, scenarioPath)
	if err != nil {
		t.Fatalf("run scenario %s: %v", scenario.Name, err)
	}
	for _, failure := range result.Failures {
		t.Errorf("scenario %s: %s", scenario.Name, failure)
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, scenario.Name, []byte(strings.Join(result.Transcript, "\n")+"\n"))
	return result
}
