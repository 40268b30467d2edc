package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden file form of a scenario run.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Consistent   bool         `json:"consistent"`
	Passes       []PassResult `json:"passes"`
	Trail        []int        `json:"trail"`
	Assigned     uint64       `json:"assigned"`
	Proof        []string     `json:"proof"`
	Equivalences [][2]int     `json:"equivalences,omitempty"`
}

// RunWithGolden executes a scenario and compares the outcome against
// the golden file at testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result against the named golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: name,
		Consistent:   result.Consistent,
		Passes:       result.Passes,
		Trail:        result.Trail,
		Assigned:     result.Assigned,
		Proof:        result.Proof,
		Equivalences: result.Equivalences,
	}
	data, err := json.MarshalIndent(&snapshot, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
