package harness

import (
	"fmt"
	"slices"
)

// CheckExpectations evaluates the scenario's expect clause against a
// result. It returns one message per mismatch; an empty slice means
// the result matches.
func CheckExpectations(scenario *Scenario, result *Result) []string {
	var errs []string
	e := scenario.Expect

	if e.Consistent != nil && result.Consistent != *e.Consistent {
		errs = append(errs, fmt.Sprintf("consistent: expected %v, got %v", *e.Consistent, result.Consistent))
	}

	last, hasPass := lastPass(result)
	if e.Completed != nil {
		if !hasPass {
			errs = append(errs, "completed: no pass ran")
		} else if last.Completed != *e.Completed {
			errs = append(errs, fmt.Sprintf("completed: expected %v, got %v", *e.Completed, last.Completed))
		}
	}
	if e.StoppedAt != nil {
		if !hasPass {
			errs = append(errs, "stopped_at: no pass ran")
		} else if last.StoppedAt != *e.StoppedAt {
			errs = append(errs, fmt.Sprintf("stopped_at: expected %d, got %d", *e.StoppedAt, last.StoppedAt))
		}
	}
	if e.Credit != nil {
		if !hasPass {
			errs = append(errs, "credit: no pass ran")
		} else if last.Credit != *e.Credit {
			errs = append(errs, fmt.Sprintf("credit: expected %d, got %d", *e.Credit, last.Credit))
		}
	}

	if e.Assigned != nil && result.Assigned != uint64(*e.Assigned) {
		errs = append(errs, fmt.Sprintf("assigned: expected %d, got %d", *e.Assigned, result.Assigned))
	}
	if e.Trail != nil && !slices.Equal(e.Trail, result.Trail) {
		errs = append(errs, fmt.Sprintf("trail: expected %v, got %v", e.Trail, result.Trail))
	}
	if e.Proof != nil && !slices.Equal(e.Proof, result.Proof) {
		errs = append(errs, fmt.Sprintf("proof: expected %v, got %v", e.Proof, result.Proof))
	}
	if e.Equivalences != nil && !slices.Equal(e.Equivalences, result.Equivalences) {
		errs = append(errs, fmt.Sprintf("equivalences: expected %v, got %v", e.Equivalences, result.Equivalences))
	}
	return errs
}

func lastPass(result *Result) (PassResult, bool) {
	if len(result.Passes) == 0 {
		return PassResult{}, false
	}
	return result.Passes[len(result.Passes)-1], true
}
