// Package harness executes probing conformance scenarios.
//
// A scenario is a YAML file naming a formula, a probing configuration
// and the expected outcome. The runner loads the formula into a fresh
// solver, attaches an in-memory proof recorder and runs a fixed number
// of forced probing passes. Tests compare the outcome against the
// scenario's expect clause and against a golden snapshot of the whole
// run.
//
// Scenario example:
//
//	name: failed_literal
//	description: probing 1 fails and asserts the negation
//	vars: 3
//	clauses:
//	  - [-1, 2]
//	  - [-1, -2]
//	  - [1, 3]
//	passes: 1
//	expect:
//	  trail: [-1, 3]
//	  proof:
//	    - "-1 0"
//	    - "3 0"
package harness

import (
	"context"
	"fmt"

	"github.com/sondalab/sonda/internal/sat"
)

// Run executes a scenario: it loads the formula into a fresh solver,
// attaches a proof recorder and runs the requested number of forced
// probing passes. Passes stop early once the solver is inconsistent.
//
// The recorder is attached after loading, so input clauses never show
// up as derived ones.
func Run(scenario *Scenario) (*Result, error) {
	opts := sat.DefaultOptions()
	scenario.Options.apply(&opts)

	s := sat.NewWithOptions(scenario.Vars, opts)
	loaded := true
	lits := make([]sat.Lit, 0, 8)
	for _, cl := range scenario.Clauses {
		lits = lits[:0]
		for _, n := range cl {
			lits = append(lits, sat.LitFromInt(n))
		}
		if !s.AddClause(lits...) {
			loaded = false
			break
		}
	}

	proof := &sat.ProofRecorder{}
	s.SetProof(proof)

	prober := sat.NewProber(s)

	passes := scenario.Passes
	if passes <= 0 {
		passes = 1
	}
	result := &Result{Passes: make([]PassResult, 0, passes)}
	ctx := context.Background()
	if loaded {
		for i := 0; i < passes; i++ {
			completed, err := prober.Run(ctx, true)
			if err != nil {
				return nil, fmt.Errorf("pass %d: %w", i+1, err)
			}
			result.Passes = append(result.Passes, PassResult{
				Completed: completed,
				StoppedAt: int(prober.StoppedAt()),
				Credit:    prober.Credit(),
			})
			if s.Inconsistent() {
				break
			}
		}
	}

	result.Consistent = loaded && !s.Inconsistent()
	result.Trail = make([]int, 0, len(s.TrailLits()))
	for _, l := range s.TrailLits() {
		result.Trail = append(result.Trail, l.Int())
	}
	result.Assigned = prober.Stats().Assigned
	result.Proof = proof.Lines()
	for _, pair := range prober.Equivalences() {
		result.Equivalences = append(result.Equivalences, [2]int{pair.A.Int(), pair.B.Int()})
	}
	return result, nil
}
