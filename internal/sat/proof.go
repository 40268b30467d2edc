package sat

import "fmt"

// ProofLogger receives the redundant clauses derived by the kernel so
// that preprocessing can be validated externally. Implementations must
// tolerate duplicate additions; probing re-derives the same binary from
// both the cache fill and the assertion path.
//
// Attach a logger with Solver.SetProof after loading the input formula.
// Input clauses are not proof material, only derived ones are.
type ProofLogger interface {
	// AddUnit records l as a derived unit clause.
	AddUnit(l Lit)

	// AddBinary records the derived binary clause (a ∨ b).
	AddBinary(a, b Lit)

	// ExplainConflict is a hook invoked with the falsified clause when
	// a speculative probe runs into a conflict, before the failed
	// literal's negation is asserted. DRAT output does not need it; it
	// exists for checkers that want the intermediate step.
	ExplainConflict(lits []Lit)
}

// ProofRecorder is a ProofLogger that keeps derived clauses in memory
// as DIMACS-style lines. The harness snapshots it and tests assert on
// it.
type ProofRecorder struct {
	lines []string
}

func (r *ProofRecorder) AddUnit(l Lit) {
	r.lines = append(r.lines, fmt.Sprintf("%d 0", l.Int()))
}

func (r *ProofRecorder) AddBinary(a, b Lit) {
	r.lines = append(r.lines, fmt.Sprintf("%d %d 0", a.Int(), b.Int()))
}

func (r *ProofRecorder) ExplainConflict(lits []Lit) {}

// Lines returns the recorded clauses in derivation order.
func (r *ProofRecorder) Lines() []string {
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
