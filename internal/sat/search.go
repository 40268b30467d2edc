package sat

import (
	"context"
	"errors"
)

// Status is the solver verdict.
type Status byte

const (
	StatusUnknown Status = iota
	StatusSat
	StatusUnsat
)

func (st Status) String() string {
	switch st {
	case StatusSat:
		return "SAT"
	case StatusUnsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Solve runs a chronological backtracking search over the clause
// database. Preprocessing should run first; the search builds on
// whatever permanent assignments are already on the trail. On conflict
// the most recent unflipped decision is flipped in place; when none is
// left the formula is unsatisfiable. The checkpoint hook is consulted
// before every decision.
func (s *Solver) Solve(ctx context.Context) (Status, error) {
	if s.probing {
		return StatusUnknown, errors.New("sat: solve during a probing pass")
	}
	for {
		if !s.Propagate() {
			for len(s.scopes) > 0 && s.scopes[len(s.scopes)-1].flipped {
				s.pop()
			}
			if len(s.scopes) == 0 {
				return StatusUnsat, nil
			}
			top := &s.scopes[len(s.scopes)-1]
			d := top.decision
			s.unwind(top.trailLim)
			top.decision = d.Neg()
			top.flipped = true
			s.enqueue(d.Neg())
			continue
		}
		if err := s.Checkpoint(ctx); err != nil {
			return StatusUnknown, err
		}
		v, ok := s.nextDecision()
		if !ok {
			return StatusSat, nil
		}
		s.stats.Decisions++
		s.push()
		s.scopes[len(s.scopes)-1].decision = v.Pos()
		s.enqueue(v.Pos())
	}
}

// nextDecision picks the lowest-numbered unassigned variable that was
// not eliminated.
func (s *Solver) nextDecision() (Var, bool) {
	for v := range s.assigns {
		if s.assigns[v] == Unknown && !s.eliminated[v] {
			return Var(v), true
		}
	}
	return 0, false
}

// Model returns the assignment by variable. Meaningful after Solve
// returned StatusSat; eliminated variables stay unknown.
func (s *Solver) Model() []LBool {
	out := make([]LBool, len(s.assigns))
	copy(out, s.assigns)
	return out
}
