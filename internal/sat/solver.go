package sat

import (
	"context"
	"math/rand"
	"slices"
)

// Solver holds the clause database and the assignment trail. All
// mutating operations must come from a single goroutine.
type Solver struct {
	opts Options
	rand *rand.Rand

	assigns    []LBool // indexed by Var
	eliminated []bool  // indexed by Var
	wbin       [][]Lit // indexed by Lit: partners forced true when the index literal becomes true
	watches    [][]watch
	clauses    []*Clause

	trail  []Lit
	qhead  int
	scopes []scopeFrame

	conflict     []Lit
	inconsistent bool

	probing      bool
	proof        ProofLogger
	checkpointFn func(context.Context) error

	numBin      int
	clauseBytes uint64
	stats       SolveStats
}

// scopeFrame records where a speculative scope or search decision
// started on the trail. decision and flipped are only used by Solve.
type scopeFrame struct {
	trailLim int
	decision Lit
	flipped  bool
}

// New creates a solver for vars variables with default options.
func New(vars int) *Solver {
	return NewWithOptions(vars, DefaultOptions())
}

// NewWithOptions creates a solver for vars variables.
func NewWithOptions(vars int, opts Options) *Solver {
	s := &Solver{
		opts: opts,
		rand: rand.New(rand.NewSource(opts.Seed)),
	}
	s.ensureVars(vars)
	return s
}

func (s *Solver) ensureVars(n int) {
	for len(s.assigns) < n {
		s.assigns = append(s.assigns, Unknown)
		s.eliminated = append(s.eliminated, false)
		s.wbin = append(s.wbin, nil, nil)
		s.watches = append(s.watches, nil, nil)
	}
}

// NumVars returns the number of variables.
func (s *Solver) NumVars() int { return len(s.assigns) }

// Options returns the solver configuration.
func (s *Solver) Options() Options { return s.opts }

// Value returns the current assignment of v.
func (s *Solver) Value(v Var) LBool { return s.assigns[v] }

// ValueLit returns the truth value of l under the current assignment.
func (s *Solver) ValueLit(l Lit) LBool {
	val := s.assigns[l.Var()]
	if l.Sign() {
		return -val
	}
	return val
}

// Inconsistent reports whether the solver is in a conflicting state.
// The flag is cleared when the enclosing scope is popped; at the root
// level it means the formula is unsatisfiable.
func (s *Solver) Inconsistent() bool { return s.inconsistent }

// TrailSize returns the number of literals on the assignment trail.
func (s *Solver) TrailSize() int { return len(s.trail) }

// TrailLits returns a copy of the assignment trail in assignment order.
func (s *Solver) TrailLits() []Lit {
	out := make([]Lit, len(s.trail))
	copy(out, s.trail)
	return out
}

// Eliminated reports whether v was removed by an elimination pass.
func (s *Solver) Eliminated(v Var) bool { return s.eliminated[v] }

// SetEliminated marks v as eliminated. Eliminated variables are skipped
// by probing and by the search heuristic.
func (s *Solver) SetEliminated(v Var, eliminated bool) { s.eliminated[v] = eliminated }

// Probing reports whether a probing pass is currently running.
func (s *Solver) Probing() bool { return s.probing }

// SetProof attaches a proof logger. Attach it after loading the input
// formula, otherwise input units are reported as derived ones.
func (s *Solver) SetProof(p ProofLogger) { s.proof = p }

// SetCheckpoint installs a hook consulted at the solver's cancellation
// points, between probes and before search decisions. The hook runs
// with the propagation queue settled, during probing additionally with
// no speculative scope open; returning a non-nil error aborts the
// surrounding operation.
func (s *Solver) SetCheckpoint(fn func(context.Context) error) { s.checkpointFn = fn }

// Checkpoint checks ctx and the installed hook, if any.
func (s *Solver) Checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.checkpointFn != nil {
		return s.checkpointFn(ctx)
	}
	return nil
}

// Footprint returns the approximate heap bytes held by the clause
// database and watch lists.
func (s *Solver) Footprint() uint64 { return s.clauseBytes }

// Stats returns a snapshot of the kernel counters.
func (s *Solver) Stats() SolveStats { return s.stats }

// AddClause adds a clause at the root level. Literals false at the
// root are stripped, tautologies and clauses already satisfied at the
// root are dropped. Unit clauses are assigned and propagated
// immediately. The return value reports whether the solver is still
// consistent.
func (s *Solver) AddClause(lits ...Lit) bool {
	if len(s.scopes) != 0 {
		panic("sat: AddClause outside the root level")
	}
	if s.inconsistent {
		return false
	}
	for _, l := range lits {
		s.ensureVars(int(l.Var()) + 1)
	}
	ls := make([]Lit, len(lits))
	copy(ls, lits)
	slices.Sort(ls)
	ls = slices.Compact(ls)
	for i := 0; i+1 < len(ls); i++ {
		if ls[i].Var() == ls[i+1].Var() {
			return true // tautology
		}
	}
	kept := ls[:0]
	for _, l := range ls {
		switch s.ValueLit(l) {
		case True:
			return true
		case False:
			// strip
		default:
			kept = append(kept, l)
		}
	}
	ls = kept
	switch len(ls) {
	case 0:
		s.conflict = s.conflict[:0]
		s.inconsistent = true
		return false
	case 1:
		s.enqueue(ls[0])
		return s.Propagate()
	case 2:
		s.attachBinary(ls[0], ls[1])
		return true
	default:
		c := newClause(ls)
		s.clauses = append(s.clauses, c)
		s.watchClause(c)
		s.clauseBytes += c.footprint() + 2*watchBytes
		return true
	}
}

// attachBinary registers the clause (a ∨ b) in both watch directions.
func (s *Solver) attachBinary(a, b Lit) {
	an, bn := a.Neg().Index(), b.Neg().Index()
	s.wbin[an] = append(s.wbin[an], b)
	s.wbin[bn] = append(s.wbin[bn], a)
	s.numBin++
	s.clauseBytes += 2 * watchBytes
}

func (s *Solver) watchClause(c *Clause) {
	i0, i1 := c.lits[0].Neg().Index(), c.lits[1].Neg().Index()
	s.watches[i0] = append(s.watches[i0], watch{blocker: c.lits[1], c: c})
	s.watches[i1] = append(s.watches[i1], watch{blocker: c.lits[0], c: c})
}

// hasBinaryWatch reports whether the binary clause (¬a ∨ b) exists,
// i.e. whether b is a registered binary partner of a.
func (s *Solver) hasBinaryWatch(a, b Lit) bool {
	for _, q := range s.wbin[a.Index()] {
		if q == b {
			return true
		}
	}
	return false
}

// Assign places l on the trail at the current level without
// propagating. At the root level the assignment is permanent and is
// reported to the proof logger as a unit.
func (s *Solver) Assign(l Lit) { s.enqueue(l) }

func (s *Solver) enqueue(l Lit) {
	v := l.Var()
	if s.assigns[v] != Unknown {
		panic("sat: enqueue on an assigned variable")
	}
	if l.Sign() {
		s.assigns[v] = False
	} else {
		s.assigns[v] = True
	}
	s.trail = append(s.trail, l)
	if s.proof != nil && len(s.scopes) == 0 {
		s.proof.AddUnit(l)
	}
}

// Propagate runs unit propagation until the queue is settled or a
// conflict is found. It returns false on conflict; the falsified
// clause is kept for explainConflict until the scope is popped.
func (s *Solver) Propagate() bool {
	if s.inconsistent {
		return false
	}
	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead]
		s.qhead++
		s.stats.Propagations++
		if !s.propagateLit(p) {
			s.qhead = len(s.trail)
			return false
		}
	}
	return true
}

// propagateLit processes the watch lists of a literal that just became
// true. Binary partners are forced directly; long clauses go through
// the usual two-watched-literal relocation.
func (s *Solver) propagateLit(p Lit) bool {
	for _, q := range s.wbin[p.Index()] {
		switch s.ValueLit(q) {
		case True:
		case False:
			s.setConflict(p.Neg(), q)
			return false
		default:
			s.enqueue(q)
		}
	}

	ws := s.watches[p.Index()]
	falseLit := p.Neg()
	i, j := 0, 0
	for i < len(ws) {
		w := ws[i]
		i++
		if s.ValueLit(w.blocker) == True {
			ws[j] = w
			j++
			continue
		}
		c := w.c
		if c.lits[0] == falseLit {
			c.lits[0], c.lits[1] = c.lits[1], c.lits[0]
		}
		first := c.lits[0]
		w = watch{blocker: first, c: c}
		if s.ValueLit(first) == True {
			ws[j] = w
			j++
			continue
		}
		relocated := false
		for k := 2; k < len(c.lits); k++ {
			if s.ValueLit(c.lits[k]) != False {
				c.lits[1], c.lits[k] = c.lits[k], c.lits[1]
				idx := c.lits[1].Neg().Index()
				s.watches[idx] = append(s.watches[idx], w)
				relocated = true
				break
			}
		}
		if relocated {
			continue
		}
		// unit or conflicting
		ws[j] = w
		j++
		if s.ValueLit(first) == False {
			n := copy(ws[j:], ws[i:])
			s.watches[p.Index()] = ws[:j+n]
			s.setConflictClause(c)
			return false
		}
		s.enqueue(first)
	}
	s.watches[p.Index()] = ws[:j]
	return true
}

func (s *Solver) setConflict(a, b Lit) {
	s.conflict = append(s.conflict[:0], a, b)
	s.inconsistent = true
	s.stats.Conflicts++
}

func (s *Solver) setConflictClause(c *Clause) {
	s.conflict = append(s.conflict[:0], c.lits...)
	s.inconsistent = true
	s.stats.Conflicts++
}

// setConflictUnit records the conflict of a derived unit l that is
// false under the current assignment.
func (s *Solver) setConflictUnit(l Lit) {
	s.conflict = append(s.conflict[:0], l)
	s.inconsistent = true
	s.stats.Conflicts++
}

// explainConflict hands the falsified clause to the proof logger.
func (s *Solver) explainConflict() {
	if s.proof != nil && len(s.conflict) > 0 {
		s.proof.ExplainConflict(s.conflict)
	}
}

func (s *Solver) push() {
	s.scopes = append(s.scopes, scopeFrame{trailLim: len(s.trail)})
}

func (s *Solver) pop() {
	n := len(s.scopes) - 1
	s.unwind(s.scopes[n].trailLim)
	s.scopes = s.scopes[:n]
}

// unwind removes trail entries from lim on and clears any pending
// conflict state.
func (s *Solver) unwind(lim int) {
	for i := len(s.trail) - 1; i >= lim; i-- {
		s.assigns[s.trail[i].Var()] = Unknown
	}
	s.trail = s.trail[:lim]
	if s.qhead > lim {
		s.qhead = lim
	}
	s.inconsistent = false
	s.conflict = s.conflict[:0]
}

// scopeGuard ties a speculative scope to a defer so the trail is
// restored on every exit path, panics included.
type scopeGuard struct {
	s    *Solver
	open bool
}

func (s *Solver) enterScope() *scopeGuard {
	s.push()
	return &scopeGuard{s: s, open: true}
}

// close pops the scope if it is still open. Calling it twice is a
// no-op, so it can both run eagerly before a permanent assignment and
// again from the deferred cleanup.
func (g *scopeGuard) close() {
	if g.open {
		g.open = false
		g.s.pop()
	}
}
