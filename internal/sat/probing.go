package sat

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Prober is the failed-literal probing preprocessor. It speculatively
// assigns literals, propagates, and turns what both polarities agree
// on into permanent units. State carried between passes: the resume
// cursor, the budget credit and the assertion statistics. The
// implication cache and the implied-literal marks are scratch, dropped
// at every pass end.
type Prober struct {
	s    *Solver
	opts ProbingOptions

	big      *ImplicationGraph
	cache    implicationCache
	assigned litMarks
	toAssert []Lit
	equivs   []LitPair
	elim     Eliminator

	stoppedAt Var
	counter   int
	stats     ProbeStats
}

// NewProber creates a prober over s, configured from the solver's
// probing options.
func NewProber(s *Solver) *Prober {
	return &Prober{
		s:    s,
		opts: s.opts.Probing,
		big:  newImplicationGraph(s.rand),
	}
}

// SetOptions replaces the probing configuration. It takes effect at
// the next Run.
func (p *Prober) SetOptions(opts ProbingOptions) { p.opts = opts }

// SetEliminator installs the consumer for equivalence classes found
// while probing. Without one, collected classes are dropped at the
// pass boundary.
func (p *Prober) SetEliminator(e Eliminator) { p.elim = e }

// Implies reports whether the implication graph built at the last pass
// start proves the chain a → b.
func (p *Prober) Implies(a, b Lit) bool { return p.big.Connected(a, b) }

// Stats returns a snapshot of the probing counters.
func (p *Prober) Stats() ProbeStats { return p.stats }

// ResetStats zeroes the probing counters.
func (p *Prober) ResetStats() { p.stats = ProbeStats{} }

// Credit returns the unspent budget carried over from the last pass.
// An unforced Run with positive credit returns without probing.
func (p *Prober) Credit() int { return p.counter }

// StoppedAt returns the variable an interrupted pass stopped at; the
// next pass resumes there. After a completed pass it is 0.
func (p *Prober) StoppedAt() Var { return p.stoppedAt }

// Equivalences returns the equivalence candidates collected by the
// last pass.
func (p *Prober) Equivalences() []LitPair {
	out := make([]LitPair, len(p.equivs))
	copy(out, p.equivs)
	return out
}

// ReleaseScratch drops the probe-local scratch: the implied-literal
// marks, the assertion buffer and the implication cache. It runs at
// every pass end and is safe to call at any point between passes.
func (p *Prober) ReleaseScratch() {
	p.assigned.release()
	p.toAssert = nil
	p.cache.release()
}

// footprint is the memory figure compared against the cache ceiling:
// clause storage plus cache entries.
func (p *Prober) footprint() uint64 {
	return p.s.Footprint() + p.cache.footprint()
}

// proofPair justifies the permanent assertion of lit against probe
// literal l: both (l ∨ lit) and (¬l ∨ lit) are derivable and resolve
// to the unit lit.
func (p *Prober) proofPair(l, lit Lit) {
	if pr := p.s.proof; pr != nil {
		pr.AddBinary(l, lit)
		pr.AddBinary(l.Neg(), lit)
	}
}

// cacheImplied records the trail fragment the speculative probe of l
// produced after position from. Every fragment literal lit gives the
// derivable binary (¬l ∨ lit), which also goes to the proof so later
// cache hits stay checkable. Recording is skipped above the memory
// ceiling; an empty fragment is still recorded, a probe that implies
// nothing is worth remembering too.
func (p *Prober) cacheImplied(l Lit, from int) {
	if !p.opts.Cache {
		return
	}
	if p.footprint() > p.opts.CacheLimit {
		return
	}
	fragment := p.s.trail[from:]
	if pr := p.s.proof; pr != nil {
		for _, lit := range fragment {
			pr.AddBinary(l.Neg(), lit)
		}
	}
	p.cache.record(l, fragment)
}

// tryLiteral probes l inside a temporary scope and permanently asserts
// every implied literal that is already marked as implied by the
// opposite polarity. A conflict instead asserts ¬l permanently and
// returns false. With buildCache set, the propagated fragment is
// recorded in the cache; without it, a cache hit for l replaces the
// speculative probe entirely and costs nothing. Hit entries are
// re-evaluated against the current assignment: a literal settled since
// the fill is skipped, a contradicted one refutes the formula.
//
// Precondition: the propagation queue is settled and l is unassigned.
func (p *Prober) tryLiteral(l Lit, buildCache bool) bool {
	s := p.s
	var implied []Lit
	hit := false
	if !buildCache && p.opts.Cache {
		implied, hit = p.cache.lookup(l)
	}
	if hit {
		for _, lit := range implied {
			if !p.assigned.contains(lit) {
				continue
			}
			// The fill may predate assertions made later in the pass,
			// so lit is not necessarily free anymore.
			switch s.ValueLit(lit) {
			case True:
			case False:
				s.setConflictUnit(lit)
				return false
			default:
				p.proofPair(l, lit)
				s.enqueue(lit)
				p.stats.Assigned++
			}
		}
	} else {
		p.toAssert = p.toAssert[:0]
		sc := s.enterScope()
		defer sc.close()
		slog.Debug("probing literal", "lit", l)
		s.enqueue(l)
		p.counter--
		from := len(s.trail)
		if !s.Propagate() {
			slog.Debug("failed literal", "lit", l, "unit", l.Neg())
			s.explainConflict()
			sc.close()
			// the disproved probe becomes a permanent unit and counts
			// as pass yield, so the refund rule treats it as progress
			s.enqueue(l.Neg())
			p.stats.Assigned++
			s.Propagate()
			return false
		}
		for _, lit := range s.trail[from:] {
			if p.assigned.contains(lit) {
				p.toAssert = append(p.toAssert, lit)
			}
		}
		if buildCache {
			p.cacheImplied(l, from)
		}
		sc.close()
		for _, lit := range p.toAssert {
			p.proofPair(l, lit)
			s.enqueue(lit)
			p.stats.Assigned++
		}
	}
	s.Propagate()
	return !s.Inconsistent()
}

// processCore probes both polarities of v and sweeps the binary
// occurrences of its positive literal. The positive probe fills the
// implied-literal marks and the cache; the negative probe and the
// sweep assert whatever intersects them.
func (p *Prober) processCore(v Var) {
	s := p.s
	slog.Debug("probing variable", "var", v, "cost", -p.counter)
	p.counter--
	l := v.Pos()
	sc := s.enterScope()
	defer sc.close()
	s.enqueue(l)
	from := len(s.trail)
	if !s.Propagate() {
		slog.Debug("failed literal", "lit", l, "unit", l.Neg())
		s.explainConflict()
		sc.close()
		s.enqueue(l.Neg())
		p.stats.Assigned++
		s.Propagate()
		return
	}
	p.assigned.reset()
	for _, lit := range s.trail[from:] {
		p.assigned.insert(lit)
		if p.opts.Equivalences && p.Implies(lit, l) {
			// l → lit by propagation and lit → l in the binary graph:
			// an equivalence. Skip it when the binary (¬lit ∨ l) is
			// already present, then the pair carries no new
			// information.
			if !s.hasBinaryWatch(lit, l) || !s.hasBinaryWatch(l.Neg(), lit.Neg()) {
				p.equivs = append(p.equivs, LitPair{A: lit, B: l})
			}
		}
	}
	p.cacheImplied(l, from)
	sc.close()

	if !p.tryLiteral(l.Neg(), true) {
		return
	}

	if p.opts.Binary {
		// Binary occurrences of l: for each clause (l ∨ l2) the probe
		// of l2 can reuse the marks, since a conflict on l2 or a
		// literal implied by both l and l2 is already a consequence of
		// the clause. The list is scanned as a re-entrant container:
		// each probe moves long-clause watches and can settle later
		// entries, so the length is re-read, entries are addressed
		// through the solver and l2's value is re-checked every
		// iteration.
		idx := l.Neg().Index()
		for i := 0; i < len(s.wbin[idx]); i++ {
			l2 := s.wbin[idx][i]
			if l.Index() > l2.Index() {
				continue // the sweep from l2's variable covers this pair
			}
			if s.ValueLit(l2) != Unknown {
				continue
			}
			if !p.tryLiteral(l2, false) {
				return
			}
			if s.Inconsistent() {
				return
			}
		}
	}
}

// process wraps processCore with the refund rule: a probe that led to
// permanent assignments is treated as free.
func (p *Prober) process(v Var) {
	oldCounter := p.counter
	oldAssigned := p.stats.Assigned
	p.processCore(v)
	if p.stats.Assigned > oldAssigned {
		p.counter = oldCounter
	}
}

// Run executes one probing pass and reports whether it completed a
// full sweep over the variables. An unforced run is skipped while the
// credit from previous passes is positive. The pass stops early when
// the budget is exhausted or the solver becomes inconsistent; an
// interrupted pass resumes at the recorded variable next time.
//
// The pass ends by negating the spent budget into credit, doubling it
// when no literal was asserted, releasing the scratch memory and
// handing collected equivalences to the eliminator.
func (p *Prober) Run(ctx context.Context, force bool) (bool, error) {
	if !p.opts.Enabled {
		return true, nil
	}
	s := p.s
	s.Propagate()
	if s.Inconsistent() {
		return true, nil
	}
	if !force && p.counter > 0 {
		return true, nil
	}
	if p.opts.Cache && p.footprint() > p.opts.CacheLimit {
		p.cache.release()
	}

	prevProbing := s.probing
	s.probing = true
	defer func() { s.probing = prevProbing }()

	start := time.Now()
	startAssigned := p.stats.Assigned
	completed := true
	p.counter = 0
	p.equivs = p.equivs[:0]
	p.big.Init(s)
	limit := -p.opts.Limit
	num := s.NumVars()
	for i := 0; i < num; i++ {
		v := Var((int(p.stoppedAt) + i) % num)
		if p.counter < limit {
			p.stoppedAt = v
			completed = false
			break
		}
		if s.Inconsistent() {
			completed = false
			break
		}
		if s.Value(v) != Unknown || s.Eliminated(v) {
			if p.opts.Cache {
				// cache entries for v's literals are dead weight now
				p.cache.reset(v.Pos())
				p.cache.reset(v.Neg())
			}
			continue
		}
		if err := s.Checkpoint(ctx); err != nil {
			p.stoppedAt = v
			return false, err
		}
		p.process(v)
	}
	if completed {
		p.stoppedAt = 0
	}
	p.counter = -p.counter
	if p.stats.Assigned == startAssigned {
		// unproductive pass, penalize the next one
		p.counter *= 2
	}
	slog.Debug("probing pass done",
		"assigned", p.stats.Assigned-startAssigned,
		"equivs", len(p.equivs),
		"credit", p.counter,
		"stopped_at", p.stoppedAt,
		"completed", completed,
		"elapsed", time.Since(start))
	p.ReleaseScratch()

	if len(p.equivs) > 0 && p.elim != nil {
		part := NewPartition(2 * s.NumVars())
		for _, pair := range p.equivs {
			part.Union(pair.A.Index(), pair.B.Index())
			part.Union(pair.A.Neg().Index(), pair.B.Neg().Index())
		}
		if err := p.elim.Eliminate(part); err != nil {
			return completed, fmt.Errorf("eliminate equivalences: %w", err)
		}
	}
	return completed, nil
}
