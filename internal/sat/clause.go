package sat

import "strings"

// Clause is a disjunction of three or more literals. Unit and binary
// clauses never reach the clause database: units go straight onto the
// trail and binary clauses live only in the watch lists, which carry
// the partner literal inline.
type Clause struct {
	lits []Lit
}

func newClause(lits []Lit) *Clause {
	return &Clause{lits: lits}
}

// Len returns the number of literals in c.
func (c *Clause) Len() int { return len(c.lits) }

// Lits returns the literals of c. The slice is the clause's own
// storage; callers must not modify it.
func (c *Clause) Lits() []Lit { return c.lits }

func (c *Clause) String() string {
	var sb strings.Builder
	for i, l := range c.lits {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(l.String())
	}
	return sb.String()
}

// footprint approximates the heap bytes held by the clause, used for
// the memory accounting behind the probing cache ceiling.
func (c *Clause) footprint() uint64 {
	return uint64(len(c.lits))*litBytes + clauseOverhead
}

const (
	litBytes       = 4
	clauseOverhead = 32
	watchBytes     = 16
)

// watch is a two-watched-literal entry for a long clause. blocker is a
// literal of the clause that was true when the watch was last touched;
// if it is still true the clause cannot propagate and the watch is left
// alone.
type watch struct {
	blocker Lit
	c       *Clause
}
