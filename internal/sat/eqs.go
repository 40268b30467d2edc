package sat

// LitPair is an equivalence candidate observed during probing: each
// literal implies the other, so they can be merged into one class.
type LitPair struct {
	A, B Lit
}

// Partition is a union-find over literal indices. Probing merges
// equivalent literals and their complements, so classes always come in
// complementary pairs.
type Partition struct {
	parent []int32
	rank   []int8
}

// NewPartition creates n singleton classes.
func NewPartition(n int) *Partition {
	p := &Partition{
		parent: make([]int32, n),
		rank:   make([]int8, n),
	}
	for i := range p.parent {
		p.parent[i] = int32(i)
	}
	return p
}

// Size returns the number of elements.
func (p *Partition) Size() int { return len(p.parent) }

// Find returns the class representative of i, with path halving.
func (p *Partition) Find(i int) int {
	x := int32(i)
	for p.parent[x] != x {
		p.parent[x] = p.parent[p.parent[x]]
		x = p.parent[x]
	}
	return int(x)
}

// Union merges the classes of i and j.
func (p *Partition) Union(i, j int) {
	ri, rj := int32(p.Find(i)), int32(p.Find(j))
	if ri == rj {
		return
	}
	if p.rank[ri] < p.rank[rj] {
		ri, rj = rj, ri
	}
	p.parent[rj] = ri
	if p.rank[ri] == p.rank[rj] {
		p.rank[ri]++
	}
}

// Rep returns the representative literal of l's class.
func (p *Partition) Rep(l Lit) Lit { return Lit(p.Find(l.Index())) }

// Eliminator consumes the equivalence classes collected by a probing
// pass. The kernel does not rewrite the clause database itself; an
// implementation may substitute representatives, mark variables
// eliminated, or just record the classes.
type Eliminator interface {
	Eliminate(p *Partition) error
}
