package sat

import "math/rand"

// ImplicationGraph answers reachability queries over the binary
// implication graph: one node per literal, an edge u → w for every
// binary clause (¬u ∨ w). Init numbers the nodes with DFS entry and
// exit intervals starting from randomized roots; Connected then
// under-approximates reachability by interval containment. A reachable
// node sitting on a non-tree path can be missed, but a positive answer
// is always a real implication chain.
type ImplicationGraph struct {
	left  []int
	right []int
	rng   *rand.Rand
}

func newImplicationGraph(rng *rand.Rand) *ImplicationGraph {
	return &ImplicationGraph{rng: rng}
}

// Init rebuilds the numbering from the solver's current binary watch
// lists. Queries against a numbering built before binaries changed are
// unsound, so probing rebuilds it at every pass start.
func (g *ImplicationGraph) Init(s *Solver) {
	n := 2 * s.NumVars()
	g.left = make([]int, n)
	g.right = make([]int, n)

	incoming := make([]bool, n)
	for u := 0; u < n; u++ {
		for _, w := range s.wbin[u] {
			incoming[w.Index()] = true
		}
	}
	roots := make([]Lit, 0, n)
	for u := 0; u < n; u++ {
		if !incoming[u] {
			roots = append(roots, Lit(u))
		}
	}
	g.rng.Shuffle(len(roots), func(i, j int) { roots[i], roots[j] = roots[j], roots[i] })

	counter := 1
	for _, root := range roots {
		counter = g.number(s, root, counter)
	}
	// nodes on cycles have no root above them
	for u := 0; u < n; u++ {
		counter = g.number(s, Lit(u), counter)
	}
}

type dfsFrame struct {
	lit  Lit
	next int
}

// number runs one iterative DFS from root, assigning entry numbers at
// discovery and exit numbers at completion. Already numbered nodes are
// skipped.
func (g *ImplicationGraph) number(s *Solver, root Lit, counter int) int {
	if g.left[root.Index()] != 0 {
		return counter
	}
	g.left[root.Index()] = counter
	counter++
	stack := []dfsFrame{{lit: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := s.wbin[top.lit.Index()]
		descended := false
		for top.next < len(children) {
			child := children[top.next]
			top.next++
			if g.left[child.Index()] == 0 {
				g.left[child.Index()] = counter
				counter++
				stack = append(stack, dfsFrame{lit: child})
				descended = true
				break
			}
		}
		if descended {
			continue
		}
		g.right[top.lit.Index()] = counter
		counter++
		stack = stack[:len(stack)-1]
	}
	return counter
}

// Connected reports whether the numbering proves an implication chain
// from a to b.
func (g *ImplicationGraph) Connected(a, b Lit) bool {
	ai, bi := a.Index(), b.Index()
	if ai >= len(g.left) || bi >= len(g.left) {
		return false
	}
	return g.left[ai] < g.left[bi] && g.right[bi] < g.right[ai]
}
