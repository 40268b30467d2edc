package sat

// ProbingOptions control the failed-literal probing preprocessor.
type ProbingOptions struct {
	// Enabled turns probing on. When false, Prober.Run returns
	// immediately reporting a completed pass.
	Enabled bool

	// Limit is the per-pass cost budget. Each speculative probe costs
	// one tick; a pass stops once the spent cost exceeds the limit and
	// resumes at the same variable on the next call.
	Limit int

	// Cache enables the per-pass implication cache consulted by the
	// binary-occurrence sweep.
	Cache bool

	// CacheLimit is the memory ceiling in bytes for clause storage plus
	// cache entries. Above it the cache stops growing and is dropped
	// wholesale at the next pass boundary.
	CacheLimit uint64

	// Binary enables the sweep over binary occurrences of the probed
	// variable's positive literal.
	Binary bool

	// Equivalences enables recording of literal equivalences observed
	// during probing for the equivalence eliminator. Off by default;
	// the eliminator rewrites the clause database and callers must opt
	// in to that.
	Equivalences bool
}

// DefaultProbingOptions mirrors the solver's stock configuration.
func DefaultProbingOptions() ProbingOptions {
	return ProbingOptions{
		Enabled:    true,
		Limit:      5000000,
		Cache:      true,
		CacheLimit: 1 << 30,
		Binary:     true,
	}
}

// Options configure a Solver.
type Options struct {
	// Seed feeds the solver's random source, used for the randomized
	// DFS numbering of the binary implication graph.
	Seed int64

	Probing ProbingOptions
}

// DefaultOptions returns the stock solver configuration.
func DefaultOptions() Options {
	return Options{
		Seed:    0,
		Probing: DefaultProbingOptions(),
	}
}
