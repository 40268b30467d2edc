package sat

// SolveStats are the kernel's running counters.
type SolveStats struct {
	Decisions    uint64
	Propagations uint64
	Conflicts    uint64
}

// ProbeStats are the counters kept by the probing preprocessor.
type ProbeStats struct {
	// Assigned counts literals permanently asserted by probing.
	Assigned uint64
}
