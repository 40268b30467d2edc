package harness

// PassResult snapshots one probing pass: whether it swept the whole
// variable range, where it stopped and the credit it left behind.
type PassResult struct {
	Completed bool `json:"completed"`
	StoppedAt int  `json:"stopped_at"`
	Credit    int  `json:"credit"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Consistent is false when the formula was refuted, either while
	// loading or by a probing pass.
	Consistent bool `json:"consistent"`

	// Passes holds one entry per executed probing pass.
	Passes []PassResult `json:"passes"`

	// Trail is the root trail after the final pass, in assertion
	// order.
	Trail []int `json:"trail"`

	// Assigned counts the literals probing asserted permanently.
	Assigned uint64 `json:"assigned"`

	// Proof is the derivation log in DIMACS notation.
	Proof []string `json:"proof"`

	// Equivalences lists the literal pairs collected by the final
	// pass.
	Equivalences [][2]int `json:"equivalences,omitempty"`
}
