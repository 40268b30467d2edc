// Package sat implements a small SAT kernel with a failed-literal
// probing preprocessor.
//
// The kernel keeps the usual solver state: an assignment trail with
// backtrackable scopes, two-watched-literal propagation for long clauses,
// and dedicated binary watch lists that carry the implied partner literal
// directly. Probing builds on top of that state without touching the
// clause database.
//
// # Probing
//
// Prober speculatively assigns each unassigned variable in both
// polarities inside a temporary scope and propagates. A conflict proves
// the negation as a permanent unit. Literals implied by both polarities
// are asserted permanently as well. The pass is budgeted: every
// speculative probe costs one tick, productive probes are refunded, and
// the leftover budget is carried between passes as credit so that
// unproductive probing throttles itself. An interrupted pass records the
// variable it stopped at and resumes there on the next call.
//
// # Implication Cache
//
// Literals implied by a probe are cached so that the binary-occurrence
// sweep can reuse them instead of re-propagating. Cache entries live for
// a single pass and are dropped wholesale when the memory ceiling is
// exceeded.
//
// # Proofs
//
// Every permanently asserted literal and every cached implication is
// reported to an attached ProofLogger as a unit or binary clause, so a
// DRAT checker can validate the preprocessing. Attach the logger after
// loading the input formula; input clauses are not part of a proof.
package sat
