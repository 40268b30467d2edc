package store

import "github.com/google/uuid"

// NewRunID generates a time-sortable UUIDv7 run identifier.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ordering
// run IDs lexically matches creation order. ListRuns relies on this for
// its tiebreak.
//
// Panics if UUID generation fails (should never happen in practice).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}
