package store

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalLabel normalizes an instance label before it is stored or
// matched. NFC normalization keeps visually identical labels from
// splitting an instance's history when inputs come from different
// filesystems or editors.
func CanonicalLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
