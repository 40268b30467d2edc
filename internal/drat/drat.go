// Package drat streams derived clauses as DRAT proof additions.
package drat

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sondalab/sonda/internal/sat"
)

// Writer emits one DRAT addition line per derived clause. Errors are
// sticky: the first failure is kept, later additions are dropped, and
// Flush reports it.
type Writer struct {
	bw  *bufio.Writer
	err error
}

var _ sat.ProofLogger = (*Writer)(nil)

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

func (w *Writer) AddUnit(l sat.Lit) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.bw, "%d 0\n", l.Int())
}

func (w *Writer) AddBinary(a, b sat.Lit) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.bw, "%d %d 0\n", a.Int(), b.Int())
}

// ExplainConflict is a no-op; DRAT proofs carry additions only.
func (w *Writer) ExplainConflict([]sat.Lit) {}

// Flush drains buffered output and reports the first error seen.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.bw.Flush(); err != nil {
		w.err = fmt.Errorf("flush proof: %w", err)
		return w.err
	}
	return nil
}
