package drat

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sondalab/sonda/internal/sat"
)

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriter_EmitsAdditions(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.AddUnit(sat.LitFromInt(-3))
	w.AddBinary(sat.LitFromInt(1), sat.LitFromInt(-2))
	w.ExplainConflict([]sat.Lit{sat.LitFromInt(1)})
	require.NoError(t, w.Flush())
	assert.Equal(t, "-3 0\n1 -2 0\n", buf.String())
}

func TestWriter_StickyError(t *testing.T) {
	w := NewWriter(failWriter{})
	w.AddUnit(sat.LitFromInt(1))
	err := w.Flush()
	require.Error(t, err)

	w.AddUnit(sat.LitFromInt(2))
	assert.Equal(t, err, w.Flush())
}

func TestWriter_CapturesProbingRun(t *testing.T) {
	s := sat.New(3)
	require.True(t, s.AddClause(sat.LitFromInt(-1), sat.LitFromInt(2)))
	require.True(t, s.AddClause(sat.LitFromInt(-1), sat.LitFromInt(-2)))
	require.True(t, s.AddClause(sat.LitFromInt(1), sat.LitFromInt(3)))

	var buf bytes.Buffer
	w := NewWriter(&buf)
	s.SetProof(w)

	p := sat.NewProber(s)
	_, err := p.Run(context.Background(), true)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, "-1 0\n3 0\n", buf.String())
}
