package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sondalab/sonda/internal/store"
)

func cnfPath(name string) string {
	return filepath.Join("..", "..", "testdata", "cnf", name)
}

func configPath(name string) string {
	return filepath.Join("..", "..", "testdata", "config", name)
}

// decodeResponse unmarshals a JSON CLI response and returns the data
// payload as a map when there is one.
func decodeResponse(t *testing.T, buf *bytes.Buffer) (CLIResponse, map[string]interface{}) {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return resp, data
}

func TestSolve_TextOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{cnfPath("simple.cnf")})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Instance:    simple.cnf")
	assert.Contains(t, output, "Size:        3 vars, 3 clauses")
	assert.Contains(t, output, "1 assigned in 1 pass(es), completed, credit 2")
	assert.Contains(t, output, "Result:      SAT")
}

func TestSolve_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{cnfPath("simple.cnf")})

	require.NoError(t, cmd.Execute())

	resp, data := decodeResponse(t, buf)
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, data)

	assert.Equal(t, "simple.cnf", data["instance"])
	assert.Len(t, data["fingerprint"], 64)
	assert.Equal(t, float64(3), data["vars"])
	assert.Equal(t, float64(3), data["clauses"])
	assert.Equal(t, "SAT", data["result"])
	assert.Equal(t, float64(1), data["decisions"])

	probing, ok := data["probing"].(map[string]interface{})
	require.True(t, ok, "expected probing summary in output")
	assert.Equal(t, float64(1), probing["passes"])
	assert.Equal(t, float64(1), probing["assigned"])
	assert.Equal(t, true, probing["completed"])
	assert.Equal(t, float64(2), probing["credit"])
}

func TestSolve_UnsatVerdictExitsZero(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{cnfPath("unsat.cnf")})

	// A verdict is a successful run, UNSAT included.
	err := cmd.Execute()
	require.NoError(t, err)

	_, data := decodeResponse(t, buf)
	assert.Equal(t, "UNSAT", data["result"])

	// Probing hit the contradiction, so the pass never ran to the end.
	probing, ok := data["probing"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, probing["completed"])
}

func TestSolve_RootContradiction(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{cnfPath("contradiction.cnf")})

	require.NoError(t, cmd.Execute())

	_, data := decodeResponse(t, buf)
	assert.Equal(t, "UNSAT", data["result"])
	assert.Equal(t, float64(0), data["decisions"])

	// Loading already failed, so probing is skipped entirely.
	_, hasProbing := data["probing"]
	assert.False(t, hasProbing)
}

func TestSolve_NoProbe(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--no-probe", cnfPath("simple.cnf")})

	require.NoError(t, cmd.Execute())

	_, data := decodeResponse(t, buf)
	assert.Equal(t, "SAT", data["result"])
	_, hasProbing := data["probing"]
	assert.False(t, hasProbing)
}

func TestSolve_WritesProof(t *testing.T) {
	proofPath := filepath.Join(t.TempDir(), "out.drat")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--proof", proofPath, cnfPath("simple.cnf")})

	require.NoError(t, cmd.Execute())

	// Probing derives the two units; search decisions are never proof
	// material.
	content, err := os.ReadFile(proofPath)
	require.NoError(t, err)
	assert.Equal(t, "-1 0\n3 0\n", string(content))
}

func TestSolve_RecordsRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, cnfPath("simple.cnf")})

	require.NoError(t, cmd.Execute())

	resp, data := decodeResponse(t, buf)
	require.NotEmpty(t, resp.RunID)
	assert.Equal(t, resp.RunID, data["run_id"])

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), -1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, resp.RunID, runs[0].ID)
	assert.Equal(t, "solve", runs[0].Command)
	assert.Equal(t, "SAT", runs[0].Result)
	assert.Equal(t, "simple.cnf", runs[0].Instance)
	assert.Equal(t, 1, runs[0].Assigned)
	assert.True(t, runs[0].Completed)
}

func TestSolve_MissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.cnf")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp, _ := decodeResponse(t, buf)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}

func TestSolve_BadConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", configPath("unknown_field.cue"), cnfPath("simple.cnf")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp, _ := decodeResponse(t, buf)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func TestSolve_WithConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", configPath("probing.cue"), cnfPath("simple.cnf")})

	require.NoError(t, cmd.Execute())

	_, data := decodeResponse(t, buf)
	assert.Equal(t, "SAT", data["result"])
}

func TestSolve_BudgetWrapHandsOffToSearch(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSolveCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--config", configPath("tiny_budget.cue"), cnfPath("free4.cnf")})

	require.NoError(t, cmd.Execute())

	_, data := decodeResponse(t, buf)
	assert.Equal(t, "SAT", data["result"])
	assert.Equal(t, float64(4), data["decisions"])

	// Two passes sweep the whole range under the tiny budget, then the
	// cursor wraps and the search takes over.
	probing, ok := data["probing"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), probing["passes"])
	assert.Equal(t, false, probing["completed"])
}
