package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sondalab/sonda/internal/dimacs"
	"github.com/sondalab/sonda/internal/drat"
	"github.com/sondalab/sonda/internal/sat"
	"github.com/sondalab/sonda/internal/store"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	Database string
	Config   string
	Proof    string
	NoProbe  bool
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <problem.cnf>",
		Short: "Probe and solve a DIMACS CNF problem",
		Long: `Solve a DIMACS CNF problem.

The formula is preprocessed by failed-literal probing first: passes are
forced until the whole variable range has been swept, then the search
runs on the reduced formula.

Example:
  sonda solve problem.cnf
  sonda solve --proof out.drat --db runs.db problem.cnf --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history database")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to CUE options file")
	cmd.Flags().StringVar(&opts.Proof, "proof", "", "write derived clauses to a DRAT proof file")
	cmd.Flags().BoolVar(&opts.NoProbe, "no-probe", false, "skip failed-literal probing")

	return cmd
}

// probeSummary condenses a probing run for the solve report.
type probeSummary struct {
	Passes       int    `json:"passes"`
	Assigned     uint64 `json:"assigned"`
	Completed    bool   `json:"completed"`
	Credit       int    `json:"credit"`
	Equivalences int    `json:"equivalences"`
}

type solveReport struct {
	Instance     string        `json:"instance"`
	Fingerprint  string        `json:"fingerprint"`
	Vars         int           `json:"vars"`
	Clauses      int           `json:"clauses"`
	Result       string        `json:"result"`
	Probing      *probeSummary `json:"probing,omitempty"`
	Decisions    uint64        `json:"decisions"`
	Propagations uint64        `json:"propagations"`
	Conflicts    uint64        `json:"conflicts"`
	DurationMS   int64         `json:"duration_ms"`
	RunID        string        `json:"run_id,omitempty"`
}

func (r *solveReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instance:    %s\n", r.Instance)
	fmt.Fprintf(&b, "Fingerprint: %s\n", shortFingerprint(r.Fingerprint))
	fmt.Fprintf(&b, "Size:        %d vars, %d clauses\n", r.Vars, r.Clauses)
	if r.Probing != nil {
		state := "suspended"
		if r.Probing.Completed {
			state = "completed"
		}
		fmt.Fprintf(&b, "Probing:     %d assigned in %d pass(es), %s, credit %d\n",
			r.Probing.Assigned, r.Probing.Passes, state, r.Probing.Credit)
	}
	fmt.Fprintf(&b, "Search:      %d decisions, %d propagations, %d conflicts\n",
		r.Decisions, r.Propagations, r.Conflicts)
	fmt.Fprintf(&b, "Time:        %dms\n", r.DurationMS)
	fmt.Fprintf(&b, "Result:      %s", r.Result)
	if r.RunID != "" {
		fmt.Fprintf(&b, "\nRun:         %s", r.RunID)
	}
	return b.String()
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func runSolve(opts *SolveOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	satOpts := sat.DefaultOptions()
	if opts.Config != "" {
		var err error
		satOpts, err = LoadOptions(opts.Config)
		if err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}
	if opts.NoProbe {
		satOpts.Probing.Enabled = false
	}

	problem, err := dimacs.ParseFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeParse, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to parse problem", err)
	}
	slog.Info("problem loaded", "path", path, "vars", problem.Vars, "clauses", len(problem.Clauses))

	report := &solveReport{
		Instance:    store.CanonicalLabel(filepath.Base(path)),
		Fingerprint: dimacs.Fingerprint(problem),
		Vars:        problem.Vars,
		Clauses:     len(problem.Clauses),
	}

	solver, consistent := buildSolver(problem, satOpts)

	// The proof logger is attached after loading: input clauses are not
	// proof material, only derived ones are.
	var proof *drat.Writer
	if opts.Proof != "" {
		f, err := os.Create(opts.Proof)
		if err != nil {
			_ = formatter.Error(ErrCodeProof, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to create proof file", err)
		}
		defer f.Close()
		proof = drat.NewWriter(f)
		solver.SetProof(proof)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	start := time.Now()

	if consistent && satOpts.Probing.Enabled {
		prober := sat.NewProber(solver)
		summary := &probeSummary{}
		for {
			startVar := prober.StoppedAt()
			completed, err := prober.Run(ctx, true)
			if err != nil {
				_ = formatter.Error(ErrCodeAborted, err.Error(), nil)
				return WrapExitError(ExitFailure, "probing aborted", err)
			}
			summary.Passes++
			if completed || solver.Inconsistent() {
				summary.Completed = completed
				break
			}
			// A wrapped cursor means the whole range was visited once
			// even though no single pass fit the budget. Hand off to
			// the search rather than sweeping again.
			if prober.StoppedAt() <= startVar {
				break
			}
			slog.Debug("probing pass suspended", "pass", summary.Passes, "stopped_at", prober.StoppedAt())
		}
		summary.Assigned = prober.Stats().Assigned
		summary.Credit = prober.Credit()
		summary.Equivalences = len(prober.Equivalences())
		report.Probing = summary
		slog.Info("probing done",
			"passes", summary.Passes, "assigned", summary.Assigned, "trail", len(solver.TrailLits()))
	}

	var status sat.Status
	if solver.Inconsistent() {
		status = sat.StatusUnsat
	} else {
		status, err = solver.Solve(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeAborted, err.Error(), nil)
			return WrapExitError(ExitFailure, "search aborted", err)
		}
	}

	stats := solver.Stats()
	report.Result = status.String()
	report.Decisions = stats.Decisions
	report.Propagations = stats.Propagations
	report.Conflicts = stats.Conflicts
	report.DurationMS = time.Since(start).Milliseconds()

	if proof != nil {
		if err := proof.Flush(); err != nil {
			_ = formatter.Error(ErrCodeProof, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to write proof", err)
		}
		formatter.VerboseLog("Proof written to %s", opts.Proof)
	}

	if opts.Database != "" {
		run := store.Run{
			Instance:    report.Instance,
			Fingerprint: report.Fingerprint,
			Command:     "solve",
			Result:      report.Result,
			Vars:        report.Vars,
			Clauses:     report.Clauses,
			Completed:   report.Probing == nil || report.Probing.Completed,
			Duration:    time.Since(start),
		}
		if report.Probing != nil {
			run.Assigned = int(report.Probing.Assigned)
		}
		runID, err := recordRun(ctx, opts.Database, run)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		report.RunID = runID
	}

	return outputReport(formatter, report, report.RunID)
}

// buildSolver loads the problem clauses. A false return means the
// formula is already unsatisfiable at the root.
func buildSolver(problem *dimacs.Problem, opts sat.Options) (*sat.Solver, bool) {
	s := sat.NewWithOptions(problem.Vars, opts)
	lits := make([]sat.Lit, 0, 8)
	for _, cl := range problem.Clauses {
		lits = lits[:0]
		for _, n := range cl {
			lits = append(lits, sat.LitFromInt(n))
		}
		if !s.AddClause(lits...) {
			return s, false
		}
	}
	return s, true
}

// commandContext derives a cancellable context from the command that
// also stops on SIGINT/SIGTERM, so long runs shut down cleanly.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// recordRun opens the history database, stamps a fresh run ID, and
// inserts the record.
func recordRun(ctx context.Context, dbPath string, run store.Run) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	run.ID = store.NewRunID()
	if err := st.RecordRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

// outputReport emits the report in the configured format. The run ID
// rides on the response envelope in JSON mode.
func outputReport(formatter *OutputFormatter, report any, runID string) error {
	if formatter.Format == "json" {
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   report,
			RunID:  runID,
		})
	}
	fmt.Fprintln(formatter.Writer, report)
	return nil
}
