package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sondalab/sonda/internal/dimacs"
	"github.com/sondalab/sonda/internal/drat"
	"github.com/sondalab/sonda/internal/sat"
	"github.com/sondalab/sonda/internal/store"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	Database string
	Config   string
	Proof    string
	Once     bool
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe <problem.cnf>",
		Short: "Run failed-literal probing without searching",
		Long: `Preprocess a DIMACS CNF problem by failed-literal probing.

Each pass speculatively assigns candidate literals, keeps whatever both
polarities agree on, and rolls everything else back. Passes are forced
until the whole variable range has been swept. --once stops after a
single pass even if the budget suspended it, which is what a resumable
run looks like between simplification rounds.

Example:
  sonda probe problem.cnf
  sonda probe --once --config probing.cue problem.cnf
  sonda probe --proof out.drat --db runs.db problem.cnf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history database")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to CUE options file")
	cmd.Flags().StringVar(&opts.Proof, "proof", "", "write derived clauses to a DRAT proof file")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "run a single pass even if the budget suspends it")

	return cmd
}

type passReport struct {
	Completed bool `json:"completed"`
	StoppedAt int  `json:"stopped_at"`
	Credit    int  `json:"credit"`
}

type probeReport struct {
	Instance     string       `json:"instance"`
	Fingerprint  string       `json:"fingerprint"`
	Vars         int          `json:"vars"`
	Clauses      int          `json:"clauses"`
	Result       string       `json:"result"` // REDUCED | INCONSISTENT
	Passes       []passReport `json:"passes"`
	Assigned     uint64       `json:"assigned"`
	Units        []int        `json:"units"`
	Equivalences int          `json:"equivalences"`
	DurationMS   int64        `json:"duration_ms"`
	RunID        string       `json:"run_id,omitempty"`
}

func (r *probeReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instance:    %s\n", r.Instance)
	fmt.Fprintf(&b, "Fingerprint: %s\n", shortFingerprint(r.Fingerprint))
	fmt.Fprintf(&b, "Size:        %d vars, %d clauses\n", r.Vars, r.Clauses)
	for i, pass := range r.Passes {
		if pass.Completed {
			fmt.Fprintf(&b, "Pass %d:      completed, credit %d\n", i+1, pass.Credit)
		} else {
			fmt.Fprintf(&b, "Pass %d:      suspended at variable %d, credit %d\n",
				i+1, pass.StoppedAt+1, pass.Credit)
		}
	}
	fmt.Fprintf(&b, "Assigned:    %d literal(s)", r.Assigned)
	if len(r.Units) > 0 {
		fmt.Fprintf(&b, ", trail:")
		for _, n := range r.Units {
			fmt.Fprintf(&b, " %d", n)
		}
	}
	fmt.Fprintf(&b, "\n")
	if r.Equivalences > 0 {
		fmt.Fprintf(&b, "Equivalent:  %d pair(s)\n", r.Equivalences)
	}
	fmt.Fprintf(&b, "Time:        %dms\n", r.DurationMS)
	fmt.Fprintf(&b, "Result:      %s", r.Result)
	if r.RunID != "" {
		fmt.Fprintf(&b, "\nRun:         %s", r.RunID)
	}
	return b.String()
}

func runProbe(opts *ProbeOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
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
	// Asking for the probe command implies probing, even when the config
	// file turned it off for solve runs.
	satOpts.Probing.Enabled = true

	problem, err := dimacs.ParseFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeParse, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to parse problem", err)
	}
	slog.Info("problem loaded", "path", path, "vars", problem.Vars, "clauses", len(problem.Clauses))

	report := &probeReport{
		Instance:    store.CanonicalLabel(filepath.Base(path)),
		Fingerprint: dimacs.Fingerprint(problem),
		Vars:        problem.Vars,
		Clauses:     len(problem.Clauses),
	}

	solver, consistent := buildSolver(problem, satOpts)

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
	prober := sat.NewProber(solver)

	if consistent {
		for {
			startVar := prober.StoppedAt()
			completed, err := prober.Run(ctx, true)
			if err != nil {
				_ = formatter.Error(ErrCodeAborted, err.Error(), nil)
				return WrapExitError(ExitFailure, "probing aborted", err)
			}
			report.Passes = append(report.Passes, passReport{
				Completed: completed,
				StoppedAt: int(prober.StoppedAt()),
				Credit:    prober.Credit(),
			})
			if completed || solver.Inconsistent() || opts.Once {
				break
			}
			// The cursor wrapped without completing: every variable has
			// been visited once this invocation, so stop instead of
			// cycling under a budget that can never cover a full pass.
			if prober.StoppedAt() <= startVar {
				break
			}
		}
	}

	report.Result = "REDUCED"
	if solver.Inconsistent() {
		report.Result = "INCONSISTENT"
	}
	report.Assigned = prober.Stats().Assigned
	report.Equivalences = len(prober.Equivalences())
	report.Units = make([]int, 0, len(solver.TrailLits()))
	for _, l := range solver.TrailLits() {
		report.Units = append(report.Units, l.Int())
	}
	report.DurationMS = time.Since(start).Milliseconds()

	if proof != nil {
		if err := proof.Flush(); err != nil {
			_ = formatter.Error(ErrCodeProof, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to write proof", err)
		}
		formatter.VerboseLog("Proof written to %s", opts.Proof)
	}

	if opts.Database != "" {
		completed := len(report.Passes) > 0 && report.Passes[len(report.Passes)-1].Completed
		runID, err := recordRun(ctx, opts.Database, store.Run{
			Instance:    report.Instance,
			Fingerprint: report.Fingerprint,
			Command:     "probe",
			Result:      report.Result,
			Vars:        report.Vars,
			Clauses:     report.Clauses,
			Assigned:    int(report.Assigned),
			Completed:   completed,
			Duration:    time.Since(start),
		})
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		report.RunID = runID
	}

	return outputReport(formatter, report, report.RunID)
}
