package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/framecheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string
	Run   string
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded check runs",
		Long: `List check runs recorded with "framecheck check --db", newest first,
or show the stored reports of a single run.

Examples:
  framecheck history --db runs.db
  framecheck history --db runs.db --limit 5
  framecheck history --db runs.db --run <run-id>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to the run history database (required)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the reports of this run")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		_ = formatter.Error("E005", fmt.Sprintf("database not found: %s", opts.DB), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DB))
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Run != "" {
		return showRun(formatter, st, opts.Run, cmd)
	}

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "error"
		}
		fmt.Fprintf(w, "%4d  %s  %s  %s  %s\n", r.Seq, r.ID, shortHash(r.SpecHash), status, r.SpecDir)
	}
	return nil
}

func showRun(formatter *OutputFormatter, st *store.Store, id string, cmd *cobra.Command) error {
	run, err := st.LoadRun(cmd.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error("E005", fmt.Sprintf("run not found: %s", id), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
	}
	if err != nil {
		_ = formatter.Error("E001", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load run", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(run)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "spec %s %s\n", run.SpecDir, shortHash(run.SpecHash))
	if len(run.Selection) > 0 {
		fmt.Fprintf(w, "selection %v\n", run.Selection)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, run.Text())
	if run.Error != "" {
		fmt.Fprintf(w, "error: %s\n", run.Error)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
