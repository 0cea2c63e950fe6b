package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/framecheck/internal/compiler"
	"github.com/roach88/framecheck/internal/config"
	"github.com/roach88/framecheck/internal/frame"
	"github.com/roach88/framecheck/internal/ir"
	"github.com/roach88/framecheck/internal/loader"
	"github.com/roach88/framecheck/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Select []string // transitions to check; empty means all
	Config string   // YAML config path
	DB     string   // run history database; empty disables recording
	Strict bool     // exit 1 when any diagnostic fires
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	SpecHash    string             `json:"spec_hash"`
	Definitions []frame.Diagnostic `json:"definitions,omitempty"`
	Reports     []*frame.Report    `json:"reports"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <specs-dir>",
		Short: "Check transitions for missing frame conditions",
		Long: `Check every transition in a spec for mutable fields and sets it neither
changes nor declares unchanged.

Reports are printed in declaration order. A structural error stops the
run: the reports of the transitions before it are printed, then the error.

Exit codes:
  0 - Check completed (diagnostics are warnings)
  1 - Diagnostics reported and --strict set
  2 - Command error (load failure, invalid config, structural error)

Examples:
  framecheck check ./specs
  framecheck check ./specs --select write,chmod
  framecheck check ./specs --config framecheck.yaml --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "transitions to check (comma-separated, default all)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when any diagnostic is reported")

	return cmd
}

func runCheck(opts *CheckOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := cmd.Context()

	loaded, err := loader.LoadSpec(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	spec := loaded.Spec
	formatter.VerboseLog("Loaded %d CUE file(s) from %s", loaded.FileCount, specsDir)

	cfg := config.Default()
	if opts.Config != "" {
		if cfg, err = config.Load(opts.Config); err != nil {
			_ = formatter.Error(loader.ErrCodeInvalidConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid config", err)
		}
	}

	warnings, err := validateForCheck(formatter, spec, cfg, logger)
	if err != nil {
		return err
	}

	checker, runErr := frame.New(spec, cfg, frame.WithLogger(logger))
	res := &frame.Result{}
	if runErr == nil {
		res, runErr = checker.Run(ctx, opts.Select)
	}
	if runErr != nil && !frame.IsCheckerError(runErr) {
		_ = formatter.Error(loader.ErrCodeGeneric, runErr.Error(), nil)
		return WrapExitError(ExitCommandError, "check failed", runErr)
	}

	runID := ""
	if opts.DB != "" {
		if runID, err = recordRun(cmd, opts, specsDir, spec, res, runErr); err != nil {
			_ = formatter.Error(loader.ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		formatter.VerboseLog("Recorded run %s", runID)
	}

	if err := outputCheck(formatter, spec, res, runErr, warnings, runID); err != nil {
		return err
	}

	if runErr != nil {
		return WrapExitError(ExitCommandError, "structural error", runErr)
	}
	if opts.Strict && res.HasDiagnostics() {
		return NewExitError(ExitFailure, "diagnostics reported")
	}
	return nil
}

// validateForCheck logs validation warnings and refuses to check a spec
// with validation errors.
func validateForCheck(formatter *OutputFormatter, spec *ir.Spec, cfg config.Config, logger *slog.Logger) ([]string, error) {
	var warnings []string
	var errs []compiler.ValidationError
	for _, v := range compiler.ValidateSpec(spec, cfg.UnchangedHelper) {
		if v.IsWarning() {
			logger.Warn("spec validation", "code", v.Code, "field", v.Field, "message", v.Message)
			warnings = append(warnings, v.Error())
			continue
		}
		errs = append(errs, v)
	}
	if len(errs) == 0 {
		return warnings, nil
	}
	_ = formatter.Error(errs[0].Code, errs[0].Message, errs)
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("spec has %d validation error(s)", len(errs)))
}

func recordRun(cmd *cobra.Command, opts *CheckOptions, specsDir string, spec *ir.Spec, res *frame.Result, runErr error) (string, error) {
	st, err := store.Open(opts.DB)
	if err != nil {
		return "", err
	}
	defer st.Close()

	return st.RecordRun(cmd.Context(), store.RunInput{
		SpecDir:   specsDir,
		Selection: opts.Select,
		Spec:      spec,
		Result:    res,
		Err:       runErr,
	})
}

func outputCheck(formatter *OutputFormatter, spec *ir.Spec, res *frame.Result, runErr error, warnings []string, runID string) error {
	if formatter.Format == "json" {
		hash, err := ir.SpecHash(spec)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to hash spec", err)
		}
		resp := CLIResponse{
			Status: "ok",
			RunID:  runID,
			Data: CheckResult{
				SpecHash:    hash,
				Definitions: res.Definitions,
				Reports:     res.Reports,
				Warnings:    warnings,
			},
		}
		var ce *frame.CheckerError
		if errors.As(runErr, &ce) {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    string(ce.Code),
				Message: ce.Error(),
				Details: map[string]string{"predicate": ce.Predicate},
			}
		}
		return formatter.Encode(resp)
	}

	if err := res.Render(formatter.Writer); err != nil {
		return err
	}
	if runErr != nil {
		fmt.Fprintln(formatter.GetErrWriter(), runErr.Error())
	}
	return nil
}

// outputLoadError reports a spec load failure. Load failures are
// command errors.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *loader.LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load specs", err)
	}
	_ = formatter.Error(loader.ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load specs", err)
}
