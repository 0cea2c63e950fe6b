package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/framecheck/internal/compiler"
	"github.com/roach88/framecheck/internal/config"
	"github.com/roach88/framecheck/internal/loader"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Definitions int                        `json:"definitions"`
	Transitions int                        `json:"transitions"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
	Warnings    []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate specs without checking frame conditions",
		Long: `Validate a CUE-encoded spec without running the checker.

Loads and compiles the spec, then resolves every sig, field and
predicate reference. Warnings (unknown calls, a missing unchanged
helper, recursive predicates) are reported but do not fail validation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config (for the unchanged helper name)")

	return cmd
}

func runValidate(opts *ValidateOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := loader.LoadSpec(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)

	cfg := config.Default()
	if opts.Config != "" {
		if cfg, err = config.Load(opts.Config); err != nil {
			_ = formatter.Error(loader.ErrCodeInvalidConfig, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid config", err)
		}
	}

	result := ValidationResult{
		Definitions: len(loaded.Spec.Definitions),
		Transitions: len(loaded.Spec.Transitions),
	}
	for _, v := range compiler.ValidateSpec(loaded.Spec, cfg.UnchangedHelper) {
		if v.IsWarning() {
			result.Warnings = append(result.Warnings, v)
		} else {
			result.Errors = append(result.Errors, v)
		}
	}
	result.Valid = len(result.Errors) == 0

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else {
		outputValidationText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func outputValidationText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer
	if result.Valid {
		fmt.Fprintln(w, "✓ All specs valid")
		fmt.Fprintf(w, "  %d definition(s), %d transition(s)\n", result.Definitions, result.Transitions)
	} else {
		fmt.Fprintln(w, "✗ Validation failed")
		fmt.Fprintln(w)
		for _, e := range result.Errors {
			if e.Line > 0 {
				fmt.Fprintf(w, "line %d\n", e.Line)
			}
			fmt.Fprintf(w, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
		}
	}
	for _, e := range result.Warnings {
		fmt.Fprintf(w, "  warning %s: %s: %s\n", e.Code, e.Field, e.Message)
	}
}
