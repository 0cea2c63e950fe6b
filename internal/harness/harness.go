package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/framecheck/internal/compiler"
	"github.com/roach88/framecheck/internal/config"
	"github.com/roach88/framecheck/internal/frame"
	"github.com/roach88/framecheck/internal/ir"
	"github.com/roach88/framecheck/internal/loader"
	"github.com/roach88/framecheck/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Reports holds the reports produced before the run finished or stopped.
	Reports []*frame.Report `json:"reports"`

	// Definitions holds branch mismatches found in definitions.
	Definitions []frame.Diagnostic `json:"definitions,omitempty"`

	// RunErr is the structural error that stopped the run, if any.
	RunErr error `json:"-"`

	// RunID identifies the run in the scenario's store.
	RunID string `json:"run_id"`

	// Text is the rendered output: the report text followed by the
	// structural error, if any. Golden files capture this.
	Text string `json:"text"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Errors:  []string{},
		Reports: []*frame.Report{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// report returns the report for an unqualified transition name.
func (r *Result) report(predicate string) *frame.Report {
	for _, rep := range r.Reports {
		if rep.Predicate == predicate {
			return rep
		}
	}
	return nil
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory store for isolation. Execution:
//  1. Load and compile the spec directory
//  2. Load the config, if any, and validate the spec against it
//  3. Run the checker over the selected transitions
//  4. Record the run in the store
//  5. Evaluate assertions against the result and the stored run
//
// Errors that prevent the checker from running at all (missing files,
// invalid config, invalid spec) are returned. Structural checker errors
// are part of the result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	loaded, err := loader.LoadSpec(scenario.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec: %w", err)
	}
	spec := loaded.Spec

	cfg := config.Default()
	if scenario.Config != "" {
		if cfg, err = config.Load(scenario.Config); err != nil {
			return nil, err
		}
	}

	for _, v := range compiler.ValidateSpec(spec, cfg.UnchangedHelper) {
		if !v.IsWarning() {
			return nil, fmt.Errorf("invalid spec: %s", v.Error())
		}
	}

	st, err := store.Open(":memory:", store.WithIDGenerator(store.NewFixedGenerator("run-"+scenario.Name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	// Suppress checker logs in scenarios
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	res, runErr := check(ctx, spec, cfg, scenario.Select, logger)
	if runErr != nil && !frame.IsCheckerError(runErr) {
		return nil, runErr
	}

	runID, err := st.RecordRun(ctx, store.RunInput{
		SpecDir:   scenario.Spec,
		Selection: scenario.Select,
		Spec:      spec,
		Result:    res,
		Err:       runErr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	result := NewResult()
	result.Reports = append(result.Reports, res.Reports...)
	result.Definitions = res.Definitions
	result.RunErr = runErr
	result.RunID = runID
	result.Text = renderText(res, runErr)

	actx := &AssertionContext{Store: st, Ctx: ctx, RunID: runID}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// check builds a checker and runs it. A structural error found while
// building the definition library stops the run before any report.
func check(ctx context.Context, spec *ir.Spec, cfg config.Config, selection []string, logger *slog.Logger) (*frame.Result, error) {
	checker, err := frame.New(spec, cfg, frame.WithLogger(logger))
	if err != nil {
		return &frame.Result{}, err
	}
	return checker.Run(ctx, selection)
}

// renderText renders the report text. A structural error is appended
// without its source position, which depends on where the spec lives.
func renderText(res *frame.Result, runErr error) string {
	text := res.Text()
	var ce *frame.CheckerError
	if errors.As(runErr, &ce) {
		text += fmt.Sprintf("error [%s] in %s: %s\n", ce.Code, ce.Predicate, ce.Message)
	}
	return text
}
