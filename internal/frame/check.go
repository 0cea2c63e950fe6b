package frame

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/framecheck/internal/config"
	"github.com/roach88/framecheck/internal/ir"
)

// Checker analyzes the transitions of one spec.
//
// Thread-safety model:
//   - New builds the library once; it is never mutated afterwards
//   - Check and Run are safe to call from any goroutine
//   - each transition gets its own classifier and coverage table
type Checker struct {
	spec   *ir.Spec
	cfg    config.Config
	lib    *Library
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New validates cfg and builds the definition library for spec.
func New(spec *ir.Spec, cfg config.Config, opts ...Option) (*Checker, error) {
	if spec == nil {
		return nil, fmt.Errorf("frame.New: spec is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("frame.New: %w", err)
	}
	c := &Checker{spec: spec, cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	lib, err := BuildLibrary(spec.Definitions, cfg.UnchangedHelper, c.logger)
	if err != nil {
		return nil, err
	}
	c.lib = lib
	c.logger.Debug("library built",
		"definitions", len(spec.Definitions),
		"entries", lib.Len(),
		"mismatches", len(lib.Diagnostics))
	return c, nil
}

// Library returns the definition library.
func (c *Checker) Library() *Library {
	return c.lib
}

// Check analyzes a single transition predicate. Skip-listed predicates
// yield a skipped report without analysis.
func (c *Checker) Check(p *ir.Predicate) (*Report, error) {
	name := p.Label()
	if pattern, ok := c.cfg.SkipMatch(name); ok {
		c.logger.Debug("transition skipped", "predicate", name, "pattern", pattern)
		return skippedReport(name), nil
	}

	cl := newClassifier(c.cfg.UnchangedHelper, c.lib, name)
	var out Commitments
	if p.Body != nil {
		if err := cl.classify(p.Body, &out); err != nil {
			return nil, withPredicate(err, name)
		}
	}

	cov := NewCoverage(c.spec, c.cfg)
	if err := resolve(cov, out); err != nil {
		return nil, withPredicate(err, name)
	}

	r := newReport(name, out, cl.mismatches, cov)
	c.logger.Debug("transition checked",
		"predicate", name,
		"changed", len(out.Changed),
		"unchanged", len(out.Unchanged),
		"diagnostics", len(r.Diagnostics))
	return r, nil
}

// Result is the outcome of a run.
type Result struct {
	// Definitions holds branch mismatches found in library definitions.
	Definitions []Diagnostic `json:"definitions,omitempty"`

	// Reports holds one report per processed transition, in declaration order.
	Reports []*Report `json:"reports"`
}

// Text returns the full text report.
func (r *Result) Text() string {
	var b strings.Builder
	_ = r.Render(&b)
	return b.String()
}

// Render writes the full text report.
func (r *Result) Render(w io.Writer) error {
	if err := RenderDefinitionDiagnostics(w, r.Definitions); err != nil {
		return err
	}
	for _, rep := range r.Reports {
		if err := rep.Render(w); err != nil {
			return err
		}
	}
	return nil
}

// HasDiagnostics reports whether any diagnostic fired.
func (r *Result) HasDiagnostics() bool {
	if len(r.Definitions) > 0 {
		return true
	}
	for _, rep := range r.Reports {
		if len(rep.Diagnostics) > 0 {
			return true
		}
	}
	return false
}

// Run checks the selected transitions, or all of them when selection is
// empty. Transitions are analyzed concurrently but reported in declaration
// order. On a structural error, Run returns the reports of the transitions
// declared before the failing one together with the error.
func (c *Checker) Run(ctx context.Context, selection []string) (*Result, error) {
	preds := c.selected(selection)

	reports := make([]*Report, len(preds))
	errs := make([]error, len(preds))

	var g errgroup.Group
	g.SetLimit(c.cfg.WorkerCount())
	for i, p := range preds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			reports[i], errs[i] = c.Check(p)
			return nil
		})
	}
	waitErr := g.Wait()

	res := &Result{Definitions: c.lib.Diagnostics, Reports: make([]*Report, 0, len(preds))}
	for i := range preds {
		if errs[i] != nil {
			return res, errs[i]
		}
		res.Reports = append(res.Reports, reports[i])
	}
	return res, waitErr
}

// selected filters transitions by unqualified name, keeping declaration
// order. Names in selection that match no transition are logged.
func (c *Checker) selected(selection []string) []*ir.Predicate {
	if len(selection) == 0 {
		return c.spec.Transitions
	}
	var out []*ir.Predicate
	seen := make(map[string]bool)
	for _, p := range c.spec.Transitions {
		if slices.ContainsFunc(selection, func(s string) bool { return ir.Unqualify(s) == p.Label() }) {
			out = append(out, p)
			seen[p.Label()] = true
		}
	}
	for _, name := range selection {
		if !seen[ir.Unqualify(name)] {
			c.logger.Warn("selected transition not found", "predicate", name)
		}
	}
	return out
}
