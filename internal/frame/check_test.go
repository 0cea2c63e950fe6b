package frame

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framecheck/internal/config"
	"github.com/roach88/framecheck/internal/ir"
)

func newChecker(t *testing.T, spec *ir.Spec) *Checker {
	t.Helper()
	cfg := config.Default()
	cfg.Workers = 4
	c, err := New(spec, cfg)
	require.NoError(t, err)
	return c
}

// fsTransitions builds a spec with one definition predicate and a mix of
// complete, incomplete, conditional and skipped transitions.
func fsTransitions() *ir.Spec {
	x := ir.V("x")
	spec := fsSpec()
	spec.Definitions = []*ir.Predicate{
		pred("defs/unchanged", ir.Eq(ir.Prime(ir.V("r")), ir.V("r"))),
		pred("defs/keep_rest", ir.And(unchanged(entries), unchanged(openFile))),
		pred("defs/maybe_grow", ir.If(ir.V("c"), next(x, size, ir.C("1")), ir.C("none"))),
	}
	spec.Transitions = []*ir.Predicate{
		pred("ops/write", ir.And(
			frameAll(ir.Minus(inode, x), size, mode),
			unchanged(ir.Join(x, mode)),
			next(x, size, ir.V("n")),
			unchanged(entries),
			unchanged(openFile),
		)),
		pred("ops/chmod", next(x, mode, ir.V("m"))),
		pred("ops/truncate", ir.And(
			frameAll(ir.Minus(inode, x), size, mode),
			ir.If(ir.V("c"),
				next(x, size, ir.C("0")),
				ir.And(unchanged(ir.Join(x, size)), unchanged(ir.Join(x, mode))),
			),
			ir.CallOf("defs/keep_rest"),
		)),
		pred("ops/crash_recover", &ir.Choice{Alternatives: []ir.Expr{x}}),
	}
	return spec
}

func TestRun_Golden(t *testing.T) {
	c := newChecker(t, fsTransitions())
	res, err := c.Run(context.Background(), nil)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "fs_report", []byte(res.Text()))
}

func TestRun_Statuses(t *testing.T) {
	c := newChecker(t, fsTransitions())
	res, err := c.Run(context.Background(), nil)
	require.NoError(t, err)

	got := map[string]Status{}
	for _, r := range res.Reports {
		got[r.Predicate] = r.Status
	}
	assert.Equal(t, map[string]Status{
		"write":         StatusClean,
		"chmod":         StatusWarnings,
		"truncate":      StatusWarnings,
		"crash_recover": StatusSkipped,
	}, got)
	assert.True(t, res.HasDiagnostics())
	assert.Equal(t, []string{"keep_rest", "maybe_grow"}, c.Library().Names())
}

func TestRun_MissingFieldListsCoveredInstances(t *testing.T) {
	res, err := newChecker(t, fsTransitions()).Run(context.Background(), []string{"chmod"})
	require.NoError(t, err)
	require.Len(t, res.Reports, 1)

	byField := map[string]Diagnostic{}
	for _, d := range res.Reports[0].Diagnostics {
		if d.Kind == DiagMissingField {
			byField[d.Field] = d
		}
	}
	mode, ok := byField["Inode.mode"]
	require.True(t, ok)
	assert.Equal(t, []string{"Inode"}, mode.Tokens)
	assert.Equal(t, []string{"x"}, mode.Covered)

	size, ok := byField["Inode.size"]
	require.True(t, ok)
	assert.Empty(t, size.Covered)
}

func TestRun_EndToEnd(t *testing.T) {
	fx, fy := ir.F("this/a", "x"), ir.F("this/a", "y")
	spec := &ir.Spec{
		Sigs: []ir.Sig{{Name: "this/a", Fields: []ir.Field{
			{Sig: "this/a", Name: "x", Var: true},
			{Sig: "this/a", Name: "y", Var: true},
			{Sig: "this/a", Name: "z", Var: true},
		}}},
		Transitions: []*ir.Predicate{
			// x' = x + v and unchanged[a.y]
			pred("step", ir.And(
				ir.Eq(ir.Prime(fx), ir.Bin(ir.OpPlus, fx, ir.V("v"))),
				ir.CallOf("unchanged", ir.Join(ir.S("this/a"), fy)),
			)),
		},
	}
	res, err := newChecker(t, spec).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "step:\n\ta.z may require a frame condition for [a]\n", res.Text())
}

func TestRun_EveryFieldCompleteOrOneLine(t *testing.T) {
	spec := fsTransitions()
	res, err := newChecker(t, spec).Run(context.Background(), nil)
	require.NoError(t, err)

	checked := []string{"Dir.entries", "Inode.mode", "Inode.size"}
	for _, r := range res.Reports {
		if r.Status == StatusSkipped {
			continue
		}
		for _, id := range checked {
			lines := strings.Count(r.Text(), "\t"+id+" may require a frame condition for [")
			assert.LessOrEqual(t, lines, 1, "%s: %s", r.Predicate, id)
		}
		for _, d := range r.Diagnostics {
			if d.Kind == DiagMissingField {
				assert.NotEmpty(t, d.Tokens, "%s: %s", r.Predicate, d.Field)
				assert.NotEqual(t, "Volatile.children", d.Field)
			}
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	c := newChecker(t, fsTransitions())

	first, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	second, err := c.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Text(), second.Text())
}

func TestRun_DifferenceReopensKnownInstance(t *testing.T) {
	x := ir.V("x")
	spec := fsSpec()
	spec.Transitions = []*ir.Predicate{
		pred("shrink", ir.And(
			unchanged(ir.Join(x, size)),
			// size' = Inode.size - x.size
			ir.Eq(ir.Prime(size), ir.Minus(ir.Join(inode, size), ir.Join(x, size))),
			ir.Eq(ir.Minus(ir.Join(inode, ir.Prime(size)), ir.Join(x, size)), ir.C("none")),
			unchanged(mode), unchanged(entries), unchanged(openFile),
		)),
	}
	res, err := newChecker(t, spec).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "shrink:\n\tInode.size may require a frame condition for [x]\n", res.Text())
}

func TestRun_BranchMismatchOncePerConditional(t *testing.T) {
	x := ir.V("x")
	spec := fsSpec()
	spec.Transitions = []*ir.Predicate{
		pred("update", ir.And(
			ir.If(ir.V("c"),
				next(x, size, ir.C("0")),
				ir.And(next(x, mode, ir.C("0")), unchanged(ir.Join(x, entries))),
			),
			unchanged(size), unchanged(mode), unchanged(entries), unchanged(openFile),
		)),
	}
	res, err := newChecker(t, spec).Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Reports, 1)

	r := res.Reports[0]
	require.Len(t, r.Diagnostics, 1)
	d := r.Diagnostics[0]
	assert.Equal(t, DiagBranchMismatch, d.Kind)
	assert.Equal(t, "update", d.Predicate)
	assert.Equal(t, []string{"x.size"}, strs(d.Then.Changed))
	assert.Empty(t, d.Then.Unchanged)
	assert.Equal(t, []string{"x.mode"}, strs(d.Else.Changed))
	assert.Equal(t, []string{"x.entries"}, strs(d.Else.Unchanged))

	want := "update:\n" +
		"\tWARNING: if and else branches of an if-then-else statement may not match\n" +
		"\tChanges in if branch:\n" +
		"\t\tx.size\n" +
		"\tFrame conditions in if branch:\n" +
		"\tChanges in else branch:\n" +
		"\t\tx.mode\n" +
		"\tFrame conditions in else branch:\n" +
		"\t\tx.entries\n" +
		"\tNo frame condition issues detected\n"
	assert.Equal(t, want, r.Text())
}

func TestRun_DefinitionInlining(t *testing.T) {
	spec := fsSpec()
	spec.Definitions = []*ir.Predicate{
		pred("defs/keep_inodes", ir.And(frameAll(inode, size), frameAll(inode, mode))),
		// Sees keep_inodes because it is declared later.
		pred("defs/keep_all", ir.And(ir.CallOf("keep_inodes"), unchanged(entries), unchanged(openFile))),
	}
	spec.Transitions = []*ir.Predicate{
		pred("noop", ir.CallOf("defs/keep_all")),
	}
	res, err := newChecker(t, spec).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "noop:\n\tNo frame condition issues detected\n", res.Text())
}

func TestRun_SelectionAndSkipList(t *testing.T) {
	c := newChecker(t, fsTransitions())

	// The skipped body holds an unsupported expression; it must never be classified.
	res, err := c.Run(context.Background(), []string{"crash_recover", "ops/chmod", "missing"})
	require.NoError(t, err)
	require.Len(t, res.Reports, 2)
	assert.Equal(t, "chmod", res.Reports[0].Predicate)
	assert.Equal(t, "Skipped crash_recover\n", res.Reports[1].Text())
}

func TestRun_FatalErrorStopsAtFailingPredicate(t *testing.T) {
	x := ir.V("x")
	choice := &ir.Choice{Alternatives: []ir.Expr{x, ir.V("y")}, Pos: ir.Pos{Line: 7, Col: 3}}
	spec := fsSpec()
	spec.Transitions = []*ir.Predicate{
		pred("first", next(x, size, ir.C("0"))),
		pred("broken", ir.And(next(x, size, ir.C("0")), choice)),
		pred("last", next(x, mode, ir.C("0"))),
	}

	res, err := newChecker(t, spec).Run(context.Background(), nil)
	require.Error(t, err)

	var ce *CheckerError
	require.ErrorAs(t, err, &ce)
	assert.Same(t, choice, ce.Expr)
	assert.Equal(t, "broken", ce.Predicate)

	require.NotNil(t, res)
	require.Len(t, res.Reports, 1)
	assert.Equal(t, "first", res.Reports[0].Predicate)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newChecker(t, fsTransitions()).Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_LibraryErrorAborts(t *testing.T) {
	spec := fsSpec()
	spec.Definitions = []*ir.Predicate{
		pred("defs/bad", ir.Eq(ir.Prime(size), ir.Prime(mode))),
	}
	_, err := New(spec, config.Default())
	require.Error(t, err)

	var ce *CheckerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeBothPrimed, ce.Code)
	assert.Equal(t, "bad", ce.Predicate)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UnchangedHelper = ""
	_, err := New(fsSpec(), cfg)
	require.Error(t, err)
	assert.False(t, IsCheckerError(err))
}
