package frame

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/framecheck/internal/ir"
)

func TestCompareBranches(t *testing.T) {
	x := ir.V("x")
	f := Commitments{Changed: []ir.Expr{ir.Join(x, size)}}
	gh := Commitments{Changed: []ir.Expr{ir.Join(x, mode)}, Unchanged: []ir.Expr{ir.Join(x, entries)}}

	tests := []struct {
		name         string
		then, els    Commitments
		wantMismatch bool
	}{
		{"identical", f, f, false},
		{"reordered", Commitments{Changed: []ir.Expr{ir.Join(x, size), ir.Join(x, mode)}}, Commitments{Changed: []ir.Expr{ir.Join(x, mode), ir.Join(x, size)}}, false},
		{"changed in one arm unchanged in the other", f, Commitments{Unchanged: []ir.Expr{ir.Join(x, size)}}, false},
		{"then has extra", gh, f, true},
		{"else has extra", f, gh, true},
		{"else empty", f, Commitments{}, true},
		{"both empty", Commitments{}, Commitments{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mismatch, err := compareBranches(tt.then, tt.els)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMismatch, mismatch)
			if mismatch {
				assert.Equal(t, DiagBranchMismatch, d.Kind)
				assert.Equal(t, strs(tt.then.Changed), strs(d.Then.Changed))
				assert.Equal(t, strs(tt.els.Unchanged), strs(d.Else.Unchanged))
			}
		})
	}
}

func TestRenderDefinitionDiagnostics_GroupsByPredicate(t *testing.T) {
	mismatch := func(pred string) Diagnostic {
		return Diagnostic{
			Kind:      DiagBranchMismatch,
			Predicate: pred,
			Then:      &Commitments{Changed: []ir.Expr{ir.Join(ir.V("x"), size)}},
			Else:      &Commitments{},
		}
	}
	var b strings.Builder
	require.NoError(t, RenderDefinitionDiagnostics(&b, []Diagnostic{mismatch("a"), mismatch("a"), mismatch("b")}))

	out := b.String()
	assert.Equal(t, 1, strings.Count(out, "definition a:\n"))
	assert.Equal(t, 1, strings.Count(out, "definition b:\n"))
	assert.Equal(t, 3, strings.Count(out, "WARNING"))
}

func TestReport_JSON(t *testing.T) {
	r := &Report{
		Predicate:   "chmod",
		Status:      StatusWarnings,
		Commitments: &Commitments{Changed: []ir.Expr{ir.Join(ir.V("x"), mode)}},
		Diagnostics: []Diagnostic{{
			Kind:      DiagMissingField,
			Predicate: "chmod",
			Field:     "Inode.size",
			Tokens:    []string{"Inode"},
		}},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"predicate": "chmod",
		"status": "warnings",
		"commitments": {"changed": ["x.mode"], "unchanged": []},
		"diagnostics": [{"kind": "missing_field", "predicate": "chmod", "field": "Inode.size", "tokens": ["Inode"]}]
	}`, string(data))
}

func TestReport_SkippedText(t *testing.T) {
	assert.Equal(t, "Skipped Default\n", skippedReport("Default").Text())
}
