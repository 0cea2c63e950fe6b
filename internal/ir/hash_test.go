package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDeterminism(t *testing.T) {
	e := Eq(Prime(F("a", "x")), Bin(OpPlus, F("a", "x"), V("v")))

	k1, err := Key(e)
	require.NoError(t, err)
	k2, err := Key(e)
	require.NoError(t, err)

	assert.Equal(t, k1, k2, "Key must be deterministic")
	assert.Len(t, k1, 64, "SHA-256 hex is 64 characters")
}

func TestKeyIgnoresIdentityAndPosition(t *testing.T) {
	a := &Binary{Op: OpJoin, Left: &Var{Name: "i", Pos: Pos{Line: 3, Col: 1}}, Right: F("Inode", "size")}
	b := &Binary{Op: OpJoin, Left: &Var{Name: "i", Pos: Pos{Line: 9, Col: 7}}, Right: F("Inode", "size"), Pos: Pos{Line: 9}}

	assert.NotSame(t, a, b)
	assert.Equal(t, MustKey(a), MustKey(b))
}

func TestKeyIgnoresModulePrefixes(t *testing.T) {
	assert.Equal(t, MustKey(S("this/Inode")), MustKey(S("Inode")))
	assert.Equal(t, MustKey(F("defs/Inode", "size")), MustKey(F("Inode", "size")))
}

func TestKeyDistinguishesShape(t *testing.T) {
	tests := []struct {
		name string
		a, b Expr
	}{
		{"different field", Join(V("i"), F("Inode", "size")), Join(V("i"), F("Inode", "links"))},
		{"different op", Bin(OpIn, V("a"), V("b")), Bin(OpEquals, V("a"), V("b"))},
		{"operand order", Minus(S("A"), S("B")), Minus(S("B"), S("A"))},
		{"var vs sig", V("Inode"), S("Inode")},
		{"list op", And(V("a"), V("b")), Or(V("a"), V("b"))},
		{"call args", CallOf("unchanged", V("a")), CallOf("unchanged", V("b"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, MustKey(tt.a), MustKey(tt.b))
		})
	}
}

func TestKeyIgnoresCallTarget(t *testing.T) {
	target := &Predicate{Name: "defs/keep", Body: C("true")}
	withTarget := &Call{Name: "keep", Args: []Expr{V("x")}, Target: target}
	without := CallOf("keep", V("x"))

	assert.Equal(t, MustKey(withTarget), MustKey(without))
}

func TestSpecHashChangesWithContent(t *testing.T) {
	base := &Spec{
		Sigs: []Sig{{Name: "a", Fields: []Field{{Sig: "a", Name: "x", Var: true}}}},
		Transitions: []*Predicate{
			{Name: "step", Body: Eq(Prime(F("a", "x")), F("a", "x"))},
		},
	}
	changed := &Spec{
		Sigs: []Sig{{Name: "a", Fields: []Field{{Sig: "a", Name: "x", Var: false}}}},
		Transitions: []*Predicate{
			{Name: "step", Body: Eq(Prime(F("a", "x")), F("a", "x"))},
		},
	}

	h1, err := SpecHash(base)
	require.NoError(t, err)
	h2, err := SpecHash(base)
	require.NoError(t, err)
	h3, err := SpecHash(changed)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestReportHashDomainSeparated(t *testing.T) {
	text := "step:\n\tNo frame condition issues detected\n"
	assert.Equal(t, ReportHash(text), ReportHash(text))
	assert.NotEqual(t, ReportHash(text), hashWithDomain(DomainSpec, []byte(text)))
}
