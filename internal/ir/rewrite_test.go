package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteReplacesFreeVars(t *testing.T) {
	body := Eq(Prime(Join(V("n"), F("Inode", "size"))), V("n"))
	got := Substitute(body, "n", Join(V("d"), F("Dir", "inode")))

	assert.Equal(t, "(d.inode.size)' = d.inode", got.String())
	// Original is untouched.
	assert.Equal(t, "(n.size)' = n", body.String())
}

func TestSubstituteRespectsQuantShadowing(t *testing.T) {
	q := All("n", S("Inode"), CallOf("unchanged", Join(V("n"), F("Inode", "size"))))
	got := Substitute(q, "n", V("x"))
	assert.Equal(t, MustKey(q), MustKey(got), "bound name must shadow the substitution")
}

func TestSubstituteQuantDomainSeesOuterBinding(t *testing.T) {
	q := All("i", Minus(S("Inode"), V("n")), CallOf("unchanged", Join(V("i"), F("Inode", "size"))))
	got := Substitute(q, "n", V("x"))
	assert.Equal(t, "(all i: Inode - x | unchanged[i.size])", got.String())
}

func TestSubstituteRespectsLetShadowing(t *testing.T) {
	l := LetIn("n", V("n"), V("n"))
	got := Substitute(l, "n", V("x"))
	assert.Equal(t, "(let n = x | n)", got.String())
}

func TestAny(t *testing.T) {
	e := And(Eq(V("a"), V("b")), CallOf("f", Prime(V("c"))))
	isPrime := func(e Expr) bool {
		u, ok := e.(*Unary)
		return ok && u.Op == UnaryPrime
	}
	assert.True(t, Any(e, isPrime))
	assert.False(t, Any(Eq(V("a"), V("b")), isPrime))
	assert.False(t, Any(nil, isPrime))
}

func TestChildren(t *testing.T) {
	q := &Quant{Op: QuantAll, Decls: []Decl{{Names: []string{"i"}, Domain: S("A")}, {Names: []string{"j"}, Domain: S("B")}}, Body: V("p")}
	children := Children(q)
	assert.Len(t, children, 3)
	assert.Equal(t, "p", children[2].String())
	assert.Nil(t, Children(V("x")))
}
