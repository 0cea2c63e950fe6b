package frame

import (
	"github.com/roach88/framecheck/internal/ir"
)

// classifier sorts the statements of one predicate body into commitments.
// It is used for a single predicate and then discarded.
type classifier struct {
	helper    string
	lib       *Library
	canon     *canonicalizer
	predicate string

	// mismatches collects branch diagnostics in encounter order.
	mismatches []Diagnostic
}

func newClassifier(helper string, lib *Library, predicate string) *classifier {
	return &classifier{
		helper:    helper,
		lib:       lib,
		canon:     newCanonicalizer(),
		predicate: predicate,
	}
}

// classify walks e and appends its commitments to out.
func (c *classifier) classify(e ir.Expr, out *Commitments) error {
	switch n := e.(type) {
	case *ir.Binary:
		return c.binary(n, out)

	case *ir.Call:
		return c.call(n, out)

	case *ir.ITE:
		return c.ite(n, out)

	case *ir.Quant:
		return c.quant(n, out)

	case *ir.List:
		for _, arg := range n.Args {
			if err := c.classify(arg, out); err != nil {
				return err
			}
		}
		return nil

	case *ir.Let:
		return c.classify(ir.Substitute(n.Body, n.Name, n.Bound), out)

	case *ir.Unary:
		if n.Op == ir.UnaryNo && containsPrime(n.Sub) {
			sub, err := c.canon.canon(n.Sub)
			if err != nil {
				return err
			}
			out.Changed = append(out.Changed, sub)
			return nil
		}
		return c.classify(n.Sub, out)

	case *ir.Const, *ir.Var, *ir.SigRef, *ir.FieldRef:
		return nil

	case *ir.Choice:
		return newError(ErrCodeUnsupportedExpr, n, "unimplemented expr type %s", n.Kind())

	default:
		return newError(ErrCodeUnsupportedExpr, e, "unrecognized expr type")
	}
}

// binary records a comparison with exactly one next-state side as a change.
func (c *classifier) binary(n *ir.Binary, out *Commitments) error {
	if !n.Op.IsComparison() {
		return nil
	}
	left, right := containsPrime(n.Left), containsPrime(n.Right)
	var changed ir.Expr
	switch {
	case left && right:
		return newError(ErrCodeBothPrimed, n, "both sides of the comparison refer to next-state values")
	case left:
		changed = n.Left
	case right:
		changed = n.Right
	default:
		return nil
	}
	ce, err := c.canon.canon(changed)
	if err != nil {
		return err
	}
	out.Changed = append(out.Changed, ce)
	return nil
}

// call handles the unchanged helper and inlines library predicates.
// Calls to anything else commit nothing.
func (c *classifier) call(n *ir.Call, out *Commitments) error {
	name := ir.Unqualify(n.Name)
	if name == c.helper {
		if len(n.Args) != 1 {
			return newError(ErrCodeHelperArity, n, "%s takes exactly one argument, got %d", c.helper, len(n.Args))
		}
		arg, err := c.canon.canon(n.Args[0])
		if err != nil {
			return err
		}
		out.Unchanged = append(out.Unchanged, arg)
		return nil
	}
	if entry, ok := c.lib.Lookup(name); ok {
		out.append(entry)
	}
	return nil
}

// quant records a universally quantified frame condition as unchanged.
func (c *classifier) quant(n *ir.Quant, out *Commitments) error {
	if n.Op != ir.QuantAll {
		return newError(ErrCodeUnsupportedQuant, n, "unsupported quantifier %q", n.Op)
	}
	found, err := c.containsHelperCall(n.Body)
	if err != nil || !found {
		return err
	}
	ce, err := c.canon.canon(n)
	if err != nil {
		return err
	}
	out.Unchanged = append(out.Unchanged, ce)
	return nil
}

// containsHelperCall looks for an unchanged call at statement level.
// Arguments of other calls and nested quantifiers are not searched.
func (c *classifier) containsHelperCall(e ir.Expr) (bool, error) {
	switch n := e.(type) {
	case *ir.Call:
		return ir.Unqualify(n.Name) == c.helper, nil
	case *ir.Binary:
		return c.anyHelperCall(n.Left, n.Right)
	case *ir.List:
		return c.anyHelperCall(n.Args...)
	case *ir.Unary:
		return c.containsHelperCall(n.Sub)
	case *ir.ITE:
		return c.anyHelperCall(n.Then, n.Else)
	case *ir.Let:
		return c.containsHelperCall(ir.Substitute(n.Body, n.Name, n.Bound))
	case *ir.Quant, *ir.Const, *ir.Var, *ir.SigRef, *ir.FieldRef:
		return false, nil
	case *ir.Choice:
		return false, newError(ErrCodeUnsupportedExpr, n, "unimplemented expr type %s", n.Kind())
	default:
		return false, newError(ErrCodeUnsupportedExpr, e, "unrecognized expr type")
	}
}

func (c *classifier) anyHelperCall(exprs ...ir.Expr) (bool, error) {
	for _, e := range exprs {
		found, err := c.containsHelperCall(e)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// ite classifies both arms, checks that they commit the same expressions
// and merges them into the parent result.
func (c *classifier) ite(n *ir.ITE, out *Commitments) error {
	var then, els Commitments
	if err := c.branch(n.Then, &then); err != nil {
		return err
	}
	if err := c.branch(n.Else, &els); err != nil {
		return err
	}

	d, mismatch, err := compareBranches(then, els)
	if err != nil {
		return err
	}
	if mismatch {
		d.Predicate = c.predicate
		c.mismatches = append(c.mismatches, d)
	}

	out.Changed = append(out.Changed, then.Changed...)
	out.Changed = append(out.Changed, els.Changed...)
	out.Unchanged = append(out.Unchanged, then.Unchanged...)
	out.Unchanged = append(out.Unchanged, els.Unchanged...)
	return nil
}

// branch is the restricted classifier used inside a conditional arm.
// Only comparisons, calls, quantifiers and lists contribute.
func (c *classifier) branch(e ir.Expr, out *Commitments) error {
	switch n := e.(type) {
	case *ir.Binary:
		return c.binary(n, out)
	case *ir.Call:
		return c.call(n, out)
	case *ir.Quant:
		return c.quant(n, out)
	case *ir.List:
		for _, arg := range n.Args {
			if err := c.branch(arg, out); err != nil {
				return err
			}
		}
	}
	return nil
}
