package frame

import (
	"github.com/roach88/framecheck/internal/ir"
)

// resolve folds a predicate's commitments into cov. Unchanged commitments
// are applied first so that a later change can carve an instance out of a
// quantified frame condition and then account for it.
func resolve(cov *Coverage, c Commitments) error {
	for _, e := range c.Unchanged {
		if err := resolveUnchanged(cov, e); err != nil {
			return err
		}
	}
	for _, e := range c.Changed {
		if err := resolveChanged(cov, e); err != nil {
			return err
		}
	}
	return nil
}

func resolveUnchanged(cov *Coverage, e ir.Expr) error {
	switch n := unwrapNoop(e).(type) {
	case *ir.Quant:
		return resolveQuantified(cov, n)
	case *ir.SigRef:
		cov.coverSet(n.Name)
		return nil
	case *ir.FieldRef:
		return resolveWhole(cov, n, e)
	case *ir.Binary:
		if n.Op != ir.OpJoin {
			return newError(ErrCodeUnresolvable, e, "unchanged argument is not a field access")
		}
		return resolveJoin(cov, n, e)
	default:
		return newError(ErrCodeUnresolvable, e, "unrecognized unchanged argument")
	}
}

func resolveChanged(cov *Coverage, e ir.Expr) error {
	switch n := unwrapNoop(e).(type) {
	case *ir.Binary:
		switch n.Op {
		case ir.OpJoin:
			return resolveJoin(cov, n, e)
		case ir.OpMinus:
			return resolveDifference(cov, n, e)
		default:
			return newError(ErrCodeUnresolvable, e, "unrecognized binary op %q in changed expression", n.Op)
		}
	case *ir.SigRef:
		cov.coverSet(n.Name)
		return nil
	case *ir.FieldRef:
		return resolveWhole(cov, n, e)
	default:
		return newError(ErrCodeUnresolvable, e, "unrecognized changed expression")
	}
}

// resolveWhole covers a relation for every instance of its owner.
func resolveWhole(cov *Coverage, ref *ir.FieldRef, at ir.Expr) error {
	fc, ok, err := cov.lookup(ref, at)
	if err != nil || !ok {
		return err
	}
	return fc.narrow(&ir.SigRef{Name: ref.Sig, Pos: ref.Pos}, at)
}

// resolveJoin covers "X . field" for the instances denoted by X.
func resolveJoin(cov *Coverage, n *ir.Binary, at ir.Expr) error {
	ref, ok := unwrapNoop(n.Right).(*ir.FieldRef)
	if !ok {
		return newError(ErrCodeUnresolvable, at, "right side of join is not a field")
	}
	fc, ok, err := cov.lookup(ref, at)
	if err != nil || !ok {
		return err
	}
	return fc.narrow(n.Left, at)
}

// resolveDifference handles a changed "A - B1 - ... - Bn". The base's
// relation is covered and every subtracted term is reopened.
func resolveDifference(cov *Coverage, n *ir.Binary, at ir.Expr) error {
	base, removed := flattenDifference(n)

	var fc *FieldCoverage
	switch b := base.(type) {
	case *ir.SigRef:
		cov.coverSet(b.Name)
		return nil

	case *ir.FieldRef:
		f, ok, err := cov.lookup(b, at)
		if err != nil || !ok {
			return err
		}
		f.cover(ir.Unqualify(b.Sig))
		fc = f

	case *ir.Binary:
		if b.Op != ir.OpJoin {
			return newError(ErrCodeUnresolvable, at, "unrecognized set difference operand")
		}
		ref, ok := unwrapNoop(b.Right).(*ir.FieldRef)
		if !ok {
			return newError(ErrCodeUnresolvable, at, "right side of join is not a field")
		}
		f, ok, err := cov.lookup(ref, at)
		if err != nil || !ok {
			return err
		}
		if err := f.narrow(b.Left, at); err != nil {
			return err
		}
		fc = f

	default:
		return newError(ErrCodeUnresolvable, at, "unrecognized set difference operand")
	}

	for _, r := range removed {
		for _, t := range removedTokens(r) {
			fc.reopen(t)
		}
	}
	return nil
}

// resolveQuantified handles "all v: D | unchanged[v.f] and ...": every
// field named in the body is covered for the instances of D.
func resolveQuantified(cov *Coverage, q *ir.Quant) error {
	if q.Op != ir.QuantAll {
		return newError(ErrCodeUnsupportedQuant, q, "unsupported quantifier %q", q.Op)
	}
	if len(q.Decls) != 1 {
		return newError(ErrCodeQuantShape, q, "too many decls")
	}
	if len(q.Decls[0].Names) != 1 {
		return newError(ErrCodeQuantShape, q, "too many names")
	}

	domain := unwrapNoop(q.Decls[0].Domain)
	if u, ok := domain.(*ir.Unary); ok && u.Op.IsMultiplicity() {
		domain = u.Sub
	}

	args, err := quantifiedArgs(q.Body, q)
	if err != nil {
		return err
	}
	for _, arg := range args {
		join, ok := unwrapNoop(arg).(*ir.Binary)
		if !ok || join.Op != ir.OpJoin {
			return newError(ErrCodeUnresolvable, q, "non-join argument %q in quantified frame condition", arg)
		}
		ref, ok := unwrapNoop(join.Right).(*ir.FieldRef)
		if !ok {
			return newError(ErrCodeUnresolvable, q, "right side of join is not a field")
		}
		fc, ok, err := cov.lookup(ref, q)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := fc.narrow(domain, q); err != nil {
			return err
		}
	}
	return nil
}

// quantifiedArgs reduces a quantifier body to the arguments of its calls.
func quantifiedArgs(body ir.Expr, at ir.Expr) ([]ir.Expr, error) {
	switch n := body.(type) {
	case *ir.Call:
		return n.Args, nil
	case *ir.Unary:
		if n.Op != ir.UnaryNoop {
			return nil, newError(ErrCodeUnresolvable, at, "unrecognized unary op %q in quantified frame condition", n.Op)
		}
		return quantifiedArgs(n.Sub, at)
	case *ir.List:
		if n.Op != ir.ListAnd {
			return nil, newError(ErrCodeUnresolvable, at, "unhandled %q list in quantified frame condition", n.Op)
		}
		var args []ir.Expr
		for _, e := range n.Args {
			call, ok := unwrapNoop(e).(*ir.Call)
			if !ok {
				return nil, newError(ErrCodeUnresolvable, at, "non-call expression %q in quantified frame condition", e)
			}
			args = append(args, call.Args...)
		}
		return args, nil
	default:
		return nil, newError(ErrCodeUnresolvable, at, "unhandled expression in quantified frame condition")
	}
}
