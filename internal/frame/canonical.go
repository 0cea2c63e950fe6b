package frame

import "github.com/roach88/framecheck/internal/ir"

// canonicalizer rewrites expressions into the form used for comparison:
// prime markers removed, call names unqualified, callee bodies rewritten
// the same way. Callee predicates are memoized by identity, so recursive
// predicates terminate and each body is rewritten once.
//
// A canonicalizer is not safe for concurrent use.
type canonicalizer struct {
	preds map[*ir.Predicate]*ir.Predicate
}

func newCanonicalizer() *canonicalizer {
	return &canonicalizer{preds: make(map[*ir.Predicate]*ir.Predicate)}
}

func (c *canonicalizer) canon(e ir.Expr) (ir.Expr, error) {
	switch n := e.(type) {
	case *ir.Const, *ir.Var, *ir.SigRef, *ir.FieldRef:
		return n, nil

	case *ir.Unary:
		sub, err := c.canon(n.Sub)
		if err != nil {
			return nil, err
		}
		if n.Op == ir.UnaryPrime {
			return sub, nil
		}
		return &ir.Unary{Op: n.Op, Sub: sub, Pos: n.Pos}, nil

	case *ir.Binary:
		left, err := c.canon(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.canon(n.Right)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Op: n.Op, Left: left, Right: right, Pos: n.Pos}, nil

	case *ir.ITE:
		parts, err := c.canonAll([]ir.Expr{n.Cond, n.Then, n.Else})
		if err != nil {
			return nil, err
		}
		return &ir.ITE{Cond: parts[0], Then: parts[1], Else: parts[2], Pos: n.Pos}, nil

	case *ir.Quant:
		decls, err := c.canonDecls(n.Decls)
		if err != nil {
			return nil, err
		}
		body, err := c.canon(n.Body)
		if err != nil {
			return nil, err
		}
		return &ir.Quant{Op: n.Op, Decls: decls, Body: body, Pos: n.Pos}, nil

	case *ir.Call:
		args, err := c.canonAll(n.Args)
		if err != nil {
			return nil, err
		}
		var target *ir.Predicate
		if n.Target != nil {
			if target, err = c.predicate(n.Target); err != nil {
				return nil, err
			}
		}
		return &ir.Call{Name: ir.Unqualify(n.Name), Args: args, Target: target, Pos: n.Pos}, nil

	case *ir.List:
		args, err := c.canonAll(n.Args)
		if err != nil {
			return nil, err
		}
		return &ir.List{Op: n.Op, Args: args, Pos: n.Pos}, nil

	case *ir.Let:
		bound, err := c.canon(n.Bound)
		if err != nil {
			return nil, err
		}
		body, err := c.canon(n.Body)
		if err != nil {
			return nil, err
		}
		return &ir.Let{Name: n.Name, Bound: bound, Body: body, Pos: n.Pos}, nil

	case *ir.Choice:
		return nil, newError(ErrCodeUnsupportedExpr, n, "unresolved overload cannot be canonicalized")

	default:
		return nil, newError(ErrCodeUnsupportedExpr, e, "unrecognized expr type")
	}
}

func (c *canonicalizer) canonAll(exprs []ir.Expr) ([]ir.Expr, error) {
	out := make([]ir.Expr, len(exprs))
	for i, e := range exprs {
		ce, err := c.canon(e)
		if err != nil {
			return nil, err
		}
		out[i] = ce
	}
	return out, nil
}

func (c *canonicalizer) canonDecls(decls []ir.Decl) ([]ir.Decl, error) {
	out := make([]ir.Decl, len(decls))
	for i, d := range decls {
		domain, err := c.canon(d.Domain)
		if err != nil {
			return nil, err
		}
		out[i] = ir.Decl{Names: d.Names, Domain: domain}
	}
	return out, nil
}

// predicate returns the canonical copy of p. The copy is registered before
// its body is rewritten so that recursive calls resolve to it.
func (c *canonicalizer) predicate(p *ir.Predicate) (*ir.Predicate, error) {
	if done, ok := c.preds[p]; ok {
		return done, nil
	}
	out := &ir.Predicate{Name: ir.Unqualify(p.Name), Pos: p.Pos}
	c.preds[p] = out

	params, err := c.canonDecls(p.Params)
	if err != nil {
		return nil, err
	}
	out.Params = params
	if p.Body != nil {
		if out.Body, err = c.canon(p.Body); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func containsPrime(e ir.Expr) bool {
	return ir.Any(e, func(n ir.Expr) bool {
		u, ok := n.(*ir.Unary)
		return ok && u.Op == ir.UnaryPrime
	})
}

func unwrapNoop(e ir.Expr) ir.Expr {
	for {
		u, ok := e.(*ir.Unary)
		if !ok || u.Op != ir.UnaryNoop {
			return e
		}
		e = u.Sub
	}
}
