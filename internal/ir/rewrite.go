package ir

// Children returns the direct sub-expressions of e in source order.
// Quantifier domains precede the body; a call's resolved target body is
// not a child.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Binary:
		return []Expr{n.Left, n.Right}
	case *Unary:
		return []Expr{n.Sub}
	case *ITE:
		return []Expr{n.Cond, n.Then, n.Else}
	case *Quant:
		out := make([]Expr, 0, len(n.Decls)+1)
		for _, d := range n.Decls {
			out = append(out, d.Domain)
		}
		return append(out, n.Body)
	case *Call:
		return n.Args
	case *List:
		return n.Args
	case *Let:
		return []Expr{n.Bound, n.Body}
	case *Choice:
		return n.Alternatives
	default:
		return nil
	}
}

// Any reports whether pred holds for e or any node below it.
func Any(e Expr, pred func(Expr) bool) bool {
	if e == nil {
		return false
	}
	if pred(e) {
		return true
	}
	for _, c := range Children(e) {
		if Any(c, pred) {
			return true
		}
	}
	return false
}

// Substitute replaces free occurrences of the variable name in e with
// with. Bindings introduced by quantifiers and lets shadow name.
func Substitute(e Expr, name string, with Expr) Expr {
	switch n := e.(type) {
	case *Var:
		if n.Name == name {
			return with
		}
		return n
	case *Binary:
		return &Binary{Op: n.Op, Left: Substitute(n.Left, name, with), Right: Substitute(n.Right, name, with), Pos: n.Pos}
	case *Unary:
		return &Unary{Op: n.Op, Sub: Substitute(n.Sub, name, with), Pos: n.Pos}
	case *ITE:
		return &ITE{
			Cond: Substitute(n.Cond, name, with),
			Then: Substitute(n.Then, name, with),
			Else: Substitute(n.Else, name, with),
			Pos:  n.Pos,
		}
	case *Quant:
		decls := make([]Decl, len(n.Decls))
		shadowed := false
		for i, d := range n.Decls {
			// A domain sees the names bound by earlier decls only.
			domain := d.Domain
			if !shadowed {
				domain = Substitute(d.Domain, name, with)
			}
			decls[i] = Decl{Names: d.Names, Domain: domain}
			for _, bound := range d.Names {
				if bound == name {
					shadowed = true
				}
			}
		}
		body := n.Body
		if !shadowed {
			body = Substitute(n.Body, name, with)
		}
		return &Quant{Op: n.Op, Decls: decls, Body: body, Pos: n.Pos}
	case *Call:
		return &Call{Name: n.Name, Args: substituteAll(n.Args, name, with), Target: n.Target, Pos: n.Pos}
	case *List:
		return &List{Op: n.Op, Args: substituteAll(n.Args, name, with), Pos: n.Pos}
	case *Let:
		bound := Substitute(n.Bound, name, with)
		body := n.Body
		if n.Name != name {
			body = Substitute(n.Body, name, with)
		}
		return &Let{Name: n.Name, Bound: bound, Body: body, Pos: n.Pos}
	case *Choice:
		return &Choice{Alternatives: substituteAll(n.Alternatives, name, with), Pos: n.Pos}
	default:
		return e
	}
}

func substituteAll(exprs []Expr, name string, with Expr) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = Substitute(e, name, with)
	}
	return out
}
