package ir

// Encode converts an expression to its canonical value form. Positions and
// resolved call targets are omitted, so two trees with the same shape and
// content encode identically.
func Encode(e Expr) IRValue {
	switch n := e.(type) {
	case nil:
		return IRObject{"k": IRString("nil")}
	case *Const:
		return IRObject{"k": IRString("const"), "v": IRString(n.Value)}
	case *Var:
		return IRObject{"k": IRString("var"), "n": IRString(n.Name)}
	case *SigRef:
		return IRObject{"k": IRString("sig"), "n": IRString(Unqualify(n.Name))}
	case *FieldRef:
		return IRObject{"k": IRString("field"), "s": IRString(Unqualify(n.Sig)), "n": IRString(n.Name)}
	case *Binary:
		return IRObject{
			"k":  IRString("binary"),
			"op": IRString(n.Op),
			"l":  Encode(n.Left),
			"r":  Encode(n.Right),
		}
	case *Unary:
		return IRObject{"k": IRString("unary"), "op": IRString(n.Op), "sub": Encode(n.Sub)}
	case *ITE:
		return IRObject{
			"k": IRString("ite"),
			"c": Encode(n.Cond),
			"t": Encode(n.Then),
			"e": Encode(n.Else),
		}
	case *Quant:
		decls := make(IRArray, len(n.Decls))
		for i, d := range n.Decls {
			names := make(IRArray, len(d.Names))
			for j, name := range d.Names {
				names[j] = IRString(name)
			}
			decls[i] = IRObject{"names": names, "domain": Encode(d.Domain)}
		}
		return IRObject{
			"k":     IRString("quant"),
			"op":    IRString(n.Op),
			"decls": decls,
			"body":  Encode(n.Body),
		}
	case *Call:
		return IRObject{"k": IRString("call"), "n": IRString(n.Name), "args": encodeAll(n.Args)}
	case *List:
		return IRObject{"k": IRString("list"), "op": IRString(n.Op), "args": encodeAll(n.Args)}
	case *Let:
		return IRObject{
			"k":    IRString("let"),
			"n":    IRString(n.Name),
			"b":    Encode(n.Bound),
			"body": Encode(n.Body),
		}
	case *Choice:
		return IRObject{"k": IRString("choice"), "alts": encodeAll(n.Alternatives)}
	default:
		return IRObject{"k": IRString("unknown")}
	}
}

func encodeAll(exprs []Expr) IRArray {
	out := make(IRArray, len(exprs))
	for i, e := range exprs {
		out[i] = Encode(e)
	}
	return out
}

// EncodeSpec converts a whole specification to its canonical value form.
func EncodeSpec(s *Spec) IRValue {
	sigs := make(IRArray, len(s.Sigs))
	for i, sig := range s.Sigs {
		fields := make(IRArray, len(sig.Fields))
		for j, f := range sig.Fields {
			fields[j] = IRObject{"name": IRString(f.Name), "var": IRBool(f.Var)}
		}
		sigs[i] = IRObject{
			"name":   IRString(Unqualify(sig.Name)),
			"var":    IRBool(sig.Var),
			"fields": fields,
		}
	}
	return IRObject{
		"sigs":        sigs,
		"definitions": encodePreds(s.Definitions),
		"transitions": encodePreds(s.Transitions),
		"model":       IRBool(s.HasModel),
	}
}

func encodePreds(preds []*Predicate) IRArray {
	out := make(IRArray, len(preds))
	for i, p := range preds {
		params := make(IRArray, len(p.Params))
		for j, d := range p.Params {
			names := make(IRArray, len(d.Names))
			for k, name := range d.Names {
				names[k] = IRString(name)
			}
			params[j] = IRObject{"names": names, "domain": Encode(d.Domain)}
		}
		out[i] = IRObject{
			"name":   IRString(p.Name),
			"params": params,
			"body":   Encode(p.Body),
		}
	}
	return out
}
