package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/framecheck/internal/ir"
)

// exprTags are the keys that identify an expression node. Every node
// carries exactly one of them.
var exprTags = []string{
	"const", "var", "sig", "field", "op", "unary", "cond",
	"quant", "call", "and", "or", "bind", "choice",
}

// lookup selects a struct field by its literal label, so labels that are
// CUE keywords still resolve.
func lookup(v cue.Value, key string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(key)))
}

// parseExpr converts an encoded formula tree into an ir.Expr.
func parseExpr(v cue.Value, field string) (ir.Expr, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: field, Message: "expression is required", Pos: v.Pos()}
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{Field: field, Message: "expression must be a struct", Pos: v.Pos()}
	}

	tag := ""
	for _, k := range exprTags {
		if !lookup(v, k).Exists() {
			continue
		}
		if tag != "" {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("expression has both %q and %q", tag, k),
				Pos:     v.Pos(),
			}
		}
		tag = k
	}

	pos := toPos(v.Pos())
	switch tag {
	case "const":
		value, err := scalarString(lookup(v, "const"))
		if err != nil {
			return nil, err
		}
		return &ir.Const{Value: value, Pos: pos}, nil

	case "var":
		name, err := requiredString(v, "var", field)
		if err != nil {
			return nil, err
		}
		return &ir.Var{Name: name, Pos: pos}, nil

	case "sig":
		name, err := requiredString(v, "sig", field)
		if err != nil {
			return nil, err
		}
		return &ir.SigRef{Name: name, Pos: pos}, nil

	case "field":
		ref, err := requiredString(v, "field", field)
		if err != nil {
			return nil, err
		}
		i := strings.LastIndexByte(ref, '.')
		if i <= 0 || i == len(ref)-1 {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("field reference must be \"Sig.name\", got %q", ref),
				Pos:     v.Pos(),
			}
		}
		return &ir.FieldRef{Sig: ref[:i], Name: ref[i+1:], Pos: pos}, nil

	case "op":
		op, err := requiredString(v, "op", field)
		if err != nil {
			return nil, err
		}
		if !ir.ValidBinaryOps[ir.BinaryOp(op)] {
			return nil, unknownOp(v, field, "binary", op)
		}
		left, err := parseExpr(lookup(v, "left"), field+".left")
		if err != nil {
			return nil, err
		}
		right, err := parseExpr(lookup(v, "right"), field+".right")
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Op: ir.BinaryOp(op), Left: left, Right: right, Pos: pos}, nil

	case "unary":
		op, err := requiredString(v, "unary", field)
		if err != nil {
			return nil, err
		}
		if !ir.ValidUnaryOps[ir.UnaryOp(op)] {
			return nil, unknownOp(v, field, "unary", op)
		}
		sub, err := parseExpr(lookup(v, "sub"), field+".sub")
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Op: ir.UnaryOp(op), Sub: sub, Pos: pos}, nil

	case "cond":
		cond, err := parseExpr(lookup(v, "cond"), field+".cond")
		if err != nil {
			return nil, err
		}
		then, err := parseExpr(lookup(v, "then"), field+".then")
		if err != nil {
			return nil, err
		}
		els, err := parseExpr(lookup(v, "else"), field+".else")
		if err != nil {
			return nil, err
		}
		return &ir.ITE{Cond: cond, Then: then, Else: els, Pos: pos}, nil

	case "quant":
		op, err := requiredString(v, "quant", field)
		if err != nil {
			return nil, err
		}
		if !ir.ValidQuantOps[ir.QuantOp(op)] {
			return nil, unknownOp(v, field, "quantifier", op)
		}
		var decls []ir.Decl
		if declsVal := lookup(v, "decls"); declsVal.Exists() {
			if decls, err = parseDecls(declsVal, field+".decls"); err != nil {
				return nil, err
			}
		}
		body, err := parseExpr(lookup(v, "body"), field+".body")
		if err != nil {
			return nil, err
		}
		return &ir.Quant{Op: ir.QuantOp(op), Decls: decls, Body: body, Pos: pos}, nil

	case "call":
		name, err := requiredString(v, "call", field)
		if err != nil {
			return nil, err
		}
		var args []ir.Expr
		if argsVal := lookup(v, "args"); argsVal.Exists() {
			if args, err = parseExprList(argsVal, field+".args"); err != nil {
				return nil, err
			}
		}
		return &ir.Call{Name: name, Args: args, Pos: pos}, nil

	case "and", "or":
		args, err := parseExprList(lookup(v, tag), field+"."+tag)
		if err != nil {
			return nil, err
		}
		return &ir.List{Op: ir.ListOp(tag), Args: args, Pos: pos}, nil

	case "bind":
		name, err := requiredString(v, "bind", field)
		if err != nil {
			return nil, err
		}
		bound, err := parseExpr(lookup(v, "value"), field+".value")
		if err != nil {
			return nil, err
		}
		body, err := parseExpr(lookup(v, "body"), field+".body")
		if err != nil {
			return nil, err
		}
		return &ir.Let{Name: name, Bound: bound, Body: body, Pos: pos}, nil

	case "choice":
		alts, err := parseExprList(lookup(v, "choice"), field+".choice")
		if err != nil {
			return nil, err
		}
		return &ir.Choice{Alternatives: alts, Pos: pos}, nil

	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expression must have one of: %s", strings.Join(exprTags, ", ")),
			Pos:     v.Pos(),
		}
	}
}

func parseExprList(v cue.Value, field string) ([]ir.Expr, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ir.Expr
	for i := 0; iter.Next(); i++ {
		e, err := parseExpr(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// parseDecls parses [{names: [...], domain: E}, ...].
func parseDecls(v cue.Value, field string) ([]ir.Decl, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var decls []ir.Decl
	for i := 0; iter.Next(); i++ {
		declVal := iter.Value()
		declField := fmt.Sprintf("%s[%d]", field, i)

		namesVal := lookup(declVal, "names")
		if !namesVal.Exists() {
			return nil, &CompileError{Field: declField + ".names", Message: "names are required", Pos: declVal.Pos()}
		}
		var names []string
		if err := namesVal.Decode(&names); err != nil {
			return nil, formatCUEError(err)
		}

		domain, err := parseExpr(lookup(declVal, "domain"), declField+".domain")
		if err != nil {
			return nil, err
		}
		decls = append(decls, ir.Decl{Names: names, Domain: domain})
	}
	return decls, nil
}

func requiredString(v cue.Value, key, field string) (string, error) {
	s, err := lookup(v, key).String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if s == "" {
		return "", &CompileError{Field: field + "." + key, Message: "must be non-empty", Pos: v.Pos()}
	}
	return s, nil
}

// scalarString accepts a string or an integer constant.
func scalarString(v cue.Value) (string, error) {
	if s, err := v.String(); err == nil {
		return s, nil
	}
	n, err := v.Int64()
	if err != nil {
		return "", formatCUEError(err)
	}
	return strconv.FormatInt(n, 10), nil
}

func unknownOp(v cue.Value, field, kind, op string) error {
	return &CompileError{
		Field:   field,
		Message: fmt.Sprintf("unknown %s operator %q", kind, op),
		Pos:     v.Pos(),
	}
}
