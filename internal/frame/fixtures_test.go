package frame

import (
	"github.com/roach88/framecheck/internal/ir"
)

// fsSpec is a small file-system model:
//
//	sig Inode { var size, var mode, ino }
//	sig Dir { var entries }
//	sig Volatile { var children }   exempt by default
//	var sig OpenFile {}
func fsSpec() *ir.Spec {
	return &ir.Spec{
		Sigs: []ir.Sig{
			{Name: "this/Inode", Fields: []ir.Field{
				{Sig: "this/Inode", Name: "size", Var: true},
				{Sig: "this/Inode", Name: "mode", Var: true},
				{Sig: "this/Inode", Name: "ino"},
			}},
			{Name: "this/Dir", Fields: []ir.Field{
				{Sig: "this/Dir", Name: "entries", Var: true},
			}},
			{Name: "this/Volatile", Fields: []ir.Field{
				{Sig: "this/Volatile", Name: "children", Var: true},
			}},
			{Name: "this/OpenFile", Var: true},
		},
	}
}

var (
	size     = ir.F("this/Inode", "size")
	mode     = ir.F("this/Inode", "mode")
	ino      = ir.F("this/Inode", "ino")
	entries  = ir.F("this/Dir", "entries")
	children = ir.F("this/Volatile", "children")
	inode    = ir.S("this/Inode")
	dir      = ir.S("this/Dir")
	openFile = ir.S("this/OpenFile")
)

func pred(name string, body ir.Expr) *ir.Predicate {
	return &ir.Predicate{Name: name, Body: body}
}

func unchanged(arg ir.Expr) *ir.Call {
	return ir.CallOf("defs/unchanged", arg)
}

// next builds "x.f' = v" with the prime on the field.
func next(x, f, v ir.Expr) *ir.Binary {
	return ir.Eq(ir.Join(x, ir.Prime(f)), v)
}

// frameAll builds "all i: Inode | unchanged[i.f] and ..." for the given fields.
func frameAll(domain ir.Expr, fields ...ir.Expr) *ir.Quant {
	calls := make([]ir.Expr, len(fields))
	for i, f := range fields {
		calls[i] = unchanged(ir.Join(ir.V("i"), f))
	}
	var body ir.Expr = ir.And(calls...)
	if len(calls) == 1 {
		body = calls[0]
	}
	return ir.All("i", ir.Un(ir.UnaryOne, domain), body)
}

func strs(exprs []ir.Expr) []string {
	if len(exprs) == 0 {
		return nil
	}
	return exprStrings(exprs)
}
