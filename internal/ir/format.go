package ir

import "strings"

func (e *Const) String() string  { return e.Value }
func (e *Var) String() string    { return e.Name }
func (e *SigRef) String() string { return Unqualify(e.Name) }

// String renders the bare field name, so "a.y" prints as written.
func (e *FieldRef) String() string { return e.Name }

func (e *Binary) String() string {
	left := operand(e.Left)
	right := operand(e.Right)
	if e.Op == OpJoin {
		return left + "." + right
	}
	return left + " " + string(e.Op) + " " + right
}

// operand parenthesizes nested binaries. Join binds tightest and never
// needs them.
func operand(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	if b, ok := e.(*Binary); ok && b.Op != OpJoin {
		return "(" + b.String() + ")"
	}
	return e.String()
}

func (e *Unary) String() string {
	sub := "<nil>"
	if e.Sub != nil {
		sub = e.Sub.String()
		if _, ok := e.Sub.(*Binary); ok && e.Op != UnaryNoop {
			sub = "(" + sub + ")"
		}
	}
	switch e.Op {
	case UnaryNoop:
		return sub
	case UnaryPrime:
		return sub + "'"
	case UnaryCard, UnaryTranspose, UnaryClosure, UnaryRClosure:
		return string(e.Op) + sub
	default:
		return string(e.Op) + " " + sub
	}
}

func (e *ITE) String() string {
	return "(" + str(e.Cond) + " => " + str(e.Then) + " else " + str(e.Else) + ")"
}

func (e *Quant) String() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(string(e.Op))
	b.WriteString(" ")
	for i, d := range e.Decls {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strings.Join(d.Names, ", "))
		b.WriteString(": ")
		b.WriteString(str(d.Domain))
	}
	b.WriteString(" | ")
	b.WriteString(str(e.Body))
	b.WriteString(")")
	return b.String()
}

func (e *Call) String() string {
	return e.Name + "[" + joinExprs(e.Args, ", ") + "]"
}

func (e *List) String() string {
	if len(e.Args) == 1 {
		return str(e.Args[0])
	}
	return "(" + joinExprs(e.Args, " "+string(e.Op)+" ") + ")"
}

func (e *Let) String() string {
	return "(let " + e.Name + " = " + str(e.Bound) + " | " + str(e.Body) + ")"
}

func (e *Choice) String() string {
	return "choice(" + joinExprs(e.Alternatives, " | ") + ")"
}

func str(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = str(e)
	}
	return strings.Join(parts, sep)
}

// FormatList renders a commitment list as "[a, b]".
func FormatList(exprs []Expr) string {
	return "[" + joinExprs(exprs, ", ") + "]"
}
