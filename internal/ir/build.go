package ir

// Constructors for building trees in code. The loader sets positions;
// nodes built here carry none.

// V returns a variable reference.
func V(name string) *Var { return &Var{Name: name} }

// S returns a sig reference.
func S(name string) *SigRef { return &SigRef{Name: name} }

// F returns a field reference.
func F(sig, name string) *FieldRef { return &FieldRef{Sig: sig, Name: name} }

// C returns a constant.
func C(value string) *Const { return &Const{Value: value} }

// Bin returns a binary node.
func Bin(op BinaryOp, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

// Eq returns left = right.
func Eq(left, right Expr) *Binary { return Bin(OpEquals, left, right) }

// Join returns left.right.
func Join(left, right Expr) *Binary { return Bin(OpJoin, left, right) }

// Minus returns left - right.
func Minus(left, right Expr) *Binary { return Bin(OpMinus, left, right) }

// Un returns a unary node.
func Un(op UnaryOp, sub Expr) *Unary { return &Unary{Op: op, Sub: sub} }

// Prime returns sub'.
func Prime(sub Expr) *Unary { return Un(UnaryPrime, sub) }

// And returns a conjunction.
func And(args ...Expr) *List { return &List{Op: ListAnd, Args: args} }

// Or returns a disjunction.
func Or(args ...Expr) *List { return &List{Op: ListOr, Args: args} }

// CallOf returns a call to name.
func CallOf(name string, args ...Expr) *Call { return &Call{Name: name, Args: args} }

// If returns a conditional.
func If(cond, then, els Expr) *ITE { return &ITE{Cond: cond, Then: then, Else: els} }

// All returns "all name: domain | body".
func All(name string, domain, body Expr) *Quant {
	return &Quant{Op: QuantAll, Decls: []Decl{{Names: []string{name}, Domain: domain}}, Body: body}
}

// LetIn returns "let name = bound | body".
func LetIn(name string, bound, body Expr) *Let {
	return &Let{Name: name, Bound: bound, Body: body}
}
