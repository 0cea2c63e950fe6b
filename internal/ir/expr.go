package ir

import "fmt"

// Pos is a source position attached to a node by the loader.
type Pos struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// IsValid reports whether the position refers to a real source location.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	if p.File == "" {
		return fmt.Sprintf("line %d, column %d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Kind identifies the variant of an Expr.
type Kind int

const (
	KindConst Kind = iota
	KindVar
	KindSig
	KindField
	KindBinary
	KindUnary
	KindITE
	KindQuant
	KindCall
	KindList
	KindLet
	KindChoice
)

var kindNames = [...]string{
	KindConst:  "const",
	KindVar:    "var",
	KindSig:    "sig",
	KindField:  "field",
	KindBinary: "binary",
	KindUnary:  "unary",
	KindITE:    "ite",
	KindQuant:  "quant",
	KindCall:   "call",
	KindList:   "list",
	KindLet:    "let",
	KindChoice: "choice",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Expr is a sealed interface over formula nodes.
// Only the node types in this file implement it.
type Expr interface {
	Kind() Kind
	Position() Pos
	String() string
	expr() // Sealed
}

// BinaryOp tags a Binary node.
type BinaryOp string

const (
	OpEquals    BinaryOp = "="
	OpNotEquals BinaryOp = "!="
	OpIn        BinaryOp = "in"
	OpNotIn     BinaryOp = "!in"
	OpMinus     BinaryOp = "-"
	OpJoin      BinaryOp = "."
	OpPlus      BinaryOp = "+"
	OpIntersect BinaryOp = "&"
	OpProduct   BinaryOp = "->"
	OpOverride  BinaryOp = "++"
	OpDomain    BinaryOp = "<:"
	OpRange     BinaryOp = ":>"
	OpImplies   BinaryOp = "=>"
	OpIff       BinaryOp = "<=>"
	OpLess      BinaryOp = "<"
	OpGreater   BinaryOp = ">"
	OpLessEq    BinaryOp = "=<"
	OpGreaterEq BinaryOp = ">="
)

// ValidBinaryOps defines the binary operators the loader accepts.
var ValidBinaryOps = map[BinaryOp]bool{
	OpEquals: true, OpNotEquals: true, OpIn: true, OpNotIn: true,
	OpMinus: true, OpJoin: true, OpPlus: true, OpIntersect: true,
	OpProduct: true, OpOverride: true, OpDomain: true, OpRange: true,
	OpImplies: true, OpIff: true, OpLess: true, OpGreater: true,
	OpLessEq: true, OpGreaterEq: true,
}

// IsComparison reports whether the operator relates two values and can
// therefore carry a next-state assignment.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEquals, OpNotEquals, OpIn, OpNotIn:
		return true
	}
	return false
}

// UnaryOp tags a Unary node.
type UnaryOp string

const (
	UnaryNoop      UnaryOp = "noop"
	UnaryPrime     UnaryOp = "prime"
	UnaryNo        UnaryOp = "no"
	UnarySome      UnaryOp = "some"
	UnaryLone      UnaryOp = "lone"
	UnaryOne       UnaryOp = "one"
	UnarySet       UnaryOp = "set"
	UnaryNot       UnaryOp = "not"
	UnaryCard      UnaryOp = "#"
	UnaryTranspose UnaryOp = "~"
	UnaryClosure   UnaryOp = "^"
	UnaryRClosure  UnaryOp = "*"
)

// ValidUnaryOps defines the unary operators the loader accepts.
var ValidUnaryOps = map[UnaryOp]bool{
	UnaryNoop: true, UnaryPrime: true, UnaryNo: true, UnarySome: true,
	UnaryLone: true, UnaryOne: true, UnarySet: true, UnaryNot: true,
	UnaryCard: true, UnaryTranspose: true, UnaryClosure: true, UnaryRClosure: true,
}

// IsMultiplicity reports whether the operator is a declaration qualifier
// such as the "one" in "all i: one Inode".
func (op UnaryOp) IsMultiplicity() bool {
	switch op {
	case UnaryOne, UnaryLone, UnarySome, UnarySet:
		return true
	}
	return false
}

// QuantOp tags a Quant node.
type QuantOp string

const (
	QuantAll           QuantOp = "all"
	QuantSome          QuantOp = "some"
	QuantNo            QuantOp = "no"
	QuantLone          QuantOp = "lone"
	QuantOne           QuantOp = "one"
	QuantComprehension QuantOp = "comprehension"
	QuantSum           QuantOp = "sum"
)

// ValidQuantOps defines the quantifiers the loader accepts.
var ValidQuantOps = map[QuantOp]bool{
	QuantAll: true, QuantSome: true, QuantNo: true, QuantLone: true,
	QuantOne: true, QuantComprehension: true, QuantSum: true,
}

// ListOp tags a List node.
type ListOp string

const (
	ListAnd ListOp = "and"
	ListOr  ListOp = "or"
)

// Const is a constant such as none, univ, iden or an integer literal.
type Const struct {
	Value string
	Pos   Pos
}

// Var references a named variable: a predicate parameter, a quantified
// variable or a let name.
type Var struct {
	Name string
	Pos  Pos
}

// SigRef references a sig as the set of its instances.
type SigRef struct {
	Name string
	Pos  Pos
}

// FieldRef references a field of a sig.
type FieldRef struct {
	Sig  string
	Name string
	Pos  Pos
}

// ID returns the "Sig.field" identifier used to key coverage.
func (f *FieldRef) ID() string {
	return Unqualify(f.Sig) + "." + f.Name
}

// Binary is a binary operation.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	Pos   Pos
}

// Unary is a unary operation. UnaryPrime marks the next-state value.
type Unary struct {
	Op  UnaryOp
	Sub Expr
	Pos Pos
}

// ITE is a conditional.
type ITE struct {
	Cond Expr
	Then Expr
	Else Expr
	Pos  Pos
}

// Decl declares one or more names ranging over a domain expression.
type Decl struct {
	Names  []string
	Domain Expr
}

// Quant is a quantified formula.
type Quant struct {
	Op    QuantOp
	Decls []Decl
	Body  Expr
	Pos   Pos
}

// Call invokes a predicate by name. Target is the resolved predicate when
// the loader found one; it does not take part in structural equality.
type Call struct {
	Name   string
	Args   []Expr
	Target *Predicate
	Pos    Pos
}

// List is an n-ary conjunction or disjunction.
type List struct {
	Op   ListOp
	Args []Expr
	Pos  Pos
}

// Let binds Name to Bound within Body.
type Let struct {
	Name  string
	Bound Expr
	Body  Expr
	Pos   Pos
}

// Choice holds unresolved overload alternatives left by the type-checker.
type Choice struct {
	Alternatives []Expr
	Pos          Pos
}

func (*Const) Kind() Kind    { return KindConst }
func (*Var) Kind() Kind      { return KindVar }
func (*SigRef) Kind() Kind   { return KindSig }
func (*FieldRef) Kind() Kind { return KindField }
func (*Binary) Kind() Kind   { return KindBinary }
func (*Unary) Kind() Kind    { return KindUnary }
func (*ITE) Kind() Kind      { return KindITE }
func (*Quant) Kind() Kind    { return KindQuant }
func (*Call) Kind() Kind     { return KindCall }
func (*List) Kind() Kind     { return KindList }
func (*Let) Kind() Kind      { return KindLet }
func (*Choice) Kind() Kind   { return KindChoice }

func (e *Const) Position() Pos    { return e.Pos }
func (e *Var) Position() Pos      { return e.Pos }
func (e *SigRef) Position() Pos   { return e.Pos }
func (e *FieldRef) Position() Pos { return e.Pos }
func (e *Binary) Position() Pos   { return e.Pos }
func (e *Unary) Position() Pos    { return e.Pos }
func (e *ITE) Position() Pos      { return e.Pos }
func (e *Quant) Position() Pos    { return e.Pos }
func (e *Call) Position() Pos     { return e.Pos }
func (e *List) Position() Pos     { return e.Pos }
func (e *Let) Position() Pos      { return e.Pos }
func (e *Choice) Position() Pos   { return e.Pos }

func (*Const) expr()    {}
func (*Var) expr()      {}
func (*SigRef) expr()   {}
func (*FieldRef) expr() {}
func (*Binary) expr()   {}
func (*Unary) expr()    {}
func (*ITE) expr()      {}
func (*Quant) expr()    {}
func (*Call) expr()     {}
func (*List) expr()     {}
func (*Let) expr()      {}
func (*Choice) expr()   {}
