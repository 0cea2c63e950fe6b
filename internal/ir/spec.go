package ir

import "strings"

// Field is a relation owned by a sig.
type Field struct {
	Sig  string `json:"sig"`
	Name string `json:"name"`
	Var  bool   `json:"var"`
	Pos  Pos    `json:"-"`
}

// ID returns the "Sig.field" identifier with module prefixes stripped.
func (f Field) ID() string {
	return Unqualify(f.Sig) + "." + f.Name
}

// Sig is a named set of instances.
type Sig struct {
	Name   string  `json:"name"`
	Var    bool    `json:"var"`
	Fields []Field `json:"fields"`
	Pos    Pos     `json:"-"`
}

// IsVarSet reports whether the sig is a mutable type-level set: its
// membership varies across states and it owns no fields.
func (s Sig) IsVarSet() bool {
	return s.Var && len(s.Fields) == 0
}

// Predicate is a named formula with declared parameters.
type Predicate struct {
	Name   string
	Params []Decl
	Body   Expr
	Pos    Pos
}

// Label returns the predicate name with module prefixes stripped.
func (p *Predicate) Label() string {
	return Unqualify(p.Name)
}

// Arity returns the number of declared parameter names.
func (p *Predicate) Arity() int {
	n := 0
	for _, d := range p.Params {
		n += len(d.Names)
	}
	return n
}

// Spec is a loaded specification: the definitions unit (sigs and reusable
// predicates) and the transitions unit. The model unit is consumed by the
// external scheduler and only recorded as present or not.
type Spec struct {
	Sigs        []Sig
	Definitions []*Predicate
	Transitions []*Predicate
	HasModel    bool
}

// Sig looks up a sig by name, ignoring module prefixes.
func (s *Spec) Sig(name string) (Sig, bool) {
	name = Unqualify(name)
	for _, sig := range s.Sigs {
		if Unqualify(sig.Name) == name {
			return sig, true
		}
	}
	return Sig{}, false
}

// Field looks up a field by owning sig and name.
func (s *Spec) Field(sig, name string) (Field, bool) {
	owner, ok := s.Sig(sig)
	if !ok {
		return Field{}, false
	}
	for _, f := range owner.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Definition looks up a definition predicate by unqualified name.
func (s *Spec) Definition(name string) (*Predicate, bool) {
	name = Unqualify(name)
	for _, p := range s.Definitions {
		if p.Label() == name {
			return p, true
		}
	}
	return nil, false
}

// Unqualify strips module prefixes such as "this/" or "defs/".
func Unqualify(label string) string {
	if i := strings.LastIndexByte(label, '/'); i >= 0 {
		return label[i+1:]
	}
	return label
}
