package frame

import (
	"slices"

	"github.com/roach88/framecheck/internal/config"
	"github.com/roach88/framecheck/internal/ir"
)

// FieldCoverage tracks which instances of a mutable field a transition has
// accounted for. Tokens are sig names (a whole type) or variable names (a
// single instance). The field starts with its owning sig unknown and is
// fully covered when nothing is unknown.
type FieldCoverage struct {
	Field   ir.Field
	unknown map[string]bool
	known   map[string]bool
}

func newFieldCoverage(f ir.Field) *FieldCoverage {
	return &FieldCoverage{
		Field:   f,
		unknown: map[string]bool{ir.Unqualify(f.Sig): true},
		known:   make(map[string]bool),
	}
}

// Covered reports whether every instance is accounted for.
func (fc *FieldCoverage) Covered() bool {
	return len(fc.unknown) == 0
}

// Unknown returns the unaccounted tokens in sorted order.
func (fc *FieldCoverage) Unknown() []string {
	return sortedTokens(fc.unknown)
}

// Known returns the accounted tokens in sorted order.
func (fc *FieldCoverage) Known() []string {
	return sortedTokens(fc.known)
}

func (fc *FieldCoverage) cover(token string) {
	delete(fc.unknown, token)
	fc.known[token] = true
}

func (fc *FieldCoverage) reopen(token string) {
	delete(fc.known, token)
	fc.unknown[token] = true
}

// narrow accounts for the instances denoted by by. A sig or variable is
// covered outright. A difference A - B1 - ... - Bn covers A and reopens
// each Bi, since those instances were carved out of the commitment.
// at is the commitment being resolved, used for error context.
func (fc *FieldCoverage) narrow(by, at ir.Expr) error {
	switch n := unwrapNoop(by).(type) {
	case *ir.SigRef:
		fc.cover(ir.Unqualify(n.Name))
		return nil

	case *ir.Var:
		fc.cover(n.Name)
		return nil

	case *ir.Binary:
		if n.Op != ir.OpMinus {
			return newError(ErrCodeUnresolvable, at, "unrecognized binary op %q in instance expression", n.Op)
		}
		base, removed := flattenDifference(n)
		token, ok := instanceToken(base)
		if !ok {
			return newError(ErrCodeUnresolvable, at, "left side of set difference is not a sig or variable")
		}
		fc.cover(token)
		for _, r := range removed {
			for _, t := range removedTokens(r) {
				fc.reopen(t)
			}
		}
		return nil

	case *ir.Unary:
		return newError(ErrCodeUnresolvable, at, "unrecognized unary op %q in instance expression", n.Op)

	default:
		return newError(ErrCodeUnresolvable, at, "unrecognized instance expression %q", by)
	}
}

// flattenDifference splits ((A - B1) - B2) ... into A and [B1, B2, ...].
func flattenDifference(n *ir.Binary) (ir.Expr, []ir.Expr) {
	var removed []ir.Expr
	var e ir.Expr = n
	for {
		b, ok := unwrapNoop(e).(*ir.Binary)
		if !ok || b.Op != ir.OpMinus {
			break
		}
		removed = append(removed, b.Right)
		e = b.Left
	}
	slices.Reverse(removed)
	return unwrapNoop(e), removed
}

// instanceToken names the instances a sig or variable stands for.
func instanceToken(e ir.Expr) (string, bool) {
	switch n := unwrapNoop(e).(type) {
	case *ir.SigRef:
		return ir.Unqualify(n.Name), true
	case *ir.Var:
		return n.Name, true
	}
	return "", false
}

// removedTokens returns the tokens named by a subtracted term. A union
// contributes both sides; a join "x.f" contributes x; any other binary
// contributes its rightmost leaf. Terms naming no instance are ignored.
func removedTokens(e ir.Expr) []string {
	e = unwrapNoop(e)
	if t, ok := instanceToken(e); ok {
		return []string{t}
	}
	b, ok := e.(*ir.Binary)
	if !ok {
		return nil
	}
	switch b.Op {
	case ir.OpPlus:
		return append(removedTokens(b.Left), removedTokens(b.Right)...)
	case ir.OpJoin:
		return removedTokens(b.Left)
	}
	for {
		r, ok := unwrapNoop(b.Right).(*ir.Binary)
		if !ok {
			break
		}
		b = r
	}
	if t, ok := instanceToken(b.Right); ok {
		return []string{t}
	}
	return nil
}

// Coverage is the per-transition coverage table: one entry per checked
// field plus the mutable type-level sets not yet accounted for.
type Coverage struct {
	fields  map[string]*FieldCoverage
	exempt  map[string]bool
	varSets map[string]bool
}

// NewCoverage builds a fresh table for one transition.
func NewCoverage(spec *ir.Spec, cfg config.Config) *Coverage {
	c := &Coverage{
		fields:  make(map[string]*FieldCoverage),
		exempt:  make(map[string]bool),
		varSets: make(map[string]bool),
	}
	for _, sig := range spec.Sigs {
		if sig.IsVarSet() {
			c.varSets[ir.Unqualify(sig.Name)] = true
		}
		for _, f := range sig.Fields {
			if !f.Var {
				continue
			}
			if cfg.IsExempt(f.ID()) {
				c.exempt[f.ID()] = true
				continue
			}
			c.fields[f.ID()] = newFieldCoverage(f)
		}
	}
	return c
}

// lookup returns the coverage entry for a field. Exempt fields return
// (nil, false, nil) and are ignored by the caller.
func (c *Coverage) lookup(ref *ir.FieldRef, at ir.Expr) (*FieldCoverage, bool, error) {
	id := ref.ID()
	if fc, ok := c.fields[id]; ok {
		return fc, true, nil
	}
	if c.exempt[id] {
		return nil, false, nil
	}
	return nil, false, newError(ErrCodeUncheckedField, at,
		"%s is not a field that requires a frame condition (is it marked as var?)", id)
}

func (c *Coverage) coverSet(name string) {
	delete(c.varSets, ir.Unqualify(name))
}

// Field returns the coverage entry for a "Sig.field" id.
func (c *Coverage) Field(id string) (*FieldCoverage, bool) {
	fc, ok := c.fields[id]
	return fc, ok
}

// Uncovered returns the fields with unknown instances, sorted by id.
func (c *Coverage) Uncovered() []*FieldCoverage {
	var out []*FieldCoverage
	for _, id := range sortedTokens(c.fieldIDs()) {
		if fc := c.fields[id]; !fc.Covered() {
			out = append(out, fc)
		}
	}
	return out
}

// MissingSets returns the mutable type-level sets no commitment named.
func (c *Coverage) MissingSets() []string {
	return sortedTokens(c.varSets)
}

func (c *Coverage) fieldIDs() map[string]bool {
	ids := make(map[string]bool, len(c.fields))
	for id := range c.fields {
		ids[id] = true
	}
	return ids
}

func sortedTokens(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
