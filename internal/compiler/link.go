package compiler

import "github.com/roach88/framecheck/internal/ir"

// linkCalls points every call at the predicate it names. Definitions take
// precedence over transitions of the same unqualified name. Calls naming
// nothing stay unlinked.
func linkCalls(spec *ir.Spec) {
	byName := make(map[string]*ir.Predicate)
	for _, p := range spec.Transitions {
		byName[p.Label()] = p
	}
	for _, p := range spec.Definitions {
		byName[p.Label()] = p
	}

	link := func(e ir.Expr) {
		ir.Any(e, func(n ir.Expr) bool {
			if call, ok := n.(*ir.Call); ok {
				call.Target = byName[ir.Unqualify(call.Name)]
			}
			return false
		})
	}
	for _, units := range [][]*ir.Predicate{spec.Definitions, spec.Transitions} {
		for _, p := range units {
			for _, d := range p.Params {
				link(d.Domain)
			}
			link(p.Body)
		}
	}
}
