package frame

import (
	"log/slog"

	"github.com/roach88/framecheck/internal/ir"
)

// Library holds the commitments of definition predicates, keyed by
// unqualified name. A transition calling a library predicate inherits its
// commitments verbatim. The library is built once and is read-only after.
type Library struct {
	entries map[string]Commitments
	order   []string

	// Diagnostics holds branch mismatches found inside definitions.
	Diagnostics []Diagnostic
}

// BuildLibrary classifies definition bodies in declaration order. A
// definition sees the entries of definitions declared before it. Only
// predicates with at least one commitment are stored.
func BuildLibrary(defs []*ir.Predicate, helper string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lib := &Library{entries: make(map[string]Commitments)}

	for _, p := range defs {
		name := p.Label()
		if name == helper {
			continue
		}
		if p.Body == nil {
			continue
		}

		c := newClassifier(helper, lib, name)
		var out Commitments
		if err := c.classify(p.Body, &out); err != nil {
			return nil, withPredicate(err, name)
		}
		lib.Diagnostics = append(lib.Diagnostics, c.mismatches...)

		if out.Empty() {
			continue
		}
		if _, dup := lib.entries[name]; !dup {
			lib.order = append(lib.order, name)
		}
		lib.entries[name] = out

		logger.Debug("library entry",
			"predicate", name,
			"changed", len(out.Changed),
			"unchanged", len(out.Unchanged))
	}
	return lib, nil
}

// Lookup returns the commitments for an unqualified predicate name.
// A nil library has no entries.
func (l *Library) Lookup(name string) (Commitments, bool) {
	if l == nil {
		return Commitments{}, false
	}
	c, ok := l.entries[name]
	return c, ok
}

// Names returns the stored predicate names in declaration order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.order...)
}

// Len returns the number of stored predicates.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func withPredicate(err error, name string) error {
	if ce, ok := err.(*CheckerError); ok && ce.Predicate == "" {
		ce.Predicate = name
	}
	return err
}
