package frame

import (
	"encoding/json"

	"github.com/roach88/framecheck/internal/ir"
)

// Commitments is the classification of a formula: the canonicalized
// expressions it assigns next-state values to and the expressions it
// declares unchanged. Order follows the source; duplicates are kept.
type Commitments struct {
	Changed   []ir.Expr
	Unchanged []ir.Expr
}

// Empty reports whether nothing was committed.
func (c Commitments) Empty() bool {
	return len(c.Changed) == 0 && len(c.Unchanged) == 0
}

func (c *Commitments) append(other Commitments) {
	c.Changed = append(c.Changed, other.Changed...)
	c.Unchanged = append(c.Unchanged, other.Unchanged...)
}

// keys returns the canonical keys of every committed expression.
func (c Commitments) keys() (map[string]bool, error) {
	set := make(map[string]bool, len(c.Changed)+len(c.Unchanged))
	for _, list := range [][]ir.Expr{c.Changed, c.Unchanged} {
		for _, e := range list {
			k, err := ir.Key(e)
			if err != nil {
				return nil, err
			}
			set[k] = true
		}
	}
	return set, nil
}

// MarshalJSON renders the commitments as expression strings.
func (c Commitments) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Changed   []string `json:"changed"`
		Unchanged []string `json:"unchanged"`
	}{
		Changed:   exprStrings(c.Changed),
		Unchanged: exprStrings(c.Unchanged),
	})
}

func exprStrings(exprs []ir.Expr) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = e.String()
	}
	return out
}
