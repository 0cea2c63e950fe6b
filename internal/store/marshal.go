package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/framecheck/internal/frame"
	"github.com/roach88/framecheck/internal/ir"
)

// marshalCommitments converts commitments to canonical JSON TEXT.
// Skipped reports carry no commitments and store "{}".
func marshalCommitments(c *frame.Commitments) (string, error) {
	if c == nil {
		return "{}", nil
	}
	obj := ir.IRObject{
		"changed":   stringArray(exprStrings(c.Changed)),
		"unchanged": stringArray(exprStrings(c.Unchanged)),
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal commitments: %w", err)
	}
	return string(data), nil
}

// marshalTokens converts a token list to canonical JSON TEXT.
func marshalTokens(tokens []string) (string, error) {
	data, err := ir.MarshalCanonical(stringArray(tokens))
	if err != nil {
		return "", fmt.Errorf("marshal tokens: %w", err)
	}
	return string(data), nil
}

// unmarshalTokens parses a stored token list. Returns nil for an empty list.
func unmarshalTokens(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var tokens []string
	if err := json.Unmarshal([]byte(data), &tokens); err != nil {
		return nil, fmt.Errorf("unmarshal tokens: %w", err)
	}
	return tokens, nil
}

func stringArray(ss []string) ir.IRArray {
	arr := make(ir.IRArray, len(ss))
	for i, s := range ss {
		arr[i] = ir.IRString(s)
	}
	return arr
}

func exprStrings(exprs []ir.Expr) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = e.String()
	}
	return out
}
