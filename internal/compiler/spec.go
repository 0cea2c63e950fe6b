package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/framecheck/internal/ir"
)

// CompileSpec parses a CUE value into a Spec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value holds two required units and one optional unit:
//
//	definitions: {
//		module: "defs"                      // optional name qualifier
//		sigs: Inode: fields: size: var: true
//		preds: unchanged: {params: [...], body: {...}}
//	}
//	transitions: {
//		module: "ops"
//		preds: write: {params: [...], body: {...}}
//	}
//	model: {...}                            // opaque, recorded as present
//
// Calls are linked to the predicate they name after both units are parsed.
func CompileSpec(v cue.Value) (*ir.Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	defs := v.LookupPath(cue.ParsePath("definitions"))
	if !defs.Exists() {
		return nil, &CompileError{
			Field:   "definitions",
			Message: "definitions unit is required",
			Pos:     v.Pos(),
		}
	}
	trans := v.LookupPath(cue.ParsePath("transitions"))
	if !trans.Exists() {
		return nil, &CompileError{
			Field:   "transitions",
			Message: "transitions unit is required",
			Pos:     v.Pos(),
		}
	}

	spec := &ir.Spec{
		HasModel: v.LookupPath(cue.ParsePath("model")).Exists(),
	}

	var err error
	spec.Sigs, err = parseSigs(defs)
	if err != nil {
		return nil, err
	}
	spec.Definitions, err = parsePreds(defs, "definitions")
	if err != nil {
		return nil, err
	}
	spec.Transitions, err = parsePreds(trans, "transitions")
	if err != nil {
		return nil, err
	}

	linkCalls(spec)
	return spec, nil
}

// parseSigs extracts sig declarations from the definitions unit.
func parseSigs(unit cue.Value) ([]ir.Sig, error) {
	var sigs []ir.Sig

	sigsVal := unit.LookupPath(cue.ParsePath("sigs"))
	if !sigsVal.Exists() {
		return sigs, nil // a spec without sigs has nothing to check
	}

	iter, err := sigsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		sigVal := iter.Value()
		field := "definitions.sigs." + name

		sig := ir.Sig{Name: name, Pos: toPos(sigVal.Pos())}
		if sig.Var, err = optionalBool(sigVal, "var"); err != nil {
			return nil, err
		}

		fieldsVal := sigVal.LookupPath(cue.ParsePath("fields"))
		if fieldsVal.Exists() {
			fieldIter, err := fieldsVal.Fields()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for fieldIter.Next() {
				fieldVal := fieldIter.Value()
				isVar, err := optionalBool(fieldVal, "var")
				if err != nil {
					return nil, err
				}
				sig.Fields = append(sig.Fields, ir.Field{
					Sig:  name,
					Name: fieldIter.Label(),
					Var:  isVar,
					Pos:  toPos(fieldVal.Pos()),
				})
			}
		} else if sigVal.IncompleteKind() != cue.StructKind {
			return nil, &CompileError{
				Field:   field,
				Message: "sig must be a struct",
				Pos:     sigVal.Pos(),
			}
		}

		sigs = append(sigs, sig)
	}

	return sigs, nil
}

// parsePreds extracts the predicates of a unit, qualified by its module.
func parsePreds(unit cue.Value, unitName string) ([]*ir.Predicate, error) {
	var preds []*ir.Predicate

	module := ""
	moduleVal := unit.LookupPath(cue.ParsePath("module"))
	if moduleVal.Exists() {
		m, err := moduleVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		module = m
	}

	predsVal := unit.LookupPath(cue.ParsePath("preds"))
	if !predsVal.Exists() {
		return preds, nil
	}

	iter, err := predsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		label := iter.Label()
		predVal := iter.Value()
		field := fmt.Sprintf("%s.preds.%s", unitName, label)

		name := label
		if module != "" {
			name = module + "/" + label
		}
		p := &ir.Predicate{Name: name, Pos: toPos(predVal.Pos())}

		paramsVal := predVal.LookupPath(cue.ParsePath("params"))
		if paramsVal.Exists() {
			if p.Params, err = parseDecls(paramsVal, field+".params"); err != nil {
				return nil, err
			}
		}

		bodyVal := predVal.LookupPath(cue.ParsePath("body"))
		if !bodyVal.Exists() {
			return nil, &CompileError{
				Field:   field + ".body",
				Message: "predicate body is required",
				Pos:     predVal.Pos(),
			}
		}
		if p.Body, err = parseExpr(bodyVal, field+".body"); err != nil {
			return nil, err
		}

		preds = append(preds, p)
	}

	return preds, nil
}

func optionalBool(v cue.Value, key string) (bool, error) {
	b := lookup(v, key)
	if !b.Exists() {
		return false, nil
	}
	out, err := b.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return out, nil
}
