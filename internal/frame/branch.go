package frame

// compareBranches checks that both arms of a conditional commit the same
// set of expressions. The first asymmetry found in either direction yields
// a single diagnostic listing both arms in full.
func compareBranches(then, els Commitments) (Diagnostic, bool, error) {
	thenKeys, err := then.keys()
	if err != nil {
		return Diagnostic{}, false, err
	}
	elseKeys, err := els.keys()
	if err != nil {
		return Diagnostic{}, false, err
	}

	if subset(thenKeys, elseKeys) && subset(elseKeys, thenKeys) {
		return Diagnostic{}, false, nil
	}
	return Diagnostic{
		Kind: DiagBranchMismatch,
		Then: &then,
		Else: &els,
	}, true, nil
}

func subset(a, b map[string]bool) bool {
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
