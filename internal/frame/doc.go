// Package frame checks transition predicates for missing frame conditions.
//
// A transition must account for every mutable relation: either it states
// the next-state value (a primed reference) or it declares the relation
// unchanged through the unchanged helper. The checker classifies each
// transition body into changed and unchanged commitments, folds those into
// a per-field coverage table and reports the instances left unaccounted.
//
// The analysis is conservative and syntactic. It never evaluates formulas;
// a report line means "may require a frame condition", not "is wrong".
//
// Pipeline:
//
//	Library (definitions, built once)
//	  -> classify (per transition)
//	  -> resolve into Coverage
//	  -> Report
package frame
