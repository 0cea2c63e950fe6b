// Package ir provides the formula model consumed by the frame checker.
//
// This package contains the expression tree, the sig/field/predicate
// metadata and the canonical encoding used to compare expressions. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Expr is a closed sum type sealed by an unexported method
//   - Nodes are immutable once built; rewrites return new nodes
//   - Source positions never take part in structural equality
//   - Structural identity is the canonical key (see Key)
package ir
