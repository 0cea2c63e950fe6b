// Package harness runs framecheck scenarios: a spec directory, an optional
// config, and assertions about the reports the checker produces.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: fs_chmod
//	description: "chmod leaves every other field unframed"
//	spec: testdata/specs/fs
//	config: testdata/configs/strict.yaml   # optional
//	select: [chmod, write]                 # optional, default all
//	assertions:
//	  - type: missing_field
//	    predicate: chmod
//	    field: Inode.size
//	    tokens: [Inode]
//	  - type: clean
//	    predicate: write
//	  - type: stored
//	    predicate: chmod
//	    status: warnings
//
// Assertion types:
//   - clean, skipped: the report for predicate has that status
//   - missing_field: the report names field, optionally with exactly tokens
//   - missing_sets: the report names missing type-level sets
//   - branch_mismatch: a transition or definition flagged its if/else arms
//   - error: the run stopped on a structural error, optionally with code
//   - stored: the recorded run holds a report for predicate with status
//
// A run that stops on a structural error fails the scenario unless an
// error assertion expects it.
//
// Each scenario runs against a fresh in-memory store. The rendered output
// (Result.Text) is what golden files capture.
package harness
