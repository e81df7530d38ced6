// Package harness runs conformance scenarios against the trait engine.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: shapes_hierarchy
//	description: "Inheritance facts flow into SUPER, CONVERT and catch"
//	catalog: ../catalogs/shapes
//	session_id: shapes-session
//	steps:
//	  - query: test SUPER Shape; Circle
//	    expect: "true"
//	  - query: transform CONST|REF int32 => int32 const&
//	assertions:
//	  - type: trace_contains
//	    query: test SUPER Shape; Circle
//	    outcome: "true"
//	  - type: stored_count
//	    count: 2
//
// Each step is one query script line (see package script). Its expectation
// is written in expect or inline after "=>".
//
// # Assertion Types
//
//   - trace_contains: a step ran the query, optionally with the outcome
//   - trace_order: queries ran in the given order
//   - trace_count: exactly count steps produced the outcome
//   - stored_count: exactly count evaluations reached the memo store
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite store under a fixed
// session id, so traces compare byte for byte against golden files in
// testdata/golden. Repeating a query within a scenario is answered from the
// memo and does not add a stored evaluation.
package harness
