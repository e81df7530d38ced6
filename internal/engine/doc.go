// Package engine implements the traitkit predicate and transform engine.
//
// The engine answers questions about type descriptors: boolean tests
// (is this a const lvalue reference? does A convert to B?), rewrites
// (add a pointer level, strip cv and references, decay), and storage
// sizes. Facts about nominal types come from an Oracle; everything else
// is derived from descriptor structure.
//
// ARCHITECTURE:
//
// Ranked Rule Tables:
// Each tag owns a ruleSet. A rule pairs a shape pattern with an evaluator,
// and dispatch picks the single most specific matching rule by rank.
// Tables are checked at init: two overlapping rules of equal rank panic,
// so declaration order never decides an answer.
//
// Total and Partial Operations:
// Test and the qualifier/REMOVE forms of Transform are total. ArrayOf,
// PointerLevels, ArrayLevels, OnlyIf and MemorySize are partial; they
// check their precondition before rewriting anything and return a
// *PreconditionError with a stable code.
//
// Memoization:
// Results are pure, so the in-process Cache keys on the full input tuple
// and is never invalidated. EvaluateContext additionally consults a
// durable Memo keyed by ir.EvaluationID (query plus pointer size).
package engine
