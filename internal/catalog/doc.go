// Package catalog holds the nominal type declarations the engine cannot
// derive from descriptor structure: which names are classes, enums or
// unions, how classes inherit, and which constructors, conversions and
// operators they declare.
//
// A Registry is built from compiled, validated TypeInfo records and
// implements engine.Oracle. Base closures and parsed overloads are computed
// once in New, so lookups never parse descriptor text.
package catalog
