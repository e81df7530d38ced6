// Package ir provides the type descriptor model shared by every traitkit
// package.
//
// ir imports nothing internal. All other internal packages import ir.
//
// Key design constraints:
//   - Descriptors are immutable values; every operation returns a new one
//   - Constructors canonicalize, so Equal descriptors have equal Key()
//   - Tags are a closed set; only flag tags OR-combine
//   - Content-addressed ids use RFC 8785 canonical JSON, never floats
package ir
