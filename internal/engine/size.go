package engine

import (
	"math"

	"github.com/roach88/traitkit/internal/ir"
)

// Size is the outcome of a storage size query. It is either a byte count
// or the reason no size is defined; callers must check before using it.
type Size struct {
	bytes int64
	err   error
}

// Defined reports whether a size was produced.
func (s Size) Defined() bool { return s.err == nil }

// Bytes returns the size, or the precondition error when undefined.
func (s Size) Bytes() (int64, error) { return s.bytes, s.err }

// Err returns nil for a defined size.
func (s Size) Err() error { return s.err }

// DefaultPointerSize is the size of object and data member pointers.
const DefaultPointerSize = 8

var primitiveSizes = map[ir.TypeID]int64{
	ir.Bool: 1, ir.Char: 1, ir.Char8: 1, ir.Int8: 1, ir.Uint8: 1,
	ir.Char16: 2, ir.Int16: 2, ir.Uint16: 2,
	ir.Char32: 4, ir.WChar: 4, ir.Int32: 4, ir.Uint32: 4, ir.Float32: 4,
	ir.Int64: 8, ir.Uint64: 8, ir.Float64: 8,
	ir.Int128: 16, ir.Uint128: 16, ir.Float128: 16,
}

var sizeRules *ruleSet[Size]

func init() {
	noSize := func(_ *Engine, d ir.Descriptor, _ []ir.Descriptor) Size {
		return Size{err: newPreconditionError(ErrCodeNoSize, d, "%s has no storage size", d)}
	}
	sizeRules = &ruleSet[Size]{
		tag: ir.TagSize,
		rules: []rule[Size]{
			{"void", pattern{shapes: []ir.Shape{ir.ShapeValue}, bases: []ir.TypeID{ir.Void}}, noSize},
			{"value", exactly(ir.ShapeValue), (*Engine).valueSize},
			{"function", exactly(ir.ShapeFunction), noSize},
			{"unbounded array", exactly(ir.ShapeArrayUnbounded), noSize},
			{"incomplete array", exactly(ir.ShapeArrayIncomplete), always(Size{})},
			{"bounded array", exactly(ir.ShapeArray), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) Size {
				elem := e.size(d.Elem())
				if !elem.Defined() {
					return elem
				}
				n := int64(d.Extent())
				if elem.bytes > 0 && n > math.MaxInt64/elem.bytes {
					return Size{err: newPreconditionError(ErrCodeNoSize, d, "size of %s overflows int64", d)}
				}
				return Size{bytes: elem.bytes * n}
			}},
			{"pointer", exactly(ir.ShapePointer), func(e *Engine, _ ir.Descriptor, _ []ir.Descriptor) Size {
				return Size{bytes: e.pointerSize}
			}},
			{"member pointer", exactly(ir.ShapeMember), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) Size {
				if d.Elem().IsFunction() {
					return Size{bytes: 2 * e.pointerSize}
				}
				return Size{bytes: e.pointerSize}
			}},
			{"reference", exactly(referenceShapes...), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) Size {
				return e.size(d.Elem())
			}},
		},
		fallback: noSize,
	}
	if err := sizeRules.checkRanks(); err != nil {
		panic("engine: " + err.Error())
	}
}

func (e *Engine) valueSize(d ir.Descriptor, _ []ir.Descriptor) Size {
	id := d.Base()
	if n, ok := primitiveSizes[id]; ok {
		return Size{bytes: n}
	}
	if e.isEnumValue(d) {
		if u := e.oracle.Underlying(id); u != "" {
			return Size{bytes: primitiveSizes[u]}
		}
		return Size{bytes: primitiveSizes[ir.Int32]}
	}
	if n, ok := e.oracle.Size(id); ok {
		return Size{bytes: n}
	}
	return Size{err: newPreconditionError(ErrCodeNoSize, d, "size of %s is unknown", id)}
}

func (e *Engine) size(d ir.Descriptor) Size {
	return sizeRules.dispatch(e, d, nil)
}

// MemorySize is MemorySizeIf with the condition COMPLET(d).
func (e *Engine) MemorySize(d ir.Descriptor) Size {
	return e.MemorySizeIf(d, e.Test(ir.TagComplet, d))
}

// MemorySizeIf returns the storage size of d when cond holds. A false
// condition is rejected with ErrCodeConditionFailed without inspecting d;
// a true condition on a type with no size gives ErrCodeNoSize. The
// incomplete array T[0] has size zero.
func (e *Engine) MemorySizeIf(d ir.Descriptor, cond bool) Size {
	if !cond {
		return Size{err: newPreconditionError(ErrCodeConditionFailed, d, "size requested but condition is false")}
	}
	return e.size(d)
}
