package engine

import (
	"strings"

	"github.com/roach88/traitkit/internal/ir"
)

// Oracle answers facts about nominal types that descriptor structure cannot
// reveal. The engine asks it only about non-primitive ids.
type Oracle interface {
	IsClass(id ir.TypeID) bool
	IsEnum(id ir.TypeID) bool
	IsScopedEnum(id ir.TypeID) bool
	IsUnion(id ir.TypeID) bool
	IsAbstract(id ir.TypeID) bool
	IsFinal(id ir.TypeID) bool
	IsPolymorphic(id ir.TypeID) bool
	IsTrivial(id ir.TypeID) bool
	IsLiteral(id ir.TypeID) bool
	IsEmpty(id ir.TypeID) bool
	IsTemplate(id ir.TypeID) bool
	IsComplete(id ir.TypeID) bool

	// IsBaseOf reports whether base is a proper, possibly indirect, base
	// class of derived.
	IsBaseOf(base, derived ir.TypeID) bool

	// Size returns the storage size of a complete nominal type.
	Size(id ir.TypeID) (int64, bool)

	// Underlying returns the underlying integer type of an enum.
	Underlying(id ir.TypeID) ir.TypeID

	Constructors(id ir.TypeID) []ir.Overload
	Conversions(id ir.TypeID) []ir.Descriptor
	CallOperators(id ir.TypeID) []ir.Overload
	Operators(id ir.TypeID) ir.OperatorSet
	Destructible(id ir.TypeID) bool
}

// NullOracle knows no nominal types. Every answer is false or empty.
type NullOracle struct{}

var _ Oracle = NullOracle{}

func (NullOracle) IsClass(ir.TypeID) bool { return false }
func (NullOracle) IsEnum(ir.TypeID) bool { return false }
func (NullOracle) IsScopedEnum(ir.TypeID) bool { return false }
func (NullOracle) IsUnion(ir.TypeID) bool { return false }
func (NullOracle) IsAbstract(ir.TypeID) bool { return false }
func (NullOracle) IsFinal(ir.TypeID) bool { return false }
func (NullOracle) IsPolymorphic(ir.TypeID) bool { return false }
func (NullOracle) IsTrivial(ir.TypeID) bool { return false }
func (NullOracle) IsLiteral(ir.TypeID) bool { return false }
func (NullOracle) IsEmpty(ir.TypeID) bool { return false }
func (NullOracle) IsTemplate(ir.TypeID) bool { return false }
func (NullOracle) IsComplete(ir.TypeID) bool { return false }
func (NullOracle) IsBaseOf(_, _ ir.TypeID) bool { return false }
func (NullOracle) Size(ir.TypeID) (int64, bool) { return 0, false }
func (NullOracle) Underlying(ir.TypeID) ir.TypeID { return "" }
func (NullOracle) Constructors(ir.TypeID) []ir.Overload { return nil }
func (NullOracle) Conversions(ir.TypeID) []ir.Descriptor { return nil }
func (NullOracle) CallOperators(ir.TypeID) []ir.Overload { return nil }
func (NullOracle) Operators(ir.TypeID) ir.OperatorSet { return 0 }
func (NullOracle) Destructible(ir.TypeID) bool { return false }

// fact forwards a structural tag to the oracle. Primitives are answered
// here: they are trivial (except void) and literal, and nothing else.
func (e *Engine) fact(tag ir.Tag, id ir.TypeID) bool {
	if id == "" {
		return false
	}
	if id.IsPrimitive() {
		switch tag {
		case ir.TagTrivial:
			return id != ir.Void
		case ir.TagLiteral:
			return true
		}
		return false
	}
	switch tag {
	case ir.TagCls:
		return e.oracle.IsClass(id)
	case ir.TagEnum:
		return e.oracle.IsEnum(id)
	case ir.TagUnion:
		return e.oracle.IsUnion(id)
	case ir.TagAbstract:
		return e.oracle.IsAbstract(id)
	case ir.TagFinal:
		return e.oracle.IsFinal(id)
	case ir.TagPoly:
		return e.oracle.IsPolymorphic(id)
	case ir.TagTrivial:
		return e.oracle.IsTrivial(id)
	case ir.TagLiteral:
		return e.oracle.IsLiteral(id)
	case ir.TagEmpty:
		return e.oracle.IsEmpty(id)
	case ir.TagTemp:
		// a template instance is visible in its spelling
		return strings.Contains(string(id), "<") || e.oracle.IsTemplate(id)
	}
	return false
}
