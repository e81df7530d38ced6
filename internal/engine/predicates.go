package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/traitkit/internal/ir"
)

// Primitive categories. Membership is exact: a qualified or user-defined
// type never belongs to a category.
var (
	intTypes = []ir.TypeID{
		ir.Int8, ir.Uint8, ir.Int16, ir.Uint16, ir.Int32, ir.Uint32,
		ir.Int64, ir.Uint64, ir.Int128, ir.Uint128,
	}
	fltTypes  = []ir.TypeID{ir.Float32, ir.Float64, ir.Float128}
	chrTypes  = []ir.TypeID{ir.Char, ir.Int8, ir.Uint8, ir.Char8, ir.Char16, ir.Char32, ir.WChar}
	boolTypes = []ir.TypeID{ir.Bool}
)

var (
	arrayShapes       = []ir.Shape{ir.ShapeArray, ir.ShapeArrayIncomplete, ir.ShapeArrayUnbounded}
	qualifiableShapes = []ir.Shape{ir.ShapePointer, ir.ShapeValue, ir.ShapeArray, ir.ShapeArrayIncomplete, ir.ShapeArrayUnbounded}
	referenceShapes   = []ir.Shape{ir.ShapeLRef, ir.ShapeRRef}
)

type boolRule = rule[bool]

// predicateRules maps each single tag to its rule table. Built in init so
// rule bodies may call back into Test.
var predicateRules map[ir.Tag]*ruleSet[bool]

func init() {
	predicateRules = buildPredicateRules()
	for _, rs := range predicateRules {
		if err := rs.checkRanks(); err != nil {
			panic(fmt.Sprintf("engine: %v", err))
		}
	}
}

func exactly(shapes ...ir.Shape) pattern { return pattern{shapes: shapes} }

func category(ids []ir.TypeID) pattern {
	return pattern{shapes: []ir.Shape{ir.ShapeValue}, bases: ids, exact: true}
}

func oracleRule(tag ir.Tag) boolRule {
	return boolRule{"oracle", pattern{}, func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
		return e.fact(tag, d.Base())
	}}
}

func buildPredicateRules() map[ir.Tag]*ruleSet[bool] {
	yes, no := always(AlwaysTrue.V()), always(AlwaysFalse.V())

	tables := map[ir.Tag][]boolRule{
		ir.TagConst: {{"const", pattern{quals: ir.Const}, yes}},
		ir.TagVol:   {{"volatile", pattern{quals: ir.Volatile}, yes}},
		ir.TagRef:   {{"lvalue reference", exactly(ir.ShapeLRef), yes}},
		ir.TagRVal:  {{"rvalue reference", exactly(ir.ShapeRRef), yes}},
		ir.TagPtr:   {{"pointer", exactly(ir.ShapePointer), yes}},
		ir.TagArr:   {{"array", exactly(arrayShapes...), yes}},

		ir.TagFunc:   {{"function", exactly(ir.ShapeFunction), yes}},
		ir.TagMember: {{"member pointer", exactly(ir.ShapeMember), yes}},
		ir.TagMeth: {{"member pointer", exactly(ir.ShapeMember), func(_ *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
			return d.Elem().IsFunction()
		}}},
		ir.TagPrim: {{"value", exactly(ir.ShapeValue), func(_ *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
			return d.Base().IsPrimitive()
		}}},
		ir.TagObj: {{"value", exactly(ir.ShapeValue), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
			return e.isClassValue(d)
		}}},

		ir.TagInt:     {{"integer", category(intTypes), yes}},
		ir.TagFlt:     {{"floating", category(fltTypes), yes}},
		ir.TagChr:     {{"character", category(chrTypes), yes}},
		ir.TagBoolean: {{"boolean", category(boolTypes), yes}},
		ir.TagVoid:    {{"void", category([]ir.TypeID{ir.Void}), yes}},

		ir.TagStr: {
			{"pointer", exactly(ir.ShapePointer), isCharSequence},
			{"sized array", exactly(ir.ShapeArray, ir.ShapeArrayIncomplete), isCharSequence},
			{"unbounded array", exactly(ir.ShapeArrayUnbounded), no},
		},

		ir.TagComplet: {
			{"void", pattern{shapes: []ir.Shape{ir.ShapeValue}, bases: []ir.TypeID{ir.Void}}, no},
			{"value", exactly(ir.ShapeValue), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
				return e.completeValue(d)
			}},
			{"array", exactly(arrayShapes...), yes},
			{"array without bound", exactly(ir.ShapeArrayIncomplete, ir.ShapeArrayUnbounded), no},
			{"indirection", exactly(ir.ShapePointer, ir.ShapeMember), yes},
			{"reference", exactly(referenceShapes...), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
				return e.Test(ir.TagComplet, d.Elem())
			}},
			{"function", exactly(ir.ShapeFunction), no},
		},

		ir.TagSame: {{"any", pattern{}, func(_ *Engine, d ir.Descriptor, args []ir.Descriptor) bool {
			return len(args) == 1 && d.Equal(args[0])
		}}},
		ir.TagSuper: {{"any", pattern{}, func(e *Engine, d ir.Descriptor, args []ir.Descriptor) bool {
			return len(args) == 1 && e.isSuper(d, args[0])
		}}},
		ir.TagConvert: {{"any", pattern{}, func(e *Engine, d ir.Descriptor, args []ir.Descriptor) bool {
			return len(args) == 1 && e.converts(d, args[0], true)
		}}},
		ir.TagCtor: {{"any", pattern{}, func(e *Engine, d ir.Descriptor, args []ir.Descriptor) bool {
			return e.constructible(d, noArgs(args))
		}}},
		ir.TagCall: {{"any", pattern{}, func(e *Engine, d ir.Descriptor, args []ir.Descriptor) bool {
			return e.callable(d, noArgs(args))
		}}},
		ir.TagAssign: {{"any", pattern{}, func(e *Engine, d ir.Descriptor, args []ir.Descriptor) bool {
			return e.assignable(d, args)
		}}},

		ir.TagEq: {
			{"decays to pointer", exactly(ir.ShapePointer, ir.ShapeMember, ir.ShapeFunction, ir.ShapeArray, ir.ShapeArrayIncomplete, ir.ShapeArrayUnbounded), yes},
			{"reference", exactly(referenceShapes...), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
				return e.Test(ir.TagEq, d.Elem())
			}},
			{"value", exactly(ir.ShapeValue), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
				return e.comparableValue(d, ir.OpEqual)
			}},
		},
		ir.TagLt: {
			{"decays to pointer", exactly(ir.ShapePointer, ir.ShapeFunction, ir.ShapeArray, ir.ShapeArrayIncomplete, ir.ShapeArrayUnbounded), yes},
			{"reference", exactly(referenceShapes...), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
				return e.Test(ir.TagLt, d.Elem())
			}},
			{"value", exactly(ir.ShapeValue), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
				return e.comparableValue(d, ir.OpLess)
			}},
		},
		ir.TagDtor: {
			{"void", pattern{shapes: []ir.Shape{ir.ShapeValue}, bases: []ir.TypeID{ir.Void}}, no},
			{"indirection", exactly(ir.ShapePointer, ir.ShapeMember), yes},
			{"value", exactly(ir.ShapeValue), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
				return d.Base().IsPrimitive() || e.oracle.Destructible(d.Base())
			}},
		},

		ir.TagSlim: {
			{"reference", exactly(referenceShapes...), no},
			{"qualified", pattern{shapes: qualifiableShapes, anyQuals: true}, no},
			{"pointer", exactly(ir.ShapePointer), slimElem},
			{"array", exactly(arrayShapes...), slimElem},
		},

		ir.TagSize: {{"any", pattern{}, func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
			return e.MemorySize(d).Defined()
		}}},
	}

	for _, tag := range []ir.Tag{
		ir.TagCls, ir.TagEnum, ir.TagUnion, ir.TagAbstract, ir.TagFinal,
		ir.TagPoly, ir.TagTrivial, ir.TagLiteral, ir.TagEmpty, ir.TagTemp,
	} {
		tables[tag] = []boolRule{oracleRule(tag)}
	}

	out := make(map[ir.Tag]*ruleSet[bool], len(tables))
	for tag, rules := range tables {
		fallback := no
		if tag == ir.TagSlim {
			fallback = yes
		}
		out[tag] = &ruleSet[bool]{tag: tag, rules: rules, fallback: fallback}
	}
	return out
}

// isCharSequence is STR for a pointer or sized array: the element, cv
// stripped, is a character type.
func isCharSequence(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
	return e.Test(ir.TagChr, d.Elem().WithQualifiers(0))
}

func slimElem(e *Engine, d ir.Descriptor, _ []ir.Descriptor) bool {
	return e.Test(ir.TagSlim, d.Elem())
}

// noArgs treats a single unqualified void argument as an empty list, the
// way a void parameter list means no parameters.
func noArgs(args []ir.Descriptor) []ir.Descriptor {
	if len(args) == 1 && args[0].IsVoid() && args[0].Qualifiers() == 0 {
		return nil
	}
	return args
}

// Test evaluates the predicate tag on d. Relational tags take their other
// operands in args. Test is total: an unmatched descriptor, an unknown tag
// or a tag containing REMOVE yields false.
//
// A combination of flag tags holds when every component holds, so
// Test(CONST|REF, d) is AllIsTrue(Test(CONST, d), Test(REF, d)).
func (e *Engine) Test(tag ir.Tag, d ir.Descriptor, args ...ir.Descriptor) bool {
	if d.IsZero() {
		return false
	}
	key := cacheKey("test", tag, d, args)
	if v, ok := e.cacheGet(key); ok {
		return v.(bool)
	}
	v := e.test(tag, d, args)
	e.cachePut(key, v)
	return v
}

func (e *Engine) test(tag ir.Tag, d ir.Descriptor, args []ir.Descriptor) bool {
	if tag.IsCombinable() {
		if tag.Has(ir.TagRemove) {
			return false
		}
		if flags := tag.Flags(); len(flags) > 1 {
			results := make([]bool, len(flags))
			for i, f := range flags {
				results[i] = e.Test(f, d, args...)
			}
			return AllIsTrue(results...)
		}
	}
	rs, ok := predicateRules[tag]
	if !ok {
		e.logger.Debug("no predicate for tag", "tag", tag)
		return false
	}
	return rs.dispatch(e, d, args)
}

func (e *Engine) isClassValue(d ir.Descriptor) bool {
	return d.Shape() == ir.ShapeValue && !d.Base().IsPrimitive() && e.oracle.IsClass(d.Base())
}

// isRecordValue covers unions as well as classes.
func (e *Engine) isRecordValue(d ir.Descriptor) bool {
	return e.isClassValue(d) ||
		(d.Shape() == ir.ShapeValue && !d.Base().IsPrimitive() && e.oracle.IsUnion(d.Base()))
}

func (e *Engine) isEnumValue(d ir.Descriptor) bool {
	return d.Shape() == ir.ShapeValue && !d.Base().IsPrimitive() && e.oracle.IsEnum(d.Base())
}

func isArithmetic(d ir.Descriptor) bool {
	if d.Shape() != ir.ShapeValue {
		return false
	}
	id := d.Base()
	return OneIsTrue(
		slices.Contains(intTypes, id),
		slices.Contains(fltTypes, id),
		slices.Contains(chrTypes, id),
		id == ir.Bool,
	)
}

func (e *Engine) completeValue(d ir.Descriptor) bool {
	if d.Base().IsPrimitive() {
		return true
	}
	return e.oracle.IsComplete(d.Base())
}

func (e *Engine) comparableValue(d ir.Descriptor, op ir.OperatorSet) bool {
	switch {
	case d.IsVoid():
		return false
	case isArithmetic(d), e.isEnumValue(d):
		return true
	case e.isRecordValue(d):
		return e.oracle.Operators(d.Base())&op != 0
	}
	return false
}
