package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/traitkit/internal/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_CompiledCatalog(t *testing.T) {
	types, err := CompileCatalog(compile(t, shapesCatalog))
	require.NoError(t, err)

	assert.Empty(t, Validate(types), "sample catalog should be valid")
}

func TestValidate_Valid(t *testing.T) {
	types := []ir.TypeInfo{
		class("Shape"),
		class("Circle", "Shape"),
		{Name: "ns::Box<int32>", Kind: ir.KindClass, Conversions: []string{"int32 const&"}},
		{Name: "Color", Kind: ir.KindEnum, Underlying: "uint8", Operators: []string{"<"}},
		{Name: "Bits", Kind: ir.KindUnion, Size: 8},
	}
	assert.Empty(t, Validate(types))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		types []ir.TypeInfo
		codes []string
		field string
	}{
		{
			name:  "invalid kind",
			types: []ir.TypeInfo{{Name: "W", Kind: "struct"}},
			codes: []string{ErrInvalidKind},
			field: "W.kind",
		},
		{
			name:  "empty name",
			types: []ir.TypeInfo{{Kind: ir.KindClass}},
			codes: []string{ErrInvalidName},
			field: ".name",
		},
		{
			name:  "primitive name",
			types: []ir.TypeInfo{{Name: "int32", Kind: ir.KindClass}},
			codes: []string{ErrInvalidName},
			field: "int32.name",
		},
		{
			name:  "descriptor as name",
			types: []ir.TypeInfo{{Name: "W*", Kind: ir.KindClass}},
			codes: []string{ErrInvalidName},
			field: "W*.name",
		},
		{
			name:  "duplicate",
			types: []ir.TypeInfo{class("W"), {Name: "W", Kind: ir.KindEnum}},
			codes: []string{ErrDuplicateName},
			field: "types[1].name",
		},
		{
			name:  "unknown base",
			types: []ir.TypeInfo{class("W", "Missing")},
			codes: []string{ErrUnknownBase},
			field: "W.bases",
		},
		{
			name:  "base is an enum",
			types: []ir.TypeInfo{{Name: "E", Kind: ir.KindEnum}, class("W", "E")},
			codes: []string{ErrBaseNotClass},
			field: "W.bases",
		},
		{
			name:  "negative size",
			types: []ir.TypeInfo{{Name: "W", Kind: ir.KindClass, Size: -1}},
			codes: []string{ErrInvalidCount},
			field: "W.size",
		},
		{
			name:  "cycle",
			types: []ir.TypeInfo{class("A", "B"), class("B", "A")},
			codes: []string{ErrCyclicBases},
			field: "A.bases",
		},
		{
			name:  "enum with constructors",
			types: []ir.TypeInfo{{Name: "E", Kind: ir.KindEnum, Constructors: []ir.Signature{{}}}},
			codes: []string{ErrFieldNotAllowed},
			field: "E.constructors",
		},
		{
			name:  "scoped class",
			types: []ir.TypeInfo{{Name: "W", Kind: ir.KindClass, Scoped: true}},
			codes: []string{ErrFieldNotAllowed},
			field: "W.scoped",
		},
		{
			name:  "union with bases",
			types: []ir.TypeInfo{class("A"), {Name: "U", Kind: ir.KindUnion, Bases: []ir.TypeID{"A"}}},
			codes: []string{ErrFieldNotAllowed},
			field: "U.bases",
		},
		{
			name:  "float underlying",
			types: []ir.TypeInfo{{Name: "E", Kind: ir.KindEnum, Underlying: "float32"}},
			codes: []string{ErrInvalidUnderlying},
			field: "E.underlying",
		},
		{
			name: "bad parameter",
			types: []ir.TypeInfo{{Name: "W", Kind: ir.KindClass, Constructors: []ir.Signature{
				{Params: []string{"int32", "int32&&&"}},
			}}},
			codes: []string{ErrInvalidDescriptor},
			field: "W.constructors[0].params[1]",
		},
		{
			name: "void parameter",
			types: []ir.TypeInfo{{Name: "W", Kind: ir.KindClass, CallOperators: []ir.Signature{
				{Params: []string{"void"}},
			}}},
			codes: []string{ErrInvalidDescriptor},
			field: "W.call_operators[0].params[0]",
		},
		{
			name: "too many defaults",
			types: []ir.TypeInfo{{Name: "W", Kind: ir.KindClass, Constructors: []ir.Signature{
				{Params: []string{"int32"}, Defaults: 2},
			}}},
			codes: []string{ErrInvalidCount},
			field: "W.constructors[0].defaults",
		},
		{
			name:  "conversion to array",
			types: []ir.TypeInfo{{Name: "W", Kind: ir.KindClass, Conversions: []string{"int32[3]"}}},
			codes: []string{ErrInvalidDescriptor},
			field: "W.conversions[0]",
		},
		{
			name:  "bad operator",
			types: []ir.TypeInfo{{Name: "W", Kind: ir.KindClass, Operators: []string{"<=>"}}},
			codes: []string{ErrInvalidOperator},
			field: "W.operators[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.types)
			require.Equal(t, tt.codes, codes(errs), "errors: %v", errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	types := []ir.TypeInfo{
		{Name: "W", Kind: ir.KindClass, Size: -8, Bases: []ir.TypeID{"Missing"}, Operators: []string{"!="}},
	}

	assert.Equal(t, []string{ErrInvalidCount, ErrUnknownBase, ErrInvalidOperator}, codes(Validate(types)))
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "W.size", Message: "size must not be negative, got -1", Code: ErrInvalidCount}
	assert.Equal(t, "[E105] W.size: size must not be negative, got -1", err.Error())

	err.Line = 3
	assert.Equal(t, "[E105] line 3: W.size: size must not be negative, got -1", err.Error())
}
