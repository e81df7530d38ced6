package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/traitkit/internal/ir"
)

func TestDispatch_MostSpecificWins(t *testing.T) {
	e := New()
	rs := &ruleSet[string]{
		tag: ir.TagInt,
		rules: []rule[string]{
			{"int32", category([]ir.TypeID{ir.Int32}), always("int32")},
			{"any", pattern{}, always("any")},
			{"const", pattern{quals: ir.Const}, always("const")},
			{"value", exactly(ir.ShapeValue), always("value")},
		},
		fallback: always("fallback"),
	}
	require.NoError(t, rs.checkRanks())

	tests := []struct {
		typ  string
		want string
	}{
		{"int32", "int32"},
		{"float64", "value"},
		{"int32 const", "const"},
		{"int32*", "any"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, rs.dispatch(e, d(tt.typ), nil))
		})
	}
}

func TestDispatch_Fallback(t *testing.T) {
	rs := &ruleSet[string]{
		tag:      ir.TagPtr,
		rules:    []rule[string]{{"pointer", exactly(ir.ShapePointer), always("pointer")}},
		fallback: always("fallback"),
	}
	assert.Equal(t, "fallback", rs.dispatch(New(), d("int32"), nil))
}

func TestCheckRanks(t *testing.T) {
	tests := []struct {
		name    string
		a, b    pattern
		wantErr bool
	}{
		{"overlapping shapes", exactly(ir.ShapePointer, ir.ShapeValue), exactly(ir.ShapeValue, ir.ShapeLRef), true},
		{"disjoint shapes", exactly(ir.ShapePointer), exactly(ir.ShapeValue), false},
		{"different ranks", exactly(ir.ShapeValue), exactly(ir.ShapeValue, ir.ShapeLRef), false},
		{"const and volatile", pattern{quals: ir.Const}, pattern{quals: ir.Volatile}, true},
		{"exact const and exact volatile", pattern{quals: ir.Const, exact: true}, pattern{quals: ir.Volatile, exact: true}, false},
		{"disjoint bases", category([]ir.TypeID{ir.Int8}), category([]ir.TypeID{ir.Int16}), false},
		{"same base", category([]ir.TypeID{ir.Int8, ir.Int16}), category([]ir.TypeID{ir.Int16}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &ruleSet[bool]{
				tag:      ir.TagInt,
				rules:    []rule[bool]{{"a", tt.a, always(true)}, {"b", tt.b, always(false)}},
				fallback: always(false),
			}
			err := rs.checkRanks()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuiltinTablesAreUnambiguous(t *testing.T) {
	for tag, rs := range predicateRules {
		assert.NoError(t, rs.checkRanks(), tag.String())
	}
	assert.NoError(t, slimRules.checkRanks())
	assert.NoError(t, sizeRules.checkRanks())
}

func TestCombinators(t *testing.T) {
	assert.True(t, AllIsTrue())
	assert.True(t, AllIsTrue(true, true))
	assert.False(t, AllIsTrue(true, false))
	assert.False(t, OneIsTrue())
	assert.True(t, OneIsTrue(false, true))
	assert.False(t, OneIsTrue(false, false))
	assert.True(t, AlwaysTrue.V())
	assert.False(t, AlwaysFalse.V())
}
