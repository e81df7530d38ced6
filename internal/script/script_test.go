package script

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/traitkit/internal/catalog"
	"github.com/roach88/traitkit/internal/engine"
	"github.com/roach88/traitkit/internal/ir"
	"github.com/roach88/traitkit/internal/testutil"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	reg, err := catalog.New(testutil.SampleCatalog())
	require.NoError(t, err)
	return engine.New(engine.WithOracle(reg))
}

func TestParseLine(t *testing.T) {
	yes := true
	d := ir.MustParse

	tests := []struct {
		text string
		want ir.Query
	}{
		{
			text: "test REF int32&",
			want: ir.Query{Kind: ir.QueryTest, Tag: ir.TagRef, Type: d("int32&")},
		},
		{
			text: "test CALL Widget&; int32; float64",
			want: ir.Query{Kind: ir.QueryTest, Tag: ir.TagCall, Type: d("Widget&"), Args: []ir.Descriptor{d("int32"), d("float64")}},
		},
		{
			text: "transform const|ref int32",
			want: ir.Query{Kind: ir.QueryTransform, Tag: ir.TagConst | ir.TagRef, Type: d("int32")},
		},
		{
			text: "transform ARR char const; 0",
			want: ir.Query{Kind: ir.QueryTransform, Tag: ir.TagArr, Type: d("char const"), Extents: []ir.Extent{0}},
		},
		{
			text: "ptr+ int32 const; 3",
			want: ir.Query{Kind: ir.QueryPointers, Type: d("int32 const"), Depth: 3},
		},
		{
			text: "ptr- int32**; 1",
			want: ir.Query{Kind: ir.QueryPointers, Type: d("int32**"), Depth: 1, Remove: true},
		},
		{
			text: "arr int8; 2; []; unbounded",
			want: ir.Query{Kind: ir.QueryArrays, Type: d("int8"), Extents: []ir.Extent{2, ir.Unbounded, ir.Unbounded}},
		},
		{
			text: "size int64",
			want: ir.Query{Kind: ir.QuerySize, Type: d("int64")},
		},
		{
			text: "size int32[0]; true",
			want: ir.Query{Kind: ir.QuerySize, Type: d("int32[0]"), Condition: &yes},
		},
		{
			text: "onlyif int32 const&; true",
			want: ir.Query{Kind: ir.QueryOnlyIf, Type: d("int32 const&"), Condition: &yes},
		},
		{
			text: "ifelse int32; float64; true",
			want: ir.Query{Kind: ir.QueryIfOrElse, Type: d("int32"), Args: []ir.Descriptor{d("float64")}, Condition: &yes},
		},
		{
			text: "catch Shape const&; Circle",
			want: ir.Query{Kind: ir.QueryCatch, Type: d("Shape const&"), Args: []ir.Descriptor{d("Circle")}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			st, err := ParseLine(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), st.Query.String())
			assert.Equal(t, tt.want.Kind, st.Query.Kind)
			assert.Nil(t, st.Expect)
		})
	}
}

func TestParseLine_Expectations(t *testing.T) {
	tests := []struct {
		text string
		want ir.Outcome
	}{
		{"test INT int32 => true", ir.BoolOutcome(true)},
		{"test INT float32 => false", ir.BoolOutcome(false)},
		{"transform REF int32 => int32&", ir.TypeOutcome(ir.MustParse("int32&"))},
		{"transform CONST int32* => int32* const", ir.TypeOutcome(ir.MustParse("int32* const"))},
		{"size int64 => 8", ir.SizeOutcome(8)},
		{"ptr- int32; 1 => error(DEPTH_UNDERFLOW)", ir.ErrorOutcome("DEPTH_UNDERFLOW", "")},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			st, err := ParseLine(tt.text)
			require.NoError(t, err)
			require.NotNil(t, st.Expect)
			assert.Equal(t, tt.want, *st.Expect)
		})
	}
}

func TestParseLine_Errors(t *testing.T) {
	tests := []string{
		"",
		"frobnicate int32",
		"test",
		"test REF",
		"test NOPE int32",
		"test REF int32[",
		"transform ARR int32; 1; 2",
		"transform ARR int32; five",
		"ptr+ int32",
		"ptr+ int32; two",
		"arr int32; x",
		"size int32; maybe",
		"size int32; true; false",
		"catch Shape&",
		"onlyif int32",
		"onlyif int32; perhaps",
		"ifelse int32; true",
		"ifelse int32; float64[; true",
		"test INT int32 =>",
		"test INT int32 => error()",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			_, err := ParseLine(text)
			require.Error(t, err)

			var se *SyntaxError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestParse(t *testing.T) {
	src := `# leading comment

test REF int32& => true
// another comment
   size int64
transform PTR int32 => int32*`

	s, err := Parse(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, s.Statements, 3)

	assert.Equal(t, "test REF int32&", s.Statements[0].Query.String())
	assert.Equal(t, "size int64", s.Statements[1].Query.String())
	assert.Equal(t, "transform PTR int32", s.Statements[2].Query.String())
	assert.Nil(t, s.Statements[1].Expect)

	assert.Greater(t, s.Statements[0].Line, 0)
	assert.Less(t, s.Statements[0].Line, s.Statements[1].Line)
	assert.Less(t, s.Statements[1].Line, s.Statements[2].Line)
}

func TestParse_Empty(t *testing.T) {
	s, err := Parse(context.Background(), "  \n\n")
	require.NoError(t, err)
	assert.Empty(t, s.Statements)
}

func TestParse_SyntaxError(t *testing.T) {
	src := "test REF int32&\nsize int32; maybe\ntest INT int32\n"

	_, err := Parse(context.Background(), src)
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "size int32; maybe", se.Text)
	assert.Greater(t, se.Line, 0)
	assert.Contains(t, err.Error(), "invalid condition")
}

func TestRun(t *testing.T) {
	src, err := os.ReadFile("testdata/shapes.tks")
	require.NoError(t, err)

	s, err := Parse(context.Background(), string(src))
	require.NoError(t, err)
	require.Len(t, s.Statements, 14)

	results, err := Run(context.Background(), newEngine(t), s)
	require.NoError(t, err)
	require.Len(t, results, 14)

	for _, r := range results {
		assert.False(t, r.Failed(), "%s => want %s, got %s", r.Query, r.Expect, r.Outcome)
	}
	assert.Equal(t, 0, Failures(results))
}

func TestRun_Failures(t *testing.T) {
	s, err := Parse(context.Background(), "test INT int32 => false\nsize int64 => 4\ntest INT int8\n")
	require.NoError(t, err)

	results, err := Run(context.Background(), newEngine(t), s)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Failed())
	assert.Equal(t, "true", results[0].Outcome.String())
	assert.True(t, results[1].Failed())
	assert.False(t, results[2].Failed(), "no expectation never fails")
	assert.Equal(t, 2, Failures(results))
}

type brokenMemo struct{}

func (brokenMemo) Lookup(context.Context, string) (ir.Outcome, bool, error) {
	return ir.Outcome{}, false, errors.New("disk on fire")
}

func (brokenMemo) Save(context.Context, string, ir.Query, ir.Outcome) error { return nil }

func TestRun_MemoError(t *testing.T) {
	s, err := Parse(context.Background(), "test INT int32\n")
	require.NoError(t, err)

	_, err = Run(context.Background(), engine.New(engine.WithMemo(brokenMemo{})), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(ir.ErrorOutcome("NO_SIZE", ""), ir.ErrorOutcome("NO_SIZE", "void has no size")))
	assert.False(t, Matches(ir.ErrorOutcome("NO_SIZE", ""), ir.ErrorOutcome("ILL_FORMED", "")))
	assert.False(t, Matches(ir.SizeOutcome(1), ir.BoolOutcome(true)))
	assert.True(t, Matches(ir.BoolOutcome(false), ir.BoolOutcome(false)))
}
