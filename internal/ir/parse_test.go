package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"int32",
		"void",
		"int32 const",
		"int32 const volatile",
		"int32*",
		"int32***",
		"int32* const*",
		"int32** const",
		"int32&",
		"int32 const&",
		"int32&&",
		"int32*&",
		"int32[5]",
		"int32[0]",
		"int32[]",
		"int32[2][3]",
		"int32[][3]",
		"int32 const[4]",
		"int32[3]*",
		"int32*[3]",
		"int32[3]*[2]",
		"int32()",
		"int32(float64)",
		"int32(float64, ...)",
		"void(...)",
		"int32(float64)*",
		"int32*(int8)",
		"int32(float64)*(int8)",
		"void(int32(int8)*, bool)",
		"int32 Shape::*",
		"int32 Shape::**",
		"void(int32) Shape::*",
		"ns::Shape&",
		"Vec<int32, 3>[2]",
		"outer::Inner ns::Owner::*",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			d, err := Parse(in)
			require.NoError(t, err)
			assert.Equal(t, in, d.String())

			again, err := Parse(d.String())
			require.NoError(t, err)
			assert.True(t, d.Equal(again))
		})
	}
}

func TestParseNormalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"const int32", "int32 const"},
		{"volatile const int32", "int32 const volatile"},
		{"int32[3] const", "int32 const[3]"},
		{"int32 * *", "int32**"},
		{"void(void)", "void()"},
		{"void(int32[4], int32())", "void(int32*, int32()*)"},
		{"void(int32 const)", "void(int32)"},
		{"  int32 [ 2 ] [ 3 ]  ", "int32[2][3]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in  string
		col int
	}{
		{"", 1},
		{"*", 1},
		{"int32&*", 7},
		{"int32&&&", 8},
		{"void&", 5},
		{"int32&[3]", 7},
		{"int32(", 7},
		{"int32[3", 8},
		{"int32 Shape", 12},
		{"int32 int8::*", 7},
		{"int32()()", 8},
		{"int32& const", 8},
		{"const const int32", 7},
		{"Vec<int32", 4},
		{"int32)", 6},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.col, pe.Col, pe.Msg)
			assert.Equal(t, tt.in, pe.Input)
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("int32&&&") })
}
