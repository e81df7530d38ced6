package engine

import (
	"testing"

	"github.com/roach88/traitkit/internal/ir"
)

func TestTest_Super(t *testing.T) {
	runTests(t, newTestEngine(), ir.TagSuper, []testCase{
		{typ: "Shape", args: []string{"Circle"}, want: true},
		{typ: "Shape const", args: []string{"Square"}, want: true},
		{typ: "Circle", args: []string{"Circle"}, want: true},
		{typ: "Circle", args: []string{"Shape"}, want: false},
		{typ: "Circle", args: []string{"Square"}, want: false},
		{typ: "int32", args: []string{"int32"}, want: false},
		{typ: "Shape*", args: []string{"Circle*"}, want: false},
		{typ: "Shape", want: false},
	})
}

func TestTest_Convert(t *testing.T) {
	runTests(t, newTestEngine(), ir.TagConvert, []testCase{
		{typ: "int32", args: []string{"float64"}, want: true},
		{typ: "float64", args: []string{"bool"}, want: true},
		{typ: "int32 const&", args: []string{"int64"}, want: true},
		{typ: "Color", args: []string{"int32"}, want: true},
		{typ: "Mode", args: []string{"int32"}, want: false},
		{typ: "int32", args: []string{"Color"}, want: false},
		{typ: "void", args: []string{"void"}, want: true},
		{typ: "int32", args: []string{"void"}, want: false},
		{typ: "void", args: []string{"int32"}, want: false},

		{typ: "int32&", args: []string{"int32&"}, want: true},
		{typ: "int32", args: []string{"int32&"}, want: false},
		{typ: "int32", args: []string{"int32 const&"}, want: true},
		{typ: "int32", args: []string{"int32&&"}, want: true},
		{typ: "int32&", args: []string{"int32&&"}, want: false},
		{typ: "int32 const&", args: []string{"int32&"}, want: false},
		{typ: "Circle&", args: []string{"Shape&"}, want: true},
		{typ: "Shape&", args: []string{"Circle&"}, want: false},

		{typ: "int32*", args: []string{"int32 const*"}, want: true},
		{typ: "int32 const*", args: []string{"int32*"}, want: false},
		{typ: "int32*", args: []string{"void*"}, want: true},
		{typ: "Circle*", args: []string{"Shape*"}, want: true},
		{typ: "Shape*", args: []string{"Circle*"}, want: false},
		{typ: "int32*", args: []string{"bool"}, want: true},
		{typ: "int32[4]", args: []string{"int32*"}, want: true},
		{typ: "int32(float64)", args: []string{"int32(float64)*"}, want: true},
		{typ: "int32", args: []string{"int32[4]"}, want: false},

		{typ: "Widget", args: []string{"bool"}, want: true},
		{typ: "char const*", args: []string{"Widget"}, want: true},
		{typ: "int32", args: []string{"Widget"}, want: false},
		{typ: "Widget", args: []string{"int32"}, want: true},
		{typ: "Widget", args: []string{"char const*"}, want: false},
	})
}

func TestTest_Ctor(t *testing.T) {
	runTests(t, newTestEngine(), ir.TagCtor, []testCase{
		{typ: "int32", want: true},
		{typ: "int32", args: []string{"float64"}, want: true},
		{typ: "int32", args: []string{"int32", "int32"}, want: false},
		{typ: "int32&", args: []string{"int32&"}, want: true},
		{typ: "int32&", want: false},
		{typ: "void", want: false},
		{typ: "int32[3]", want: true},
		{typ: "int32[]", want: false},

		{typ: "Widget", want: true},
		{typ: "Widget", args: []string{"void"}, want: true},
		{typ: "Widget", args: []string{"int32"}, want: true},
		{typ: "Widget", args: []string{"char const*"}, want: true},
		{typ: "Widget", args: []string{"float64", "float64"}, want: false},
		{typ: "Shape", want: false},
		{typ: "Circle", want: false},
		{typ: "Circle", args: []string{"float64"}, want: true},
		{typ: "Circle", args: []string{"Circle const&"}, want: true},
		{typ: "Circle", args: []string{"Square&"}, want: false},
		{typ: "Square", want: true},
		{typ: "Fwd", want: false},
		{typ: "Widget[2]", want: true},
	})
}

func TestTest_Call(t *testing.T) {
	runTests(t, newTestEngine(), ir.TagCall, []testCase{
		{typ: "int32(float64)", args: []string{"int32"}, want: true},
		{typ: "int32(float64)", want: false},
		{typ: "int32()", args: []string{"void"}, want: true},
		{typ: "int32(float64)*", args: []string{"float64"}, want: true},
		{typ: "int32(float64)&", args: []string{"float64"}, want: true},
		{typ: "int32(char const*, ...)", args: []string{"char const*", "int32", "float64"}, want: true},
		{typ: "int32(char const*, ...)", args: []string{"int32"}, want: false},
		{typ: "void(int32) Widget::*", args: []string{"Widget&", "int32"}, want: true},
		{typ: "void(int32) Widget::*", args: []string{"Widget*", "int32"}, want: true},
		{typ: "void(int32) Widget::*", args: []string{"Shape&", "int32"}, want: false},
		{typ: "void(int32) Shape::*", args: []string{"Circle&", "int32"}, want: true},
		{typ: "int32 Widget::*", args: []string{"Widget*"}, want: true},
		{typ: "Widget", args: []string{"int32", "float64"}, want: true},
		{typ: "Widget&", args: []string{"int8", "float32"}, want: true},
		{typ: "Widget", args: []string{"int32"}, want: false},
		{typ: "int32", want: false},
	})
}

func TestTest_Assign(t *testing.T) {
	runTests(t, newTestEngine(), ir.TagAssign, []testCase{
		{typ: "int32&", args: []string{"float64"}, want: true},
		{typ: "int32&", want: true},
		{typ: "int32 const&", args: []string{"int32"}, want: false},
		{typ: "int32", args: []string{"int32"}, want: false},
		{typ: "Widget", want: true},
		{typ: "Widget&", args: []string{"char const*"}, want: true},
		{typ: "Widget&", args: []string{"int32"}, want: false},
		{typ: "int32[3]&", args: []string{"int32[3]"}, want: false},
	})
}
