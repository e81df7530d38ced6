package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatchMatches(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		handler string
		thrown  string
		want    bool
	}{
		{"Shape&", "Circle", true},
		{"Shape const&", "Circle", true},
		{"Shape const&", "Circle const&", true},
		{"Circle&", "Shape", false},
		{"Circle", "Circle&", true},
		{"Widget", "Circle", false},
		{"Shape*", "Circle*", true},
		{"Shape const*", "Circle*", true},
		{"Circle*", "Shape*", false},
		{"void*", "int32*", true},
		{"char*", "char const*", false},
		{"char const*", "char const[4]", true},
		{"int32", "int32 const", true},
		{"int64", "int32", false},
		{"int32", "void", false},
		{"void(int32)*", "void(int32)", true},
	}
	for _, tt := range tests {
		t.Run(tt.handler+" catches "+tt.thrown, func(t *testing.T) {
			assert.Equal(t, tt.want, e.CatchMatches(d(tt.handler), d(tt.thrown)))
		})
	}
}
