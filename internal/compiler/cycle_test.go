package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/traitkit/internal/ir"
)

func class(name string, bases ...ir.TypeID) ir.TypeInfo {
	return ir.TypeInfo{Name: ir.TypeID(name), Kind: ir.KindClass, Bases: bases}
}

func TestFindBaseCycles(t *testing.T) {
	tests := []struct {
		name  string
		types []ir.TypeInfo
		want  [][]ir.TypeID
	}{
		{
			name: "empty",
		},
		{
			name: "hierarchy",
			types: []ir.TypeInfo{
				class("Shape"),
				class("Circle", "Shape"),
				class("Square", "Shape"),
				class("Tile", "Square", "Circle"),
			},
		},
		{
			name:  "self",
			types: []ir.TypeInfo{class("A", "A")},
			want:  [][]ir.TypeID{{"A", "A"}},
		},
		{
			name:  "pair",
			types: []ir.TypeInfo{class("A", "B"), class("B", "A")},
			want:  [][]ir.TypeID{{"A", "B", "A"}},
		},
		{
			name: "triangle with undeclared base",
			types: []ir.TypeInfo{
				class("A", "B"),
				class("B", "C"),
				class("C", "A", "Missing"),
			},
			want: [][]ir.TypeID{{"A", "B", "C", "A"}},
		},
		{
			name: "two cycles",
			types: []ir.TypeInfo{
				class("A", "B"),
				class("B", "A"),
				class("Ok", "A"),
				class("X", "X"),
			},
			want: [][]ir.TypeID{{"A", "B", "A"}, {"X", "X"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindBaseCycles(tt.types))
		})
	}
}
