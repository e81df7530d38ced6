package testutil

import "github.com/roach88/traitkit/internal/ir"

// SampleCatalogCUE declares the shapes hierarchy used across tests. It
// compiles to SampleCatalog.
const SampleCatalogCUE = `
class: Shape: {
	abstract:    true
	polymorphic: true
	size:        16
}

class: Circle: {
	bases: ["Shape"]
	final: true
	size:  24
	constructors: [{params: ["float64"]}]
}

class: Square: {
	bases: ["Shape"]
	size:  24
}

class: Widget: {
	size: 8
	constructors: [
		{},
		{params: ["int32"], explicit: true},
		{params: ["char const*"]},
	]
	conversions: ["bool"]
	call_operators: [{params: ["int32", "float64"]}]
	operators: ["=="]
}

class: Fwd: {incomplete: true}

enum: Color: {underlying: "uint8"}
enum: Mode: {scoped: true}

union: Bits: {size: 8}
`

// SampleCatalog returns the declarations in SampleCatalogCUE.
func SampleCatalog() []ir.TypeInfo {
	return []ir.TypeInfo{
		{Name: "Shape", Kind: ir.KindClass, Size: 16, Abstract: true, Polymorphic: true},
		{Name: "Circle", Kind: ir.KindClass, Bases: []ir.TypeID{"Shape"}, Size: 24, Final: true,
			Constructors: []ir.Signature{{Params: []string{"float64"}}}},
		{Name: "Square", Kind: ir.KindClass, Bases: []ir.TypeID{"Shape"}, Size: 24},
		{Name: "Widget", Kind: ir.KindClass, Size: 8,
			Constructors: []ir.Signature{
				{},
				{Params: []string{"int32"}, Explicit: true},
				{Params: []string{"char const*"}},
			},
			Conversions:   []string{"bool"},
			CallOperators: []ir.Signature{{Params: []string{"int32", "float64"}}},
			Operators:     []string{"=="},
		},
		{Name: "Fwd", Kind: ir.KindClass, Incomplete: true},
		{Name: "Color", Kind: ir.KindEnum, Underlying: "uint8"},
		{Name: "Mode", Kind: ir.KindEnum, Scoped: true},
		{Name: "Bits", Kind: ir.KindUnion, Size: 8},
	}
}
