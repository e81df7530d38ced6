package ir

import (
	"fmt"
	"strings"
)

// TypeID names a base type. Primitive ids are fixed; any other id is a
// nominal class, enum or union whose facts come from an oracle.
type TypeID string

// Primitive base types.
const (
	Void     TypeID = "void"
	Bool     TypeID = "bool"
	Char     TypeID = "char"
	Char8    TypeID = "char8"
	Char16   TypeID = "char16"
	Char32   TypeID = "char32"
	WChar    TypeID = "wchar"
	Int8     TypeID = "int8"
	Uint8    TypeID = "uint8"
	Int16    TypeID = "int16"
	Uint16   TypeID = "uint16"
	Int32    TypeID = "int32"
	Uint32   TypeID = "uint32"
	Int64    TypeID = "int64"
	Uint64   TypeID = "uint64"
	Int128   TypeID = "int128"
	Uint128  TypeID = "uint128"
	Float32  TypeID = "float32"
	Float64  TypeID = "float64"
	Float128 TypeID = "float128"
)

var primitives = map[TypeID]bool{
	Void: true, Bool: true, Char: true, Char8: true, Char16: true, Char32: true, WChar: true,
	Int8: true, Uint8: true, Int16: true, Uint16: true, Int32: true, Uint32: true,
	Int64: true, Uint64: true, Int128: true, Uint128: true,
	Float32: true, Float64: true, Float128: true,
}

// IsPrimitive reports whether id is one of the fixed primitive types.
func (id TypeID) IsPrimitive() bool {
	return primitives[id]
}

// Qualifiers is the cv-qualifier set of a qualifiable position.
type Qualifiers uint8

const (
	Const Qualifiers = 1 << iota
	Volatile
)

func (q Qualifiers) String() string {
	switch q & (Const | Volatile) {
	case Const:
		return "const"
	case Volatile:
		return "volatile"
	case Const | Volatile:
		return "const volatile"
	}
	return ""
}

// Shape is the structural form of a descriptor.
type Shape uint8

const (
	ShapeValue Shape = iota
	ShapeLRef
	ShapeRRef
	ShapePointer
	ShapeArray           // bounded, extent > 0
	ShapeArrayIncomplete // extent == 0
	ShapeArrayUnbounded  // no extent
	ShapeMember
	ShapeFunction
)

var shapeNames = [...]string{
	ShapeValue:           "Value",
	ShapeLRef:            "LRef",
	ShapeRRef:            "RRef",
	ShapePointer:         "Pointer",
	ShapeArray:           "Array",
	ShapeArrayIncomplete: "ArrayIncomplete",
	ShapeArrayUnbounded:  "ArrayUnbounded",
	ShapeMember:          "Member",
	ShapeFunction:        "Function",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", s)
}

// IsArray reports whether s is one of the three array shapes.
func (s Shape) IsArray() bool {
	return s == ShapeArray || s == ShapeArrayIncomplete || s == ShapeArrayUnbounded
}

// Extent is an array bound. Zero is the incomplete array T[0]; Unbounded is
// the empty-bracket array T[].
type Extent int64

// Unbounded marks an array built without an extent.
const Unbounded Extent = -1

func (e Extent) String() string {
	if e == Unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", int64(e))
}

func arrayShape(ext Extent) Shape {
	switch {
	case ext == Unbounded:
		return ShapeArrayUnbounded
	case ext == 0:
		return ShapeArrayIncomplete
	}
	return ShapeArray
}

// ShapeTag is the result of ClassifyShape: the shape plus the detail that
// distinguishes instances of it.
type ShapeTag struct {
	Shape    Shape
	Extent   Extent // arrays only
	Depth    int    // pointers only
	Variadic bool   // functions only
}

func (t ShapeTag) String() string {
	switch t.Shape {
	case ShapePointer:
		return fmt.Sprintf("Pointer(%d)", t.Depth)
	case ShapeArray, ShapeArrayIncomplete:
		return fmt.Sprintf("Array(%d)", t.Extent)
	case ShapeArrayUnbounded:
		return "Array[]"
	case ShapeFunction:
		if t.Variadic {
			return "Function(...)"
		}
		return "Function"
	}
	return t.Shape.String()
}

// Descriptor is an immutable description of a type. The zero value is not a
// valid descriptor; build one with the constructors below or Parse.
//
// Constructors keep descriptors canonical so that structurally equal types
// compare Equal:
//   - adjacent unqualified pointer levels share one node with a depth
//   - references never nest; lvalue wins on collapse
//   - array qualifiers live on the outermost array node
//   - Function and Member nodes carry no qualifiers
type Descriptor struct {
	shape    Shape
	quals    Qualifiers
	base     TypeID // Value base, or Member owner
	elem     *Descriptor
	depth    int
	extent   Extent
	params   []Descriptor
	variadic bool
}

func ref(d Descriptor) *Descriptor {
	return &d
}

// Value returns the unqualified value descriptor of id.
func Value(id TypeID) Descriptor {
	if id == "" {
		panic("ir: empty type id")
	}
	return Descriptor{shape: ShapeValue, base: id}
}

// LRef returns an lvalue reference to d. References collapse: a reference
// to any reference is an lvalue reference to the referent. void has no
// reference form and is returned unchanged.
func LRef(d Descriptor) Descriptor {
	switch d.shape {
	case ShapeLRef:
		return d
	case ShapeRRef:
		return LRef(*d.elem)
	}
	if d.IsVoid() {
		return d
	}
	return Descriptor{shape: ShapeLRef, elem: ref(d)}
}

// RRef returns an rvalue reference to d. An lvalue reference stays an
// lvalue reference.
func RRef(d Descriptor) Descriptor {
	if d.IsReference() || d.IsVoid() {
		return d
	}
	return Descriptor{shape: ShapeRRef, elem: ref(d)}
}

// Pointer returns a pointer to d. A reference is replaced by its referent.
func Pointer(d Descriptor) Descriptor {
	if d.IsReference() {
		d = *d.elem
	}
	if d.shape == ShapePointer && d.quals == 0 {
		return Descriptor{shape: ShapePointer, elem: d.elem, depth: d.depth + 1}
	}
	return Descriptor{shape: ShapePointer, elem: ref(d), depth: 1}
}

// PointerN applies Pointer n times.
func PointerN(d Descriptor, n int) Descriptor {
	if n < 0 {
		panic(fmt.Sprintf("ir: negative pointer depth %d", n))
	}
	for range n {
		d = Pointer(d)
	}
	return d
}

// ArrayOf is TryArrayOf for arguments known to be valid.
func ArrayOf(d Descriptor, ext Extent) Descriptor {
	a, err := TryArrayOf(d, ext)
	if err != nil {
		panic(err)
	}
	return a
}

// TryArrayOf returns an array of ext elements of d. The element's
// qualifiers move to the array node.
func TryArrayOf(d Descriptor, ext Extent) (Descriptor, error) {
	switch {
	case ext < Unbounded:
		return Descriptor{}, fmt.Errorf("ir: invalid array extent %d", ext)
	case d.IsReference():
		return Descriptor{}, fmt.Errorf("ir: array of reference %s", d)
	case d.shape == ShapeFunction:
		return Descriptor{}, fmt.Errorf("ir: array of function %s", d)
	case d.IsVoid():
		return Descriptor{}, fmt.Errorf("ir: array of %s", d)
	}
	q := d.quals
	d.quals = 0
	return Descriptor{shape: arrayShape(ext), quals: q, elem: ref(d), extent: ext}, nil
}

// MemberOf is TryMemberOf for arguments known to be valid.
func MemberOf(owner TypeID, d Descriptor) Descriptor {
	m, err := TryMemberOf(owner, d)
	if err != nil {
		panic(err)
	}
	return m
}

// TryMemberOf returns a pointer to a member of owner with type d.
func TryMemberOf(owner TypeID, d Descriptor) (Descriptor, error) {
	switch {
	case owner == "" || owner.IsPrimitive():
		return Descriptor{}, fmt.Errorf("ir: %q cannot own members", owner)
	case d.IsReference():
		return Descriptor{}, fmt.Errorf("ir: pointer to reference member %s", d)
	case d.IsVoid():
		return Descriptor{}, fmt.Errorf("ir: pointer to void member")
	}
	return Descriptor{shape: ShapeMember, base: owner, elem: ref(d)}, nil
}

// Func returns a fixed-arity function type.
func Func(ret Descriptor, params ...Descriptor) Descriptor {
	f, err := TryFunc(ret, false, params...)
	if err != nil {
		panic(err)
	}
	return f
}

// VariadicFunc returns a function type with a trailing "..." parameter.
func VariadicFunc(ret Descriptor, params ...Descriptor) Descriptor {
	f, err := TryFunc(ret, true, params...)
	if err != nil {
		panic(err)
	}
	return f
}

// TryFunc returns a function type. Parameters are adjusted the way a
// declaration adjusts them: arrays and functions decay to pointers,
// top-level qualifiers are dropped, and a sole void parameter means none.
func TryFunc(ret Descriptor, variadic bool, params ...Descriptor) (Descriptor, error) {
	if ret.IsArray() || ret.shape == ShapeFunction {
		return Descriptor{}, fmt.Errorf("ir: function returning %s", ret)
	}
	if len(params) == 1 && !variadic && params[0].IsVoid() && params[0].quals == 0 {
		params = nil
	}
	var adjusted []Descriptor
	for i, p := range params {
		if p.IsVoid() {
			return Descriptor{}, fmt.Errorf("ir: parameter %d has type %s", i, p)
		}
		adjusted = append(adjusted, adjustParam(p))
	}
	return Descriptor{shape: ShapeFunction, elem: ref(ret), params: adjusted, variadic: variadic}, nil
}

func adjustParam(p Descriptor) Descriptor {
	switch {
	case p.IsArray():
		p = Pointer(p.Elem())
	case p.shape == ShapeFunction:
		return Pointer(p)
	case p.IsReference():
		return p
	}
	p.quals = 0
	return p
}

// Shape returns the structural form of d.
func (d Descriptor) Shape() Shape { return d.shape }

// ClassifyShape returns the shape of d with its extent, depth or variadic
// detail filled in.
func (d Descriptor) ClassifyShape() ShapeTag {
	t := ShapeTag{Shape: d.shape}
	switch {
	case d.shape == ShapePointer:
		t.Depth = d.Depth()
	case d.IsArray():
		t.Extent = d.extent
	case d.shape == ShapeFunction:
		t.Variadic = d.variadic
	}
	return t
}

func (d Descriptor) IsZero() bool { return d.shape == ShapeValue && d.base == "" }
func (d Descriptor) IsReference() bool { return d.shape == ShapeLRef || d.shape == ShapeRRef }
func (d Descriptor) IsPointer() bool { return d.shape == ShapePointer }
func (d Descriptor) IsArray() bool { return d.shape.IsArray() }
func (d Descriptor) IsFunction() bool { return d.shape == ShapeFunction }
func (d Descriptor) IsMember() bool { return d.shape == ShapeMember }

// IsVoid reports whether d is void, with or without qualifiers.
func (d Descriptor) IsVoid() bool {
	return d.shape == ShapeValue && d.base == Void
}

// Qualifiers returns the qualifiers of d's qualifiable position. A reference
// forwards to its referent. Function and member pointer shapes have none.
func (d Descriptor) Qualifiers() Qualifiers {
	switch d.shape {
	case ShapeLRef, ShapeRRef:
		return d.elem.Qualifiers()
	case ShapeFunction, ShapeMember:
		return 0
	}
	return d.quals
}

// WithQualifiers returns d with the qualifiable position set to exactly q.
// Functions and member pointers are not qualifiable and are returned as is.
func (d Descriptor) WithQualifiers(q Qualifiers) Descriptor {
	switch d.shape {
	case ShapeLRef, ShapeRRef:
		d.elem = ref(d.elem.WithQualifiers(q))
		return d
	case ShapeFunction, ShapeMember:
		return d
	}
	if d.IsArray() && !d.innermost().qualifiable() {
		return d
	}
	d.quals = q
	return d
}

// AddQualifiers returns d with q added to its qualifiers.
func (d Descriptor) AddQualifiers(q Qualifiers) Descriptor {
	return d.WithQualifiers(d.Qualifiers() | q)
}

// RemoveQualifiers returns d with q removed from its qualifiers.
func (d Descriptor) RemoveQualifiers(q Qualifiers) Descriptor {
	return d.WithQualifiers(d.Qualifiers() &^ q)
}

func (d Descriptor) qualifiable() bool {
	return d.shape == ShapeValue || d.shape == ShapePointer || d.IsArray()
}

// innermost returns the first non-array element of an array chain.
func (d Descriptor) innermost() Descriptor {
	for d.IsArray() {
		d = *d.elem
	}
	return d
}

// Elem strips one level of form: the referent of a reference, the pointee of
// one pointer level, the element of an array (qualifiers re-applied) or the
// member type of a member pointer. Value and Function shapes have no element
// and return the zero Descriptor.
func (d Descriptor) Elem() Descriptor {
	switch d.shape {
	case ShapeLRef, ShapeRRef, ShapeMember:
		return *d.elem
	case ShapePointer:
		if d.depth > 1 {
			return Descriptor{shape: ShapePointer, elem: d.elem, depth: d.depth - 1}
		}
		return *d.elem
	case ShapeArray, ShapeArrayIncomplete, ShapeArrayUnbounded:
		return d.elem.AddQualifiers(d.quals)
	}
	return Descriptor{}
}

// Depth returns the number of consecutive pointer levels at the top of d,
// counting through qualified levels.
func (d Descriptor) Depth() int {
	n := 0
	for d.shape == ShapePointer {
		n += d.depth
		d = *d.elem
	}
	return n
}

// Extent returns the array bound. Only meaningful for array shapes.
func (d Descriptor) Extent() Extent { return d.extent }

// Owner returns the owning class of a member pointer.
func (d Descriptor) Owner() TypeID {
	if d.shape == ShapeMember {
		return d.base
	}
	return ""
}

// Return returns the return type of a function.
func (d Descriptor) Return() Descriptor {
	if d.shape == ShapeFunction {
		return *d.elem
	}
	return Descriptor{}
}

// Params returns a copy of a function's adjusted parameter list.
func (d Descriptor) Params() []Descriptor {
	if len(d.params) == 0 {
		return nil
	}
	return append([]Descriptor(nil), d.params...)
}

// Variadic reports whether a function takes a trailing "...".
func (d Descriptor) Variadic() bool { return d.variadic }

// Base returns the innermost base id reached through references, pointers
// and arrays. Functions and member pointers have no single base.
func (d Descriptor) Base() TypeID {
	switch d.shape {
	case ShapeValue:
		return d.base
	case ShapeFunction, ShapeMember:
		return ""
	}
	return d.elem.Base()
}

// Equal reports whether d and u describe the same type.
func (d Descriptor) Equal(u Descriptor) bool {
	if d.shape != u.shape || d.quals != u.quals || d.base != u.base ||
		d.depth != u.depth || d.extent != u.extent || d.variadic != u.variadic ||
		len(d.params) != len(u.params) || (d.elem == nil) != (u.elem == nil) {
		return false
	}
	if d.elem != nil && !d.elem.Equal(*u.elem) {
		return false
	}
	for i := range d.params {
		if !d.params[i].Equal(u.params[i]) {
			return false
		}
	}
	return true
}

// Key returns a string that is equal for Equal descriptors.
func (d Descriptor) Key() string { return d.String() }

// String renders d in the postfix syntax accepted by Parse.
func (d Descriptor) String() string {
	if d.IsZero() {
		return "<invalid>"
	}
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d Descriptor) write(b *strings.Builder) {
	switch d.shape {
	case ShapeValue:
		b.WriteString(string(d.base))
		writeQuals(b, d.quals)
	case ShapeLRef:
		d.elem.write(b)
		b.WriteString("&")
	case ShapeRRef:
		d.elem.write(b)
		b.WriteString("&&")
	case ShapePointer:
		d.elem.write(b)
		b.WriteString(strings.Repeat("*", d.depth))
		writeQuals(b, d.quals)
	case ShapeArray, ShapeArrayIncomplete, ShapeArrayUnbounded:
		var dims []Extent
		inner := d
		for inner.IsArray() {
			dims = append(dims, inner.extent)
			inner = *inner.elem
		}
		inner.AddQualifiers(d.quals).write(b)
		for _, ext := range dims {
			if ext == Unbounded {
				b.WriteString("[]")
			} else {
				fmt.Fprintf(b, "[%d]", ext)
			}
		}
	case ShapeMember:
		d.elem.write(b)
		b.WriteString(" ")
		b.WriteString(string(d.base))
		b.WriteString("::*")
	case ShapeFunction:
		d.elem.write(b)
		b.WriteString("(")
		for i, p := range d.params {
			if i > 0 {
				b.WriteString(", ")
			}
			p.write(b)
		}
		if d.variadic {
			if len(d.params) > 0 {
				b.WriteString(", ")
			}
			b.WriteString("...")
		}
		b.WriteString(")")
	}
}

func writeQuals(b *strings.Builder, q Qualifiers) {
	if q != 0 {
		b.WriteString(" ")
		b.WriteString(q.String())
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Descriptor) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("ir: marshal zero descriptor")
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Descriptor) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
