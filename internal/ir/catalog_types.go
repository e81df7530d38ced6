package ir

// TypeKind is the category of a nominal type.
type TypeKind string

const (
	KindClass TypeKind = "class"
	KindEnum  TypeKind = "enum"
	KindUnion TypeKind = "union"
)

// ValidTypeKinds defines allowed nominal type kinds.
var ValidTypeKinds = map[TypeKind]bool{
	KindClass: true,
	KindEnum:  true,
	KindUnion: true,
}

// TypeInfo is a compiled nominal type declaration. Descriptor-valued fields
// hold descriptor text so the record stays plain JSON.
type TypeInfo struct {
	Name          TypeID      `json:"name"`
	Kind          TypeKind    `json:"kind"`
	Bases         []TypeID    `json:"bases,omitempty"`
	Size          int64       `json:"size,omitempty"`
	Incomplete    bool        `json:"incomplete,omitempty"` // declared, not defined
	Abstract      bool        `json:"abstract,omitempty"`
	Final         bool        `json:"final,omitempty"`
	Polymorphic   bool        `json:"polymorphic,omitempty"`
	Trivial       bool        `json:"trivial,omitempty"`
	Literal       bool        `json:"literal,omitempty"`
	Empty         bool        `json:"empty,omitempty"`
	Template      bool        `json:"template,omitempty"`
	Scoped        bool        `json:"scoped,omitempty"`     // enum class
	Underlying    TypeID      `json:"underlying,omitempty"` // enums only
	Constructors  []Signature `json:"constructors,omitempty"`
	Conversions   []string    `json:"conversions,omitempty"`
	CallOperators []Signature `json:"call_operators,omitempty"`
	Operators     []string    `json:"operators,omitempty"` // "==", "<"
	NoDestructor  bool        `json:"no_destructor,omitempty"`
}

// Signature is a declared constructor or call operator.
type Signature struct {
	Params   []string `json:"params,omitempty"`
	Variadic bool     `json:"variadic,omitempty"`
	Explicit bool     `json:"explicit,omitempty"`
	Defaults int      `json:"defaults,omitempty"` // trailing params with defaults
}

// Overload is a Signature with its parameters parsed.
type Overload struct {
	Params   []Descriptor
	Variadic bool
	Explicit bool
	Defaults int
}

// Accepts reports whether n arguments fit the overload's arity.
func (o Overload) Accepts(n int) bool {
	required := len(o.Params) - o.Defaults
	if n < required {
		return false
	}
	return o.Variadic || n <= len(o.Params)
}

// OperatorSet records which comparison operators a class declares.
type OperatorSet uint8

const (
	OpEqual OperatorSet = 1 << iota
	OpLess
)

// ParseOperator maps an operator spelling to its bit.
func ParseOperator(s string) (OperatorSet, bool) {
	switch s {
	case "==":
		return OpEqual, true
	case "<":
		return OpLess, true
	}
	return 0, false
}
