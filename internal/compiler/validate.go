package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/traitkit/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidKind       = "E100" // kind is not class, enum or union
	ErrInvalidName       = "E101" // name is empty, primitive or not a plain type name
	ErrDuplicateName     = "E102" // two declarations share a name
	ErrUnknownBase       = "E103" // base is not declared in the catalog
	ErrInvalidDescriptor = "E104" // parameter or conversion text does not parse
	ErrInvalidCount      = "E105" // negative size, bad defaults count
	ErrCyclicBases       = "E106" // a type inherits from itself
	ErrFieldNotAllowed   = "E107" // field does not apply to the declared kind
	ErrBaseNotClass      = "E108" // base is an enum or union
	ErrInvalidOperator   = "E109" // operator is not "==" or "<"
	ErrInvalidUnderlying = "E110" // enum underlying type is not integral
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var integralTypes = map[ir.TypeID]bool{
	ir.Bool: true, ir.Char: true, ir.Char8: true, ir.Char16: true, ir.Char32: true, ir.WChar: true,
	ir.Int8: true, ir.Uint8: true, ir.Int16: true, ir.Uint16: true, ir.Int32: true, ir.Uint32: true,
	ir.Int64: true, ir.Uint64: true, ir.Int128: true, ir.Uint128: true,
}

// Validate checks a compiled catalog as a whole.
// Returns all errors found (does not fail-fast).
func Validate(types []ir.TypeInfo) []ValidationError {
	var errs []ValidationError

	kinds := make(map[ir.TypeID]ir.TypeKind, len(types))
	for i, t := range types {
		if _, dup := kinds[t.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("types[%d].name", i),
				Message: fmt.Sprintf("duplicate type name: %q", t.Name),
				Code:    ErrDuplicateName,
			})
			continue
		}
		kinds[t.Name] = t.Kind
	}

	for _, t := range types {
		errs = append(errs, validateType(t, kinds)...)
	}

	for _, cycle := range FindBaseCycles(types) {
		parts := make([]string, len(cycle))
		for i, id := range cycle {
			parts[i] = string(id)
		}
		errs = append(errs, ValidationError{
			Field:   string(cycle[0]) + ".bases",
			Message: "cyclic inheritance: " + strings.Join(parts, " -> "),
			Code:    ErrCyclicBases,
		})
	}

	return errs
}

// validateType checks one declaration against the catalog's name table.
func validateType(t ir.TypeInfo, kinds map[ir.TypeID]ir.TypeKind) []ValidationError {
	var errs []ValidationError
	name := string(t.Name)
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   name + "." + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if !ir.ValidTypeKinds[t.Kind] {
		add("kind", ErrInvalidKind, "invalid kind %q, must be \"class\", \"enum\", or \"union\"", t.Kind)
	}
	if msg := checkName(t.Name); msg != "" {
		add("name", ErrInvalidName, "%s", msg)
	}
	if t.Size < 0 {
		add("size", ErrInvalidCount, "size must not be negative, got %d", t.Size)
	}

	for _, b := range t.Bases {
		k, ok := kinds[b]
		switch {
		case !ok:
			add("bases", ErrUnknownBase, "unknown base type %q", b)
		case k != ir.KindClass:
			add("bases", ErrBaseNotClass, "base %q is a %s, not a class", b, k)
		}
	}

	switch t.Kind {
	case ir.KindEnum:
		for _, f := range []struct {
			name string
			set  bool
		}{
			{"bases", len(t.Bases) > 0},
			{"constructors", len(t.Constructors) > 0},
			{"call_operators", len(t.CallOperators) > 0},
			{"conversions", len(t.Conversions) > 0},
			{"abstract", t.Abstract},
			{"polymorphic", t.Polymorphic},
		} {
			if f.set {
				add(f.name, ErrFieldNotAllowed, "%s does not apply to an enum", f.name)
			}
		}
		if t.Underlying != "" && !integralTypes[t.Underlying] {
			add("underlying", ErrInvalidUnderlying, "underlying type %q is not integral", t.Underlying)
		}
	default:
		if t.Scoped {
			add("scoped", ErrFieldNotAllowed, "scoped applies only to enums")
		}
		if t.Underlying != "" {
			add("underlying", ErrFieldNotAllowed, "underlying applies only to enums")
		}
		if t.Kind == ir.KindUnion {
			if len(t.Bases) > 0 {
				add("bases", ErrFieldNotAllowed, "a union cannot have bases")
			}
			if t.Polymorphic {
				add("polymorphic", ErrFieldNotAllowed, "a union cannot be polymorphic")
			}
		}
	}

	for i, sig := range t.Constructors {
		errs = append(errs, validateSignature(name, fmt.Sprintf("constructors[%d]", i), sig)...)
	}
	for i, sig := range t.CallOperators {
		errs = append(errs, validateSignature(name, fmt.Sprintf("call_operators[%d]", i), sig)...)
	}
	for i, c := range t.Conversions {
		d, err := ir.Parse(c)
		switch {
		case err != nil:
			add(fmt.Sprintf("conversions[%d]", i), ErrInvalidDescriptor, "invalid conversion target %q: %v", c, err)
		case d.IsVoid() || d.IsFunction() || d.IsArray():
			add(fmt.Sprintf("conversions[%d]", i), ErrInvalidDescriptor, "cannot convert to %s", d)
		}
	}
	for i, op := range t.Operators {
		if _, ok := ir.ParseOperator(op); !ok {
			add(fmt.Sprintf("operators[%d]", i), ErrInvalidOperator, "invalid operator %q, must be \"==\" or \"<\"", op)
		}
	}

	return errs
}

func validateSignature(name, field string, sig ir.Signature) []ValidationError {
	var errs []ValidationError
	for j, p := range sig.Params {
		d, err := ir.Parse(p)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s.params[%d]", name, field, j),
				Message: fmt.Sprintf("invalid parameter type %q: %v", p, err),
				Code:    ErrInvalidDescriptor,
			})
			continue
		}
		if d.IsVoid() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s.params[%d]", name, field, j),
				Message: "void parameter, declare an empty params list instead",
				Code:    ErrInvalidDescriptor,
			})
		}
	}
	if sig.Defaults < 0 || sig.Defaults > len(sig.Params) {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("%s.%s.defaults", name, field),
			Message: fmt.Sprintf("defaults must be between 0 and %d, got %d", len(sig.Params), sig.Defaults),
			Code:    ErrInvalidCount,
		})
	}
	return errs
}

// checkName returns a message when id cannot name a catalog type.
func checkName(id ir.TypeID) string {
	if strings.TrimSpace(string(id)) == "" {
		return "name is required"
	}
	if id.IsPrimitive() {
		return fmt.Sprintf("%q is a primitive type", id)
	}
	d, err := ir.Parse(string(id))
	if err != nil || d.Shape() != ir.ShapeValue || d.Qualifiers() != 0 || d.Base() != id {
		return fmt.Sprintf("%q is not a plain type name", id)
	}
	return ""
}
