package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/traitkit/internal/ir"
)

// kindSections lists the top-level catalog structs in compile order.
var kindSections = []ir.TypeKind{ir.KindClass, ir.KindEnum, ir.KindUnion}

// CompileCatalog parses every nominal type declared under the top-level
// class, enum and union structs. Types come back grouped by kind, each group
// in declaration order.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`class: Widget: {size: 8}`)
//	types, err := CompileCatalog(v)
func CompileCatalog(v cue.Value) ([]ir.TypeInfo, error) {
	types, errs := compileSections(v, true)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return types, nil
}

// CompileCatalogAll is CompileCatalog without stopping at the first bad
// declaration. It returns every type that compiled along with one error per
// type that did not.
func CompileCatalogAll(v cue.Value) ([]ir.TypeInfo, []error) {
	return compileSections(v, false)
}

func compileSections(v cue.Value, failFast bool) ([]ir.TypeInfo, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		types []ir.TypeInfo
		errs  []error
	)
	for _, kind := range kindSections {
		section := v.LookupPath(cue.ParsePath(string(kind)))
		if !section.Exists() {
			continue
		}
		iter, err := section.Fields()
		if err != nil {
			errs = append(errs, formatCUEError(err))
			if failFast {
				return nil, errs
			}
			continue
		}
		for iter.Next() {
			info, err := CompileType(kind, iter.Value())
			if err != nil {
				errs = append(errs, err)
				if failFast {
					return nil, errs
				}
				continue
			}
			types = append(types, *info)
		}
	}
	return types, errs
}

// CompileType parses one type declaration. The name is taken from the last
// path label, e.g. CompileType(ir.KindClass, v.LookupPath(cue.ParsePath("class.Widget"))).
func CompileType(kind ir.TypeKind, v cue.Value) (*ir.TypeInfo, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	info := &ir.TypeInfo{Kind: kind}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		info.Name = ir.TypeID(labels[len(labels)-1].Unquoted())
	}
	if info.Name == "" {
		return nil, &CompileError{Field: "name", Message: "type declaration has no name", Pos: v.Pos()}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{
			Field:   string(info.Name),
			Message: "type declaration must be a struct",
			Pos:     v.Pos(),
		}
	}
	for iter.Next() {
		field := iter.Selector().Unquoted()
		fv := iter.Value()
		if err := compileField(info, field, fv); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func compileField(info *ir.TypeInfo, field string, v cue.Value) error {
	var err error
	switch field {
	case "bases":
		var names []string
		names, err = stringList(field, v)
		for _, n := range names {
			info.Bases = append(info.Bases, ir.TypeID(n))
		}
	case "size":
		info.Size, err = intField(field, v)
	case "incomplete":
		info.Incomplete, err = boolField(field, v)
	case "abstract":
		info.Abstract, err = boolField(field, v)
	case "final":
		info.Final, err = boolField(field, v)
	case "polymorphic":
		info.Polymorphic, err = boolField(field, v)
	case "trivial":
		info.Trivial, err = boolField(field, v)
	case "literal":
		info.Literal, err = boolField(field, v)
	case "empty":
		info.Empty, err = boolField(field, v)
	case "template":
		info.Template, err = boolField(field, v)
	case "scoped":
		info.Scoped, err = boolField(field, v)
	case "no_destructor":
		info.NoDestructor, err = boolField(field, v)
	case "underlying":
		var s string
		s, err = stringField(field, v)
		info.Underlying = ir.TypeID(s)
	case "constructors":
		info.Constructors, err = signatureList(field, v)
	case "call_operators":
		info.CallOperators, err = signatureList(field, v)
	case "conversions":
		info.Conversions, err = stringList(field, v)
	case "operators":
		info.Operators, err = stringList(field, v)
	default:
		return &CompileError{
			Field:   string(info.Name) + "." + field,
			Message: "unknown field",
			Pos:     v.Pos(),
		}
	}
	if err != nil {
		if ce, ok := err.(*CompileError); ok && ce.Field != "cue" {
			ce.Field = string(info.Name) + "." + ce.Field
		}
		return err
	}
	return nil
}

func boolField(field string, v cue.Value) (bool, error) {
	b, err := v.Bool()
	if err != nil {
		return false, &CompileError{Field: field, Message: "expected bool", Pos: v.Pos()}
	}
	return b, nil
}

func stringField(field string, v cue.Value) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: "expected string", Pos: v.Pos()}
	}
	return s, nil
}

// intField reads a concrete integer. Floats are rejected, sizes are whole bytes.
func intField(field string, v cue.Value) (int64, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
	case cue.FloatKind, cue.NumberKind:
		return 0, &CompileError{Field: field, Message: "expected integer, got float", Pos: v.Pos()}
	default:
		return 0, &CompileError{Field: field, Message: fmt.Sprintf("expected integer, got %v", v.IncompleteKind()), Pos: v.Pos()}
	}
	n, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

func stringList(field string, v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "expected list of strings", Pos: v.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "expected list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// signatureList parses [{params: [...], variadic: bool, explicit: bool, defaults: int}].
func signatureList(field string, v cue.Value) ([]ir.Signature, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "expected list of signatures", Pos: v.Pos()}
	}
	var out []ir.Signature
	for i := 0; iter.Next(); i++ {
		sv := iter.Value()
		path := fmt.Sprintf("%s[%d]", field, i)
		fields, err := sv.Fields()
		if err != nil {
			return nil, &CompileError{Field: path, Message: "expected signature struct", Pos: sv.Pos()}
		}
		var sig ir.Signature
		for fields.Next() {
			name := fields.Selector().Unquoted()
			fv := fields.Value()
			switch name {
			case "params":
				sig.Params, err = stringList(path+".params", fv)
			case "variadic":
				sig.Variadic, err = boolField(path+".variadic", fv)
			case "explicit":
				sig.Explicit, err = boolField(path+".explicit", fv)
			case "defaults":
				var n int64
				n, err = intField(path+".defaults", fv)
				sig.Defaults = int(n)
			default:
				err = &CompileError{Field: path + "." + name, Message: "unknown field", Pos: fv.Pos()}
			}
			if err != nil {
				return nil, err
			}
		}
		out = append(out, sig)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
