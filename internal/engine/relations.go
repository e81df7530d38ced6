package engine

import (
	"github.com/roach88/traitkit/internal/ir"
)

// isSuper reports whether base is the same class as derived or one of its
// bases. Qualifiers are ignored; any non-class operand gives false.
func (e *Engine) isSuper(base, derived ir.Descriptor) bool {
	b, d := base.WithQualifiers(0), derived.WithQualifiers(0)
	if !e.isClassValue(b) || !e.isClassValue(d) {
		return false
	}
	return b.Base() == d.Base() || e.oracle.IsBaseOf(b.Base(), d.Base())
}

// converts reports whether an expression of type from implicitly converts
// to type to. A reference source is an lvalue (&) or xvalue (&&) of its
// referent; any other source is a prvalue. At most one user-defined
// conversion is used, and only when allowUser is set.
func (e *Engine) converts(from, to ir.Descriptor, allowUser bool) bool {
	switch {
	case to.IsVoid():
		return from.IsVoid()
	case from.IsVoid(), to.IsFunction(), to.IsArray():
		return false
	case to.IsReference():
		return e.binds(from, to, allowUser)
	}

	src := from
	if src.IsReference() {
		src = src.Elem()
	}
	switch {
	case src.IsArray():
		src = ir.Pointer(src.Elem())
	case src.IsFunction():
		src = ir.Pointer(src)
	}
	return e.valueConverts(src.WithQualifiers(0), to.WithQualifiers(0), allowUser)
}

// binds reports whether a reference of type to can bind an expression of
// type from.
func (e *Engine) binds(from, to ir.Descriptor, allowUser bool) bool {
	target := to.Elem()
	lvalue := from.Shape() == ir.ShapeLRef || from.IsFunction()
	src := from
	if src.IsReference() {
		src = src.Elem()
	}
	compatible := e.referenceCompatible(target, src)

	if to.Shape() == ir.ShapeLRef {
		if compatible && lvalue {
			return true
		}
		// only a const, non-volatile lvalue reference binds a temporary
		if target.Qualifiers() != ir.Const {
			return false
		}
	} else if lvalue {
		return false
	}
	if compatible {
		return true
	}
	if target.IsFunction() || target.IsArray() {
		return false
	}
	return e.converts(src, target.WithQualifiers(0), allowUser)
}

// referenceCompatible: target is src, or a base class of src, with at least
// src's qualifiers.
func (e *Engine) referenceCompatible(target, src ir.Descriptor) bool {
	if src.Qualifiers()&^target.Qualifiers() != 0 {
		return false
	}
	t, s := target.WithQualifiers(0), src.WithQualifiers(0)
	if t.Equal(s) {
		return true
	}
	return e.isClassValue(t) && e.isClassValue(s) && e.oracle.IsBaseOf(t.Base(), s.Base())
}

// valueConverts handles conversions between top-level unqualified,
// non-reference types.
func (e *Engine) valueConverts(src, dst ir.Descriptor, allowUser bool) bool {
	switch {
	case src.Equal(dst):
		return true
	case isArithmetic(dst) && (isArithmetic(src) || e.isUnscopedEnum(src)):
		return true
	case dst.Shape() == ir.ShapeValue && dst.Base() == ir.Bool && (src.IsPointer() || src.IsMember()):
		return true
	case src.IsPointer() && dst.IsPointer():
		return e.pointerConverts(src, dst)
	case src.IsMember() && dst.IsMember():
		// base member pointers convert to derived member pointers
		return src.Elem().Equal(dst.Elem()) && e.oracle.IsBaseOf(src.Owner(), dst.Owner())
	case e.isClassValue(src) && e.isClassValue(dst) && e.oracle.IsBaseOf(dst.Base(), src.Base()):
		return true
	case allowUser && (e.isRecordValue(src) || e.isRecordValue(dst)):
		return e.userConverts(src, dst)
	}
	return false
}

// pointerConverts covers qualification, void* and derived-to-base pointer
// conversions of one level.
func (e *Engine) pointerConverts(src, dst ir.Descriptor) bool {
	s, t := src.Elem(), dst.Elem()
	if s.Qualifiers()&^t.Qualifiers() != 0 {
		return false
	}
	s0, t0 := s.WithQualifiers(0), t.WithQualifiers(0)
	switch {
	case s0.Equal(t0):
		return true
	case t0.IsVoid():
		return !s0.IsFunction()
	}
	return e.isClassValue(s0) && e.isClassValue(t0) && e.oracle.IsBaseOf(t0.Base(), s0.Base())
}

// userConverts tries one converting constructor of dst or one conversion
// operator of src, each followed or preceded by standard conversions only.
func (e *Engine) userConverts(src, dst ir.Descriptor) bool {
	if e.isRecordValue(dst) {
		for _, c := range e.oracle.Constructors(dst.Base()) {
			if c.Explicit || len(c.Params) == 0 || !c.Accepts(1) {
				continue
			}
			if e.converts(src, c.Params[0], false) {
				return true
			}
		}
	}
	if e.isRecordValue(src) {
		for _, conv := range e.oracle.Conversions(src.Base()) {
			if e.converts(conv, dst, false) {
				return true
			}
		}
	}
	return false
}

func (e *Engine) isUnscopedEnum(d ir.Descriptor) bool {
	return e.isEnumValue(d) && !e.oracle.IsScopedEnum(d.Base())
}

// constructible reports whether t can be direct-initialized from args.
func (e *Engine) constructible(t ir.Descriptor, args []ir.Descriptor) bool {
	switch {
	case t.IsReference():
		return len(args) == 1 && e.converts(args[0], t, true)
	case t.IsVoid(), t.IsFunction():
		return false
	case t.IsArray():
		// only a bounded array of default-constructible elements
		return t.Shape() == ir.ShapeArray && len(args) == 0 && e.constructible(t.Elem(), nil)
	}
	t = t.WithQualifiers(0)

	switch {
	case t.IsPointer(), t.IsMember(), isArithmetic(t), e.isEnumValue(t):
		switch len(args) {
		case 0:
			return true
		case 1:
			return e.converts(args[0], t, true)
		}
		return false
	case e.isRecordValue(t):
		return e.constructibleRecord(t, args)
	}
	return false
}

func (e *Engine) constructibleRecord(t ir.Descriptor, args []ir.Descriptor) bool {
	id := t.Base()
	if !e.oracle.IsComplete(id) || e.oracle.IsAbstract(id) {
		return false
	}
	ctors := e.oracle.Constructors(id)
	for _, c := range ctors {
		if e.matchOverload(c, args) {
			return true
		}
	}
	switch len(args) {
	case 0:
		// the implicit default constructor exists only without declared ones
		return len(ctors) == 0
	case 1:
		// copy construction, from the same class or a derived one
		src := args[0]
		if src.IsReference() {
			src = src.Elem()
		}
		return e.isSuper(t, src)
	}
	return false
}

// callable reports whether d can be invoked with args: a function, a
// reference or pointer to one, a member pointer applied to an object, or a
// class with a matching call operator.
func (e *Engine) callable(d ir.Descriptor, args []ir.Descriptor) bool {
	f := d
	if f.IsReference() {
		f = f.Elem()
	}
	if f.IsPointer() && f.Depth() == 1 && f.Elem().IsFunction() {
		f = f.Elem()
	}
	switch {
	case f.IsFunction():
		return e.matchOverload(ir.Overload{Params: f.Params(), Variadic: f.Variadic()}, args)
	case f.IsMember():
		if len(args) == 0 || !e.isObjectOf(args[0], f.Owner()) {
			return false
		}
		if m := f.Elem(); m.IsFunction() {
			return e.matchOverload(ir.Overload{Params: m.Params(), Variadic: m.Variadic()}, args[1:])
		}
		// a data member pointer "called" on an object reads the member
		return len(args) == 1
	case e.isRecordValue(f.WithQualifiers(0)):
		for _, o := range e.oracle.CallOperators(f.Base()) {
			if e.matchOverload(o, args) {
				return true
			}
		}
	}
	return false
}

// isObjectOf reports whether arg designates an object of owner or of a
// class derived from it, directly or through one pointer level.
func (e *Engine) isObjectOf(arg ir.Descriptor, owner ir.TypeID) bool {
	if arg.IsReference() {
		arg = arg.Elem()
	}
	if arg.IsPointer() {
		if arg.Depth() != 1 {
			return false
		}
		arg = arg.Elem()
	}
	arg = arg.WithQualifiers(0)
	if arg.Shape() != ir.ShapeValue {
		return false
	}
	return arg.Base() == owner || e.oracle.IsBaseOf(owner, arg.Base())
}

// matchOverload checks arity, then converts each fixed argument to its
// parameter. Arguments past the fixed parameters go to the variadic tail.
func (e *Engine) matchOverload(o ir.Overload, args []ir.Descriptor) bool {
	if !o.Accepts(len(args)) {
		return false
	}
	for i, a := range args {
		if i >= len(o.Params) {
			if a.IsVoid() {
				return false
			}
			continue
		}
		if !e.converts(a, o.Params[i], true) {
			return false
		}
	}
	return true
}

// assignable reports whether an expression of type t can be the left side
// of an assignment from an expression of type args[0]. With no argument the
// right side is a const lvalue of the same type.
func (e *Engine) assignable(t ir.Descriptor, args []ir.Descriptor) bool {
	var dst ir.Descriptor
	switch {
	case t.Shape() == ir.ShapeLRef:
		dst = t.Elem()
	case e.isRecordValue(t):
		dst = t
	default:
		return false
	}
	if dst.Qualifiers()&ir.Const != 0 || dst.IsArray() || dst.IsFunction() || dst.IsVoid() {
		return false
	}
	var v ir.Descriptor
	switch len(args) {
	case 0:
		v = ir.LRef(dst.AddQualifiers(ir.Const))
	case 1:
		v = args[0]
	default:
		return false
	}
	return e.converts(v, dst.WithQualifiers(0), true)
}
