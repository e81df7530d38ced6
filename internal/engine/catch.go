package engine

import (
	"github.com/roach88/traitkit/internal/ir"
)

// CatchMatches reports whether a handler declared with type handler catches
// an exception thrown from an expression of type thrown.
//
// The thrown object has the decayed, unqualified type of the expression. A
// class handler, by value or by reference, catches that class and classes
// derived from it. A pointer handler catches pointers that convert to it by
// qualification, derived-to-base or void* conversion.
func (e *Engine) CatchMatches(handler, thrown ir.Descriptor) bool {
	if handler.IsZero() || thrown.IsZero() || thrown.IsVoid() {
		return false
	}
	h := handler
	if h.IsReference() {
		h = h.Elem()
	}
	h = h.WithQualifiers(0)
	ex := thrownType(thrown)

	e.logger.Debug("catch match", "handler", handler.Key(), "thrown", ex.Key())

	switch {
	case h.Equal(ex):
		return true
	case e.isClassValue(h) && e.isClassValue(ex):
		return e.oracle.IsBaseOf(h.Base(), ex.Base())
	case h.IsPointer() && ex.IsPointer():
		return e.pointerConverts(ex, h)
	}
	return false
}

// thrownType is the type of the exception object a throw expression of
// type d creates.
func thrownType(d ir.Descriptor) ir.Descriptor {
	if d.IsReference() {
		d = d.Elem()
	}
	switch {
	case d.IsArray():
		return ir.Pointer(d.Elem())
	case d.IsFunction():
		return ir.Pointer(d)
	}
	return d.WithQualifiers(0)
}
