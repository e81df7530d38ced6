package engine

import (
	"github.com/roach88/traitkit/internal/ir"
)

const formFlags = ir.TagRef | ir.TagRVal | ir.TagPtr | ir.TagArr

var slimRules *ruleSet[ir.Descriptor]

func init() {
	slimRules = &ruleSet[ir.Descriptor]{
		tag: ir.TagSlim,
		rules: []rule[ir.Descriptor]{
			{"reference", exactly(referenceShapes...), func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) ir.Descriptor {
				return e.slim(d.Elem())
			}},
			{"qualified", pattern{shapes: qualifiableShapes, anyQuals: true}, func(e *Engine, d ir.Descriptor, _ []ir.Descriptor) ir.Descriptor {
				return e.slim(d.WithQualifiers(0))
			}},
			{"array", exactly(arrayShapes...), func(_ *Engine, d ir.Descriptor, _ []ir.Descriptor) ir.Descriptor {
				return ir.Pointer(unqualified(d.Elem()))
			}},
			{"pointer", exactly(ir.ShapePointer), func(_ *Engine, d ir.Descriptor, _ []ir.Descriptor) ir.Descriptor {
				return ir.Pointer(unqualified(d.Elem()))
			}},
			{"function", exactly(ir.ShapeFunction), func(_ *Engine, d ir.Descriptor, _ []ir.Descriptor) ir.Descriptor {
				return ir.Pointer(d)
			}},
		},
		fallback: func(_ *Engine, d ir.Descriptor, _ []ir.Descriptor) ir.Descriptor { return d },
	}
	if err := slimRules.checkRanks(); err != nil {
		panic("engine: " + err.Error())
	}
}

// unqualified strips qualifiers at every pointer and array level of d.
func unqualified(d ir.Descriptor) ir.Descriptor {
	d = d.WithQualifiers(0)
	switch {
	case d.IsPointer():
		return ir.Pointer(unqualified(d.Elem()))
	case d.IsArray():
		return ir.ArrayOf(unqualified(d.Elem()), d.Extent())
	}
	return d
}

// Transform rewrites d according to tag:
//
//	FLAGS|REMOVE  strip the named forms and qualifiers, one level each
//	FLAGS         add at most one form, then the named qualifiers
//	SLIM          fully decayed value type
//
// Qualifier and REMOVE rewrites never fail. Adding an array form to a type
// that cannot be an array element fails with ErrCodeIllFormed; naming two
// forms, or a tag with no rewrite, fails with ErrCodeUnsupportedTag.
func (e *Engine) Transform(tag ir.Tag, d ir.Descriptor) (ir.Descriptor, error) {
	switch {
	case tag == ir.TagSlim:
		return e.slim(d), nil
	case tag.Has(ir.TagRemove):
		return remove(tag, d), nil
	case tag.IsCombinable():
		return e.add(tag, d, ir.Unbounded)
	}
	return ir.Descriptor{}, newPreconditionError(ErrCodeUnsupportedTag, d, "tag %s has no transform", tag)
}

// TransformExtent is Transform for an additive tag naming ARR, with the
// array built at extent ext instead of unbounded. Other flags apply on top
// as in Transform. A tag that builds no array rejects the extent with
// ErrCodeBadQuery.
func (e *Engine) TransformExtent(tag ir.Tag, d ir.Descriptor, ext ir.Extent) (ir.Descriptor, error) {
	if !tag.Has(ir.TagArr) || tag.Has(ir.TagRemove) {
		return ir.Descriptor{}, newPreconditionError(ErrCodeBadQuery, d, "extent %d given to %s, which builds no array", ext, tag)
	}
	return e.add(tag, d, ext)
}

func tagQualifiers(tag ir.Tag) ir.Qualifiers {
	var q ir.Qualifiers
	if tag.Has(ir.TagConst) {
		q |= ir.Const
	}
	if tag.Has(ir.TagVol) {
		q |= ir.Volatile
	}
	return q
}

// remove strips, in order: a reference, one pointer level, one array level,
// then qualifiers. Absent forms are skipped, so every removal is a no-op
// on a descriptor that lacks it.
func remove(tag ir.Tag, d ir.Descriptor) ir.Descriptor {
	switch {
	case tag.Has(ir.TagRef) && d.IsReference():
		d = d.Elem()
	case tag.Has(ir.TagRVal) && d.Shape() == ir.ShapeRRef:
		d = d.Elem()
	}
	if tag.Has(ir.TagPtr) && d.IsPointer() {
		d = d.Elem()
	}
	if tag.Has(ir.TagArr) && d.IsArray() {
		d = d.Elem()
	}
	if q := tagQualifiers(tag); q != 0 {
		d = d.RemoveQualifiers(q)
	}
	return d
}

// add applies the form first and the qualifiers second, so that
// Test(tag, e.add(tag, d, ext)) holds whenever the result can carry both.
// ext is the extent of an added array form.
func (e *Engine) add(tag ir.Tag, d ir.Descriptor, ext ir.Extent) (ir.Descriptor, error) {
	form := tag & formFlags
	if form == ir.TagRef|ir.TagRVal {
		// lvalue wins, as in reference collapsing
		form = ir.TagRef
	}
	switch form {
	case 0:
	case ir.TagRef:
		d = ir.LRef(d)
	case ir.TagRVal:
		d = ir.RRef(d)
	case ir.TagPtr:
		d = ir.Pointer(d)
	case ir.TagArr:
		a, err := e.ArrayOf(d, ext)
		if err != nil {
			return ir.Descriptor{}, err
		}
		d = a
	default:
		return ir.Descriptor{}, newPreconditionError(ErrCodeUnsupportedTag, d, "%s names more than one form", tag)
	}
	if q := tagQualifiers(tag); q != 0 {
		d = d.AddQualifiers(q)
	}
	return d, nil
}

// slim is the maximally decayed value type: reference stripped, then
// qualifiers, then arrays and functions decayed to pointers, with no
// qualifiers left along the pointee chain.
func (e *Engine) slim(d ir.Descriptor) ir.Descriptor {
	key := cacheKey("slim", ir.TagSlim, d, nil)
	if v, ok := e.cacheGet(key); ok {
		return v.(ir.Descriptor)
	}
	v := slimRules.dispatch(e, d, nil)
	e.cachePut(key, v)
	return v
}

// ArrayOf builds an array of ext elements of d: Unbounded gives T[], zero
// the incomplete T[0], and a positive extent T[N].
func (e *Engine) ArrayOf(d ir.Descriptor, ext ir.Extent) (ir.Descriptor, error) {
	if ext < ir.Unbounded {
		return ir.Descriptor{}, newPreconditionError(ErrCodeBadExtent, d, "extent %d", ext)
	}
	a, err := ir.TryArrayOf(d, ext)
	if err != nil {
		return ir.Descriptor{}, newPreconditionError(ErrCodeIllFormed, d, "%v", err)
	}
	return a, nil
}

// PointerLevels adds n pointer levels to d, or removes n when remove is set.
// Depth zero is the identity. A negative n, or removing more levels than d
// has, is rejected before any level is touched.
func (e *Engine) PointerLevels(d ir.Descriptor, n int, remove bool) (ir.Descriptor, error) {
	if n < 0 {
		return ir.Descriptor{}, newPreconditionError(ErrCodeNegativeDepth, d, "pointer depth %d", n)
	}
	if !remove {
		return ir.PointerN(d, n), nil
	}
	if depth := d.Depth(); n > depth {
		return ir.Descriptor{}, newPreconditionError(ErrCodeDepthUnderflow, d,
			"cannot remove %d pointer levels from depth %d", n, depth)
	}
	for range n {
		d = d.Elem()
	}
	return d, nil
}

// ArrayLevels builds a multi-dimensional array, the first extent
// outermost: ArrayLevels(int32, 2, 3) is int32[2][3]. Every extent and the
// element type are checked before anything is built.
func (e *Engine) ArrayLevels(d ir.Descriptor, exts ...ir.Extent) (ir.Descriptor, error) {
	for _, ext := range exts {
		if ext < ir.Unbounded {
			return ir.Descriptor{}, newPreconditionError(ErrCodeBadExtent, d, "extent %d", ext)
		}
	}
	if len(exts) > 0 && (d.IsReference() || d.IsFunction() || d.IsVoid()) {
		return ir.Descriptor{}, newPreconditionError(ErrCodeIllFormed, d, "%s cannot be an array element", d)
	}
	for i := len(exts) - 1; i >= 0; i-- {
		d = ir.ArrayOf(d, exts[i])
	}
	return d, nil
}

// IfOrElse selects a when cond holds and b otherwise.
func IfOrElse(cond bool, a, b ir.Descriptor) ir.Descriptor {
	if cond {
		return a
	}
	return b
}

// OnlyIf passes d through when cond holds and rejects it otherwise.
func OnlyIf(d ir.Descriptor, cond bool) (ir.Descriptor, error) {
	if !cond {
		return ir.Descriptor{}, newPreconditionError(ErrCodeIncompatible, d, "incompatible type")
	}
	return d, nil
}
