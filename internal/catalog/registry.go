package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/traitkit/internal/compiler"
	"github.com/roach88/traitkit/internal/engine"
	"github.com/roach88/traitkit/internal/ir"
)

// InvalidError is returned by New when a catalog fails validation.
type InvalidError struct {
	Errors []compiler.ValidationError
}

func (e *InvalidError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid catalog: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid catalog: %d errors:\n  %s", len(e.Errors), strings.Join(msgs, "\n  "))
}

// entry is a declared type with its descriptor text parsed and its base
// closure computed.
type entry struct {
	info        ir.TypeInfo
	ancestors   map[ir.TypeID]bool
	polymorphic bool
	ctors       []ir.Overload
	calls       []ir.Overload
	convs       []ir.Descriptor
	ops         ir.OperatorSet
}

// Registry answers nominal type facts from a validated catalog.
// It is immutable after New and safe for concurrent use.
type Registry struct {
	types map[ir.TypeID]*entry
	order []ir.TypeID
	hash  string
}

var _ engine.Oracle = (*Registry)(nil)

// New validates types and builds a Registry. Validation failures are
// reported together as an *InvalidError.
func New(types []ir.TypeInfo) (*Registry, error) {
	if errs := compiler.Validate(types); len(errs) > 0 {
		return nil, &InvalidError{Errors: errs}
	}

	hash, err := ir.CatalogHash(types)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		types: make(map[ir.TypeID]*entry, len(types)),
		order: make([]ir.TypeID, 0, len(types)),
		hash:  hash,
	}
	for _, t := range types {
		e := &entry{info: t}
		if e.ctors, err = overloads(t.Constructors); err != nil {
			return nil, fmt.Errorf("%s constructors: %w", t.Name, err)
		}
		if e.calls, err = overloads(t.CallOperators); err != nil {
			return nil, fmt.Errorf("%s call operators: %w", t.Name, err)
		}
		for _, c := range t.Conversions {
			d, err := ir.Parse(c)
			if err != nil {
				return nil, fmt.Errorf("%s conversions: %w", t.Name, err)
			}
			e.convs = append(e.convs, d)
		}
		for _, op := range t.Operators {
			bit, _ := ir.ParseOperator(op)
			e.ops |= bit
		}
		r.types[t.Name] = e
		r.order = append(r.order, t.Name)
	}

	for _, e := range r.types {
		e.ancestors = make(map[ir.TypeID]bool)
		r.collectAncestors(e.info.Bases, e.ancestors)
		e.polymorphic = e.info.Polymorphic
		for a := range e.ancestors {
			e.polymorphic = e.polymorphic || r.types[a].info.Polymorphic
		}
	}
	return r, nil
}

// collectAncestors walks base edges. Validation guarantees the graph is
// acyclic and every base is declared.
func (r *Registry) collectAncestors(bases []ir.TypeID, into map[ir.TypeID]bool) {
	for _, b := range bases {
		if into[b] {
			continue
		}
		into[b] = true
		r.collectAncestors(r.types[b].info.Bases, into)
	}
}

func overloads(sigs []ir.Signature) ([]ir.Overload, error) {
	out := make([]ir.Overload, 0, len(sigs))
	for _, s := range sigs {
		o := ir.Overload{Variadic: s.Variadic, Explicit: s.Explicit, Defaults: s.Defaults}
		for _, p := range s.Params {
			d, err := ir.Parse(p)
			if err != nil {
				return nil, err
			}
			o.Params = append(o.Params, d)
		}
		out = append(out, o)
	}
	return out, nil
}

// Hash identifies the catalog contents independent of declaration order.
func (r *Registry) Hash() string { return r.hash }

// Len returns the number of declared types.
func (r *Registry) Len() int { return len(r.order) }

// Types returns the declarations in their original order.
func (r *Registry) Types() []ir.TypeInfo {
	out := make([]ir.TypeInfo, len(r.order))
	for i, id := range r.order {
		out[i] = r.types[id].info
	}
	return out
}

// Lookup returns the declaration for id.
func (r *Registry) Lookup(id ir.TypeID) (ir.TypeInfo, bool) {
	e, ok := r.types[id]
	if !ok {
		return ir.TypeInfo{}, false
	}
	return e.info, true
}

// Ancestors returns every direct and indirect base of id, sorted by name.
func (r *Registry) Ancestors(id ir.TypeID) []ir.TypeID {
	e, ok := r.types[id]
	if !ok {
		return nil
	}
	out := make([]ir.TypeID, 0, len(e.ancestors))
	for a := range e.ancestors {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) get(id ir.TypeID) *entry {
	if e, ok := r.types[id]; ok {
		return e
	}
	return &entry{}
}

func (r *Registry) IsClass(id ir.TypeID) bool { return r.get(id).info.Kind == ir.KindClass }
func (r *Registry) IsEnum(id ir.TypeID) bool { return r.get(id).info.Kind == ir.KindEnum }
func (r *Registry) IsUnion(id ir.TypeID) bool { return r.get(id).info.Kind == ir.KindUnion }

func (r *Registry) IsScopedEnum(id ir.TypeID) bool {
	e := r.get(id)
	return e.info.Kind == ir.KindEnum && e.info.Scoped
}

func (r *Registry) IsAbstract(id ir.TypeID) bool { return r.get(id).info.Abstract }
func (r *Registry) IsFinal(id ir.TypeID) bool { return r.get(id).info.Final }
func (r *Registry) IsPolymorphic(id ir.TypeID) bool { return r.get(id).polymorphic }
func (r *Registry) IsTrivial(id ir.TypeID) bool { return r.get(id).info.Trivial }
func (r *Registry) IsLiteral(id ir.TypeID) bool { return r.get(id).info.Literal }
func (r *Registry) IsEmpty(id ir.TypeID) bool { return r.get(id).info.Empty }
func (r *Registry) IsTemplate(id ir.TypeID) bool { return r.get(id).info.Template }

// IsComplete reports whether id is declared and defined.
func (r *Registry) IsComplete(id ir.TypeID) bool {
	e, ok := r.types[id]
	return ok && !e.info.Incomplete
}

// IsBaseOf reports whether base is a proper ancestor of derived.
func (r *Registry) IsBaseOf(base, derived ir.TypeID) bool {
	return r.get(derived).ancestors[base]
}

// Size returns the declared size. Incomplete types and types declared
// without a size have none; enums fall back to their underlying type in
// the engine.
func (r *Registry) Size(id ir.TypeID) (int64, bool) {
	e := r.get(id)
	if e.info.Incomplete || e.info.Size <= 0 {
		return 0, false
	}
	return e.info.Size, true
}

func (r *Registry) Underlying(id ir.TypeID) ir.TypeID { return r.get(id).info.Underlying }
func (r *Registry) Constructors(id ir.TypeID) []ir.Overload { return r.get(id).ctors }
func (r *Registry) CallOperators(id ir.TypeID) []ir.Overload { return r.get(id).calls }
func (r *Registry) Conversions(id ir.TypeID) []ir.Descriptor { return r.get(id).convs }
func (r *Registry) Operators(id ir.TypeID) ir.OperatorSet { return r.get(id).ops }

// Destructible reports whether a complete type keeps its destructor.
func (r *Registry) Destructible(id ir.TypeID) bool {
	return r.IsComplete(id) && !r.get(id).info.NoDestructor
}
