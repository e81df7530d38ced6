package engine

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/roach88/traitkit/internal/ir"
)

// pattern selects the descriptors a rule applies to. Empty fields match
// anything.
type pattern struct {
	shapes   []ir.Shape
	bases    []ir.TypeID   // implies a Value shape
	quals    ir.Qualifiers // required qualifiers
	anyQuals bool          // at least one qualifier
	exact    bool          // qualifiers must equal quals
}

func (p pattern) matches(d ir.Descriptor) bool {
	if len(p.shapes) > 0 && !slices.Contains(p.shapes, d.Shape()) {
		return false
	}
	if len(p.bases) > 0 && (d.Shape() != ir.ShapeValue || !slices.Contains(p.bases, d.Base())) {
		return false
	}
	return p.matchesQuals(d.Qualifiers())
}

func (p pattern) matchesQuals(q ir.Qualifiers) bool {
	if p.exact && q != p.quals {
		return false
	}
	if q&p.quals != p.quals {
		return false
	}
	return !p.anyQuals || q != 0
}

// rank orders patterns from generic to specific. A named base outranks any
// qualifier requirement, which outranks a narrower shape set.
func (p pattern) rank() int {
	r := 0
	if len(p.bases) > 0 {
		r += 1000
	}
	r += 100 * bits.OnesCount8(uint8(p.quals))
	if p.anyQuals {
		r += 100
	}
	if p.exact {
		r += 50
	}
	if len(p.shapes) > 0 {
		r += 10 - len(p.shapes)
	}
	return r
}

// overlaps reports whether some descriptor could match both patterns.
func (p pattern) overlaps(o pattern) bool {
	if len(p.shapes) > 0 && len(o.shapes) > 0 && !slices.ContainsFunc(p.shapes, func(s ir.Shape) bool {
		return slices.Contains(o.shapes, s)
	}) {
		return false
	}
	if len(p.bases) > 0 && len(o.bases) > 0 && !slices.ContainsFunc(p.bases, func(id ir.TypeID) bool {
		return slices.Contains(o.bases, id)
	}) {
		return false
	}
	if (len(p.bases) > 0 && len(o.shapes) > 0 && !slices.Contains(o.shapes, ir.ShapeValue)) ||
		(len(o.bases) > 0 && len(p.shapes) > 0 && !slices.Contains(p.shapes, ir.ShapeValue)) {
		return false
	}
	for q := ir.Qualifiers(0); q <= ir.Const|ir.Volatile; q++ {
		if p.matchesQuals(q) && o.matchesQuals(q) {
			return true
		}
	}
	return false
}

// rule is one case of a tag's rule table.
type rule[R any] struct {
	name    string
	pattern pattern
	eval    func(e *Engine, d ir.Descriptor, args []ir.Descriptor) R
}

// ruleSet holds the cases of one tag. Dispatch picks the single most
// specific matching rule, or the fallback when none match.
type ruleSet[R any] struct {
	tag      ir.Tag
	rules    []rule[R]
	fallback func(e *Engine, d ir.Descriptor, args []ir.Descriptor) R
}

func (rs *ruleSet[R]) dispatch(e *Engine, d ir.Descriptor, args []ir.Descriptor) R {
	best, bestRank := -1, -1
	for i, r := range rs.rules {
		if !r.pattern.matches(d) {
			continue
		}
		if rank := r.pattern.rank(); rank > bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		e.logger.Debug("no rule matched, using fallback", "tag", rs.tag, "type", d.Key())
		return rs.fallback(e, d, args)
	}
	e.logger.Debug("rule selected",
		"tag", rs.tag,
		"type", d.Key(),
		"rule", rs.rules[best].name,
		"rank", bestRank,
	)
	return rs.rules[best].eval(e, d, args)
}

// checkRanks rejects a table in which two rules that can match the same
// descriptor have the same rank, since dispatch order would then decide.
func (rs *ruleSet[R]) checkRanks() error {
	for i, a := range rs.rules {
		for _, b := range rs.rules[i+1:] {
			if a.pattern.rank() == b.pattern.rank() && a.pattern.overlaps(b.pattern) {
				return fmt.Errorf("%s: rules %q and %q are equally specific (rank %d)",
					rs.tag, a.name, b.name, a.pattern.rank())
			}
		}
	}
	return nil
}

func always[R any](v R) func(*Engine, ir.Descriptor, []ir.Descriptor) R {
	return func(*Engine, ir.Descriptor, []ir.Descriptor) R { return v }
}
