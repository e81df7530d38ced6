package engine

// Constant is a boolean known when the rule tables are built.
type Constant bool

const (
	AlwaysTrue  Constant = true
	AlwaysFalse Constant = false
)

// V returns the constant's value.
func (c Constant) V() bool { return bool(c) }

// AllIsTrue is the conjunction of bs. The empty conjunction is true.
func AllIsTrue(bs ...bool) bool {
	for _, b := range bs {
		if !b {
			return false
		}
	}
	return true
}

// OneIsTrue is the disjunction of bs. The empty disjunction is false.
func OneIsTrue(bs ...bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}
