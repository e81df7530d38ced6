package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryKind selects which engine entry point evaluates a Query.
type QueryKind string

const (
	QueryTest      QueryKind = "test"
	QueryTransform QueryKind = "transform"
	QueryPointers  QueryKind = "pointers"
	QueryArrays    QueryKind = "arrays"
	QuerySize      QueryKind = "size"
	QueryCatch     QueryKind = "catch"
	QueryOnlyIf    QueryKind = "onlyif"
	QueryIfOrElse  QueryKind = "ifelse"
)

// Query is one engine request. Which fields apply depends on Kind:
//
//	test       Tag, Type, Args
//	transform  Tag, Type, Extents (ARR with an extent)
//	pointers   Type, Depth, Remove
//	arrays     Type, Extents
//	size       Type, Condition (nil means COMPLET of Type)
//	catch      Type is the handler, Args[0] the thrown type
//	onlyif     Type, Condition
//	ifelse     Type when Condition holds, else Args[0]
type Query struct {
	Kind      QueryKind    `json:"kind" yaml:"kind"`
	Tag       Tag          `json:"tag,omitempty" yaml:"tag,omitempty"`
	Type      Descriptor   `json:"type" yaml:"type"`
	Args      []Descriptor `json:"args,omitempty" yaml:"args,omitempty"`
	Extents   []Extent     `json:"extents,omitempty" yaml:"extents,omitempty"`
	Depth     int          `json:"depth,omitempty" yaml:"depth,omitempty"`
	Remove    bool         `json:"remove,omitempty" yaml:"remove,omitempty"`
	Condition *bool        `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// String renders q as a query script line.
func (q Query) String() string {
	var b strings.Builder
	switch q.Kind {
	case QueryTest:
		fmt.Fprintf(&b, "test %s %s", q.Tag, q.Type)
		for _, a := range q.Args {
			fmt.Fprintf(&b, "; %s", a)
		}
	case QueryTransform:
		fmt.Fprintf(&b, "transform %s %s", q.Tag, q.Type)
		for _, e := range q.Extents {
			fmt.Fprintf(&b, "; %s", e)
		}
	case QueryPointers:
		op := "ptr+"
		if q.Remove {
			op = "ptr-"
		}
		fmt.Fprintf(&b, "%s %s; %d", op, q.Type, q.Depth)
	case QueryArrays:
		fmt.Fprintf(&b, "arr %s", q.Type)
		for _, e := range q.Extents {
			fmt.Fprintf(&b, "; %s", e)
		}
	case QuerySize:
		fmt.Fprintf(&b, "size %s", q.Type)
		if q.Condition != nil {
			fmt.Fprintf(&b, "; %t", *q.Condition)
		}
	case QueryCatch:
		fmt.Fprintf(&b, "catch %s", q.Type)
		for _, a := range q.Args {
			fmt.Fprintf(&b, "; %s", a)
		}
	case QueryOnlyIf, QueryIfOrElse:
		fmt.Fprintf(&b, "%s %s", q.Kind, q.Type)
		for _, a := range q.Args {
			fmt.Fprintf(&b, "; %s", a)
		}
		if q.Condition != nil {
			fmt.Fprintf(&b, "; %t", *q.Condition)
		}
	default:
		fmt.Fprintf(&b, "%s %s", q.Kind, q.Type)
	}
	return b.String()
}

// Canonical returns the canonical JSON form of q used for hashing.
// Fields that do not apply to q.Kind are omitted.
func (q Query) Canonical() ([]byte, error) {
	obj := map[string]any{
		"kind": string(q.Kind),
		"type": q.Type.Key(),
	}
	if q.Tag != 0 {
		obj["tag"] = q.Tag.String()
	}
	if len(q.Args) > 0 {
		args := make([]string, len(q.Args))
		for i, a := range q.Args {
			args[i] = a.Key()
		}
		obj["args"] = args
	}
	if len(q.Extents) > 0 {
		exts := make([]any, len(q.Extents))
		for i, e := range q.Extents {
			exts[i] = int64(e)
		}
		obj["extents"] = exts
	}
	if q.Kind == QueryPointers {
		obj["depth"] = int64(q.Depth)
		obj["remove"] = q.Remove
	}
	if q.Condition != nil {
		obj["condition"] = *q.Condition
	}
	return MarshalCanonical(obj)
}

// OutcomeKind classifies an Outcome.
type OutcomeKind string

const (
	OutcomeBool  OutcomeKind = "bool"
	OutcomeType  OutcomeKind = "type"
	OutcomeSize  OutcomeKind = "size"
	OutcomeError OutcomeKind = "error"
)

// Outcome is the tagged result of evaluating a Query. A rejected
// precondition is an Outcome too, so callers can tell "not applicable"
// apart from an answer.
type Outcome struct {
	Kind    OutcomeKind `json:"kind" yaml:"kind"`
	Value   string      `json:"value,omitempty" yaml:"value,omitempty"`
	Code    string      `json:"code,omitempty" yaml:"code,omitempty"`
	Message string      `json:"message,omitempty" yaml:"message,omitempty"`
}

func BoolOutcome(b bool) Outcome {
	return Outcome{Kind: OutcomeBool, Value: strconv.FormatBool(b)}
}

func TypeOutcome(d Descriptor) Outcome {
	return Outcome{Kind: OutcomeType, Value: d.String()}
}

func SizeOutcome(n int64) Outcome {
	return Outcome{Kind: OutcomeSize, Value: strconv.FormatInt(n, 10)}
}

func ErrorOutcome(code, message string) Outcome {
	return Outcome{Kind: OutcomeError, Code: code, Message: message}
}

// IsError reports whether the outcome is a rejected precondition.
func (o Outcome) IsError() bool { return o.Kind == OutcomeError }

// String renders the outcome the way query scripts write expectations:
// "true", "int32 const&", "8", or "error(NEGATIVE_DEPTH)".
func (o Outcome) String() string {
	if o.Kind == OutcomeError {
		return "error(" + o.Code + ")"
	}
	return o.Value
}
