package script

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/johnsiilver/halfpike"

	"github.com/roach88/traitkit/internal/engine"
	"github.com/roach88/traitkit/internal/ir"
)

// Statement is one query line of a script.
type Statement struct {
	// Line is the 1-based source line, zero for statements built by ParseLine.
	Line int

	Query ir.Query

	// Expect is the outcome written after "=>", if any.
	Expect *ir.Outcome
}

// Script is a parsed query script.
type Script struct {
	Statements []Statement
}

// SyntaxError reports a line that is not a valid statement.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[Line %d] %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse reads a script. Blank lines and lines starting with "#" or "//" are
// skipped. Parsing stops at the first invalid line.
func Parse(ctx context.Context, input string) (*Script, error) {
	s := &Script{}
	if strings.TrimSpace(input) == "" {
		return s, nil
	}
	p := &parser{script: s}
	err := halfpike.Parse(ctx, input, p)
	if p.err != nil {
		return nil, p.err
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseLine parses a single statement.
func ParseLine(text string) (Statement, error) {
	st, err := parseStatement(text)
	if err != nil {
		return Statement{}, &SyntaxError{Text: strings.TrimSpace(text), Err: err}
	}
	return st, nil
}

// parser implements halfpike.Parser's object contract.
type parser struct {
	script *Script
	err    error
}

func (p *parser) Validate() error {
	return p.err
}

func (p *parser) Start(ctx context.Context, hp *halfpike.Parser) halfpike.ParseFn {
	return p.parseStatements
}

func (p *parser) parseStatements(ctx context.Context, hp *halfpike.Parser) halfpike.ParseFn {
	for {
		if ctx.Err() != nil {
			p.err = ctx.Err()
			return nil
		}

		line := hp.Next()
		eof := hp.EOF(line)

		text := strings.TrimSpace(line.Raw)
		if text != "" && !isComment(text) {
			st, err := parseStatement(text)
			if err != nil {
				p.err = &SyntaxError{Line: line.LineNum, Text: text, Err: err}
				return nil
			}
			st.Line = line.LineNum
			p.script.Statements = append(p.script.Statements, st)
		}

		if eof {
			return nil
		}
	}
}

func isComment(text string) bool {
	return strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//")
}

// parseStatement parses "keyword operands [=> expected]".
func parseStatement(text string) (Statement, error) {
	body, expect, hasExpect := strings.Cut(text, "=>")

	var st Statement
	q, err := parseQuery(strings.TrimSpace(body))
	if err != nil {
		return st, err
	}
	st.Query = q

	if hasExpect {
		o, err := ParseOutcome(strings.TrimSpace(expect))
		if err != nil {
			return st, err
		}
		st.Expect = &o
	}
	return st, nil
}

func parseQuery(body string) (ir.Query, error) {
	keyword, rest, _ := strings.Cut(body, " ")
	parts := strings.Split(rest, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	head, operands := parts[0], parts[1:]
	if head == "" {
		return ir.Query{}, fmt.Errorf("%s: missing type", keyword)
	}

	var (
		q   ir.Query
		err error
	)
	switch keyword {
	case "test", "transform":
		tagText, typeText, ok := strings.Cut(head, " ")
		if !ok {
			return q, fmt.Errorf("%s: want TAG and type", keyword)
		}
		if q.Tag, err = ir.ParseTag(tagText); err != nil {
			return q, err
		}
		if q.Type, err = ir.Parse(strings.TrimSpace(typeText)); err != nil {
			return q, err
		}
		if keyword == "test" {
			q.Kind = ir.QueryTest
			q.Args, err = parseTypes(operands)
			return q, err
		}
		q.Kind = ir.QueryTransform
		if len(operands) > 1 {
			return q, fmt.Errorf("transform: at most one extent, got %d", len(operands))
		}
		q.Extents, err = parseExtents(operands)
		return q, err

	case "ptr+", "ptr-":
		q.Kind = ir.QueryPointers
		q.Remove = keyword == "ptr-"
		if q.Type, err = ir.Parse(head); err != nil {
			return q, err
		}
		if len(operands) != 1 {
			return q, fmt.Errorf("%s: want one depth, got %d", keyword, len(operands))
		}
		if q.Depth, err = strconv.Atoi(operands[0]); err != nil {
			return q, fmt.Errorf("%s: invalid depth %q", keyword, operands[0])
		}
		return q, nil

	case "arr":
		q.Kind = ir.QueryArrays
		if q.Type, err = ir.Parse(head); err != nil {
			return q, err
		}
		q.Extents, err = parseExtents(operands)
		return q, err

	case "size":
		q.Kind = ir.QuerySize
		if q.Type, err = ir.Parse(head); err != nil {
			return q, err
		}
		switch len(operands) {
		case 0:
		case 1:
			cond, err := strconv.ParseBool(operands[0])
			if err != nil {
				return q, fmt.Errorf("size: invalid condition %q", operands[0])
			}
			q.Condition = &cond
		default:
			return q, fmt.Errorf("size: at most one condition, got %d", len(operands))
		}
		return q, nil

	case "onlyif", "ifelse":
		q.Kind = ir.QueryKind(keyword)
		if q.Type, err = ir.Parse(head); err != nil {
			return q, err
		}
		want := 1
		if q.Kind == ir.QueryIfOrElse {
			want = 2
		}
		if len(operands) != want {
			return q, fmt.Errorf("%s: want %d operand(s), got %d", keyword, want, len(operands))
		}
		cond, err := strconv.ParseBool(operands[want-1])
		if err != nil {
			return q, fmt.Errorf("%s: invalid condition %q", keyword, operands[want-1])
		}
		q.Condition = &cond
		q.Args, err = parseTypes(operands[:want-1])
		return q, err

	case "catch":
		q.Kind = ir.QueryCatch
		if q.Type, err = ir.Parse(head); err != nil {
			return q, err
		}
		if len(operands) != 1 {
			return q, fmt.Errorf("catch: want one thrown type, got %d", len(operands))
		}
		q.Args, err = parseTypes(operands)
		return q, err
	}
	return q, fmt.Errorf("unknown statement %q", keyword)
}

func parseTypes(texts []string) ([]ir.Descriptor, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([]ir.Descriptor, len(texts))
	for i, t := range texts {
		d, err := ir.Parse(t)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func parseExtents(texts []string) ([]ir.Extent, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([]ir.Extent, len(texts))
	for i, t := range texts {
		e, err := ParseExtent(t)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// ParseExtent reads one array extent: an integer, or "unbounded" / "[]".
func ParseExtent(text string) (ir.Extent, error) {
	if text == "unbounded" || text == "[]" {
		return ir.Unbounded, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid extent %q", text)
	}
	return ir.Extent(n), nil
}

// ParseOutcome reads an expectation: "true", "false", "error(CODE)", a
// byte count, or a descriptor.
func ParseOutcome(text string) (ir.Outcome, error) {
	switch {
	case text == "":
		return ir.Outcome{}, fmt.Errorf("empty expectation")
	case text == "true" || text == "false":
		return ir.BoolOutcome(text == "true"), nil
	case strings.HasPrefix(text, "error(") && strings.HasSuffix(text, ")"):
		code := strings.TrimSuffix(strings.TrimPrefix(text, "error("), ")")
		if code == "" {
			return ir.Outcome{}, fmt.Errorf("error expectation needs a code")
		}
		return ir.ErrorOutcome(code, ""), nil
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return ir.SizeOutcome(n), nil
	}
	d, err := ir.Parse(text)
	if err != nil {
		return ir.Outcome{}, fmt.Errorf("invalid expectation: %w", err)
	}
	return ir.TypeOutcome(d), nil
}

// Matches reports whether got satisfies want. Error outcomes compare by
// code only.
func Matches(want, got ir.Outcome) bool {
	if want.Kind != got.Kind {
		return false
	}
	if want.Kind == ir.OutcomeError {
		return want.Code == got.Code
	}
	return want.Value == got.Value
}

// Result is the evaluation of one statement.
type Result struct {
	Statement
	Outcome ir.Outcome
}

// Failed reports whether the statement had an expectation that the outcome
// did not meet.
func (r Result) Failed() bool {
	return r.Expect != nil && !Matches(*r.Expect, r.Outcome)
}

// Run evaluates every statement in order. Only memo failures stop the run.
func Run(ctx context.Context, e *engine.Engine, s *Script) ([]Result, error) {
	results := make([]Result, 0, len(s.Statements))
	for _, st := range s.Statements {
		o, err := e.EvaluateContext(ctx, st.Query)
		if err != nil {
			return results, fmt.Errorf("line %d: %w", st.Line, err)
		}
		r := Result{Statement: st, Outcome: o}
		if r.Failed() {
			slog.Debug("expectation failed", "line", st.Line, "query", st.Query.String(),
				"want", st.Expect.String(), "got", o.String())
		}
		results = append(results, r)
	}
	return results, nil
}

// Failures counts results whose expectation was not met.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
