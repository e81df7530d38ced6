package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed descriptor text.
type ParseError struct {
	Input string
	Col   int // 1-based
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: col %d: %s", e.Input, e.Col, e.Msg)
}

// Parse reads a descriptor written in postfix form, left to right:
//
//	int32 const        qualified value
//	int32* const*      pointer to const pointer to int32
//	int32&  int32&&    references
//	int32[5] int32[0] int32[]  bounded, incomplete and unbounded arrays
//	int32[2][3]        array of 2 arrays of 3
//	int32(float64, ...)  variadic function returning int32
//	void(int32) Shape::*  pointer to member function of Shape
//
// Type names may contain "::" separators and a balanced <...> argument list.
func Parse(s string) (Descriptor, error) {
	p := &parser{src: s}
	d, err := p.descriptor()
	if err != nil {
		return Descriptor{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return Descriptor{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return d, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with literal input.
func MustParse(s string) Descriptor {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Input: p.src, Col: p.pos + 1, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) descriptor() (Descriptor, error) {
	p.skipSpace()
	q, err := p.qualifiers()
	if err != nil {
		return Descriptor{}, err
	}
	id, err := p.ident()
	if err != nil {
		return Descriptor{}, err
	}
	d := Value(id).WithQualifiers(q)

	for {
		p.skipSpace()
		start := p.pos
		switch c := p.peek(); {
		case c == '*':
			if d.IsReference() {
				return Descriptor{}, p.errorf("pointer to reference")
			}
			p.pos++
			d = Pointer(d)
		case c == '&':
			if d.IsReference() {
				return Descriptor{}, p.errorf("reference to reference")
			}
			if d.IsVoid() {
				return Descriptor{}, p.errorf("reference to void")
			}
			p.pos++
			if p.peek() == '&' {
				p.pos++
				d = RRef(d)
			} else {
				d = LRef(d)
			}
		case c == '[':
			exts, err := p.extents()
			if err != nil {
				return Descriptor{}, err
			}
			for i := len(exts) - 1; i >= 0; i-- {
				if d, err = TryArrayOf(d, exts[i]); err != nil {
					p.pos = start
					return Descriptor{}, p.errorf("%v", err)
				}
			}
		case c == '(':
			params, variadic, err := p.params()
			if err != nil {
				return Descriptor{}, err
			}
			if d, err = TryFunc(d, variadic, params...); err != nil {
				p.pos = start
				return Descriptor{}, p.errorf("%v", err)
			}
		case isNameStart(c):
			if q, ok := qualifierWord(p.peekWord()); ok {
				if !d.qualifiable() {
					return Descriptor{}, p.errorf("%s cannot be qualified", d.shape)
				}
				p.pos += len(q.String())
				d = d.AddQualifiers(q)
				continue
			}
			owner, err := p.ident()
			if err != nil {
				return Descriptor{}, err
			}
			if !strings.HasPrefix(p.src[p.pos:], "::*") {
				return Descriptor{}, p.errorf("expected \"::*\" after %s", owner)
			}
			p.pos += 3
			if d, err = TryMemberOf(owner, d); err != nil {
				p.pos = start
				return Descriptor{}, p.errorf("%v", err)
			}
		default:
			return d, nil
		}
	}
}

func (p *parser) qualifiers() (Qualifiers, error) {
	var q Qualifiers
	for {
		w := p.peekWord()
		qual, ok := qualifierWord(w)
		if !ok {
			return q, nil
		}
		if q&qual != 0 {
			return 0, p.errorf("duplicate %s", w)
		}
		q |= qual
		p.pos += len(w)
		p.skipSpace()
	}
}

func qualifierWord(w string) (Qualifiers, bool) {
	switch w {
	case "const":
		return Const, true
	case "volatile":
		return Volatile, true
	}
	return 0, false
}

func (p *parser) peekWord() string {
	end := p.pos
	for end < len(p.src) && isNameByte(p.src[end], end == p.pos) {
		end++
	}
	return p.src[p.pos:end]
}

// ident reads a possibly qualified type name. It stops before "::*" so the
// caller can read a member pointer owner.
func (p *parser) ident() (TypeID, error) {
	start := p.pos
	for {
		w := p.peekWord()
		if w == "" {
			return "", p.errorf("expected type name")
		}
		p.pos += len(w)
		if p.peek() == '<' {
			if err := p.templateArgs(); err != nil {
				return "", err
			}
		}
		rest := p.src[p.pos:]
		if strings.HasPrefix(rest, "::") && !strings.HasPrefix(rest, "::*") {
			p.pos += 2
			continue
		}
		return TypeID(p.src[start:p.pos]), nil
	}
}

func (p *parser) templateArgs() error {
	start := p.pos
	depth := 0
	for !p.eof() {
		switch p.src[p.pos] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	p.pos = start
	return p.errorf("unterminated template argument list")
}

func (p *parser) extents() ([]Extent, error) {
	var exts []Extent
	for p.peek() == '[' {
		p.pos++
		p.skipSpace()
		start := p.pos
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		ext := Unbounded
		if p.pos > start {
			n, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
			if err != nil {
				return nil, p.errorf("bad extent: %v", err)
			}
			ext = Extent(n)
		}
		p.skipSpace()
		if p.peek() != ']' {
			return nil, p.errorf("expected ']'")
		}
		p.pos++
		exts = append(exts, ext)
		p.skipSpace()
	}
	return exts, nil
}

func (p *parser) params() ([]Descriptor, bool, error) {
	p.pos++ // (
	var params []Descriptor
	variadic := false
	p.skipSpace()
	if p.peek() != ')' {
		for {
			p.skipSpace()
			if strings.HasPrefix(p.src[p.pos:], "...") {
				p.pos += 3
				variadic = true
				p.skipSpace()
				break
			}
			d, err := p.descriptor()
			if err != nil {
				return nil, false, err
			}
			params = append(params, d)
			p.skipSpace()
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
	}
	if p.peek() != ')' {
		return nil, false, p.errorf("expected ')'")
	}
	p.pos++
	return params, variadic, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte, first bool) bool {
	if first {
		return isNameStart(c)
	}
	return isNameStart(c) || (c >= '0' && c <= '9')
}
