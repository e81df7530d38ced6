package ir

import (
	"fmt"
	"strings"
)

// Tag selects a trait query or transform. Flag tags (below TagFunc) combine
// with bitwise OR; every other tag stands alone.
type Tag uint32

// Flag tags.
const (
	TagRemove Tag = 0x01
	TagConst  Tag = 0x02
	TagVol    Tag = 0x04
	TagRef    Tag = 0x08
	TagPtr    Tag = 0x10
	TagRVal   Tag = 0x20
	TagArr    Tag = 0x40
)

// Closed tags.
const (
	TagFunc Tag = 0x80 + iota
	TagCls
	TagMeth
	TagPrim
	TagObj
	TagSame
	TagTemp
	TagMember
	TagEnum
	TagAbstract
	TagCtor
	TagAssign
	TagSuper
	TagConvert
	TagComplet
	TagInt
	TagFlt
	TagChr
	TagStr
	TagBoolean
	TagCall
	TagEq
	TagLt
	TagDtor
	TagFinal
	TagEmpty
	TagUnion
	TagPoly
	TagLiteral
	TagTrivial
	TagVoid
	TagSlim
	TagSize
)

// flagOrder is the order flag names are printed in.
var flagOrder = []Tag{TagConst, TagVol, TagRef, TagRVal, TagPtr, TagArr, TagRemove}

var tagNames = map[Tag]string{
	TagRemove: "REMOVE", TagConst: "CONST", TagVol: "VOL", TagRef: "REF",
	TagPtr: "PTR", TagRVal: "RVAL", TagArr: "ARR",
	TagFunc: "FUNC", TagCls: "CLS", TagMeth: "METH", TagPrim: "PRIM", TagObj: "OBJ",
	TagSame: "SAME", TagTemp: "TEMP", TagMember: "MEMBER", TagEnum: "ENUM",
	TagAbstract: "ABSTRACT", TagCtor: "CTOR", TagAssign: "ASSIGN", TagSuper: "SUPER",
	TagConvert: "CONVERT", TagComplet: "COMPLET", TagInt: "INT", TagFlt: "FLT",
	TagChr: "CHR", TagStr: "STR", TagBoolean: "BOOLEAN", TagCall: "CALL", TagEq: "EQ",
	TagLt: "LT", TagDtor: "DTOR", TagFinal: "FINAL", TagEmpty: "EMPTY", TagUnion: "UNION",
	TagPoly: "POLY", TagLiteral: "LITERAL", TagTrivial: "TRIVIAL", TagVoid: "VOID",
	TagSlim: "SLIM", TagSize: "SIZE",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for t, name := range tagNames {
		m[name] = t
	}
	return m
}()

// IsCombinable reports whether t is a non-empty combination of flag tags.
func (t Tag) IsCombinable() bool {
	return t != 0 && t < TagFunc
}

// Has reports whether the flag combination t includes every flag of f.
func (t Tag) Has(f Tag) bool {
	return t.IsCombinable() && f.IsCombinable() && t&f == f
}

// Flags splits a flag combination into its single flags, in print order.
func (t Tag) Flags() []Tag {
	if !t.IsCombinable() {
		return nil
	}
	var out []Tag
	for _, f := range flagOrder {
		if t&f != 0 {
			out = append(out, f)
		}
	}
	return out
}

func (t Tag) String() string {
	if t.IsCombinable() {
		names := make([]string, 0, len(flagOrder))
		for _, f := range t.Flags() {
			names = append(names, tagNames[f])
		}
		return strings.Join(names, "|")
	}
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%#x)", uint32(t))
}

// ParseTag reads a tag name or an OR-combination of flag names such as
// "CONST|REF|REMOVE". Names are case-insensitive.
func ParseTag(s string) (Tag, error) {
	parts := strings.Split(s, "|")
	var t Tag
	for _, part := range parts {
		name := strings.ToUpper(strings.TrimSpace(part))
		one, ok := tagsByName[name]
		if !ok {
			return 0, fmt.Errorf("unknown tag %q", part)
		}
		if len(parts) > 1 && !one.IsCombinable() {
			return 0, fmt.Errorf("tag %s cannot be combined", name)
		}
		t |= one
	}
	return t, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := ParseTag(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
