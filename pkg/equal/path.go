package equal

import (
	"strconv"
	"strings"
)

// TokenKind distinguishes the steps of a Path.
type TokenKind int

const (
	TokenField TokenKind = iota // struct field or identifier-like map key
	TokenIndex                  // list position
	TokenKey                    // any other map key
)

// Token is one step of a Path.
type Token struct {
	Kind  TokenKind
	Name  string // field name, or rendered key for TokenKey
	Index int
}

// Path locates a value inside the compared structures.
type Path []Token

// String renders the path as "a.b[2]", or "(root)" when empty.
func (p Path) String() string {
	if len(p) == 0 {
		return "(root)"
	}
	var b strings.Builder
	for i, tok := range p {
		switch tok.Kind {
		case TokenField:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(tok.Name)
		case TokenIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(tok.Index))
			b.WriteByte(']')
		case TokenKey:
			b.WriteByte('[')
			b.WriteString(tok.Name)
			b.WriteByte(']')
		}
	}
	return b.String()
}

func (p Path) clone() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

func fieldToken(name string) Token { return Token{Kind: TokenField, Name: name} }

func indexToken(i int) Token { return Token{Kind: TokenIndex, Index: i} }

// keyToken picks a field-style token for identifier-like string keys.
func keyToken(name string, isString bool) Token {
	if isString && isIdentifier(name) {
		return fieldToken(name)
	}
	if isString {
		return Token{Kind: TokenKey, Name: strconv.Quote(name)}
	}
	return Token{Kind: TokenKey, Name: name}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
