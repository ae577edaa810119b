package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokColon
	tokAnd
	tokOr
	tokCompare
	tokString
	tokWord
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of query"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokColon:
		return "':'"
	case tokAnd, tokOr:
		return "operator"
	case tokCompare:
		return "comparison"
	case tokString:
		return "string"
	case tokWord:
		return "word"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	pos  int

	// string anchors
	start bool
	end   bool
}

// lex splits the query into tokens. WORD tokens keep `\.` escapes so the
// parser can split key components on unescaped dots.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ':':
			tokens = append(tokens, token{kind: tokColon, text: ":", pos: i})
			i++
		case r == '&':
			tokens = append(tokens, token{kind: tokAnd, text: "&", pos: i})
			i++
		case r == '|':
			tokens = append(tokens, token{kind: tokOr, text: "|", pos: i})
			i++
		case r == '>' || r == '<' || r == '=':
			op := string(r)
			if r != '=' && i+1 < len(input) && input[i+1] == '=' {
				op += "="
			}
			tokens = append(tokens, token{kind: tokCompare, text: op, pos: i})
			i += len(op)
		case r == '^' || r == '"':
			tok, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		case isWordRune(r) || r == '\\':
			tok, next, err := lexWord(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		default:
			return nil, syntaxErrorf(i, "unexpected character %q", r)
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(input)})
	return tokens, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' || r == '+'
}

func lexWord(input string, start int) (token, int, error) {
	i := start
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		if r == '\\' {
			if i+1 < len(input) && input[i+1] == '.' {
				i += 2
				continue
			}
			return token{}, 0, syntaxErrorf(i, "invalid escape in key; only \\. is allowed")
		}
		if !isWordRune(r) {
			break
		}
		i += size
	}
	// and/or stay words; the parser reads them as operators only between
	// clauses, so they remain usable as keys.
	return token{kind: tokWord, text: input[start:i], pos: start}, i, nil
}

// lexString reads an optionally anchored, double-quoted string. Anchors may
// sit outside the quotes or be the first/last unescaped character inside.
func lexString(input string, start int) (token, int, error) {
	tok := token{kind: tokString, pos: start}
	i := start
	if input[i] == '^' {
		tok.start = true
		i++
		if i >= len(input) || input[i] != '"' {
			return token{}, 0, syntaxErrorf(start, "anchor '^' must precede a quoted string")
		}
	}
	i++ // opening quote

	var b strings.Builder
	first := true
	lastAnchor := -1
	for {
		if i >= len(input) {
			return token{}, 0, syntaxErrorf(start, "unterminated string")
		}
		c := input[i]
		switch c {
		case '"':
			i++
			value := b.String()
			if lastAnchor >= 0 && lastAnchor == len(value)-1 {
				tok.end = true
				value = value[:lastAnchor]
			}
			if i < len(input) && input[i] == '$' {
				tok.end = true
				i++
			}
			tok.text = value
			return tok, i, nil
		case '\\':
			if i+1 >= len(input) {
				return token{}, 0, syntaxErrorf(i, "unterminated escape")
			}
			switch esc := input[i+1]; esc {
			case '"', '\\', '^', '$':
				b.WriteByte(esc)
			default:
				return token{}, 0, syntaxErrorf(i, "invalid escape \\%c", esc)
			}
			i += 2
			lastAnchor = -1
		case '^':
			if first {
				tok.start = true
			} else {
				b.WriteByte(c)
			}
			i++
			lastAnchor = -1
		case '$':
			lastAnchor = b.Len()
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
			lastAnchor = -1
		}
		first = false
	}
}
