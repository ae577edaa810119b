package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse turns query text into a QueryGroup. Malformed input yields a
// *SyntaxError.
func Parse(text string) (*QueryGroup, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF {
		return nil, syntaxErrorf(0, "empty query")
	}
	group, err := p.parseClauses()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		if tok.kind == tokRParen {
			return nil, syntaxErrorf(tok.pos, "unbalanced ')'")
		}
		return nil, syntaxErrorf(tok.pos, "missing operator before %q", tok.text)
	}
	return group, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constant queries.
func MustParse(text string) *QueryGroup {
	q, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return q
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// operator consumes the operator between two clauses: a symbol, or the
// case-insensitive words AND and OR.
func (p *parser) operator() (Operator, bool) {
	tok := p.peek()
	switch {
	case tok.kind == tokAnd, tok.kind == tokWord && strings.EqualFold(tok.text, "and"):
		p.next()
		return And, true
	case tok.kind == tokOr, tok.kind == tokWord && strings.EqualFold(tok.text, "or"):
		p.next()
		return Or, true
	}
	return And, false
}

// endOfList reports whether the current token closes a clause or value list.
func (p *parser) endOfList() bool {
	k := p.peek().kind
	return k == tokEOF || k == tokRParen
}

func (p *parser) parseClauses() (*QueryGroup, error) {
	group := &QueryGroup{}
	for {
		item, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		group.Items = append(group.Items, item)
		if p.endOfList() {
			return group, nil
		}
		op, ok := p.operator()
		if !ok {
			tok := p.peek()
			return nil, syntaxErrorf(tok.pos, "missing operator before %q", tok.text)
		}
		group.Ops = append(group.Ops, op)
	}
}

func (p *parser) parseClause() (Expr, error) {
	tok := p.peek()
	switch tok.kind {
	case tokLParen:
		p.next()
		if p.peek().kind == tokRParen {
			return nil, syntaxErrorf(tok.pos, "empty group")
		}
		group, err := p.parseClauses()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, syntaxErrorf(tok.pos, "unbalanced '('")
		}
		return group, nil
	case tokWord:
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokColon {
			return key, nil
		}
		p.next()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return Pair{Key: key, Value: value}, nil
	case tokEOF:
		return nil, syntaxErrorf(tok.pos, "expected a clause after operator")
	}
	return nil, syntaxErrorf(tok.pos, "expected a key or '(', got %s", tok.kind)
}

func (p *parser) parseKey() (Key, error) {
	tok := p.next()
	components, err := splitKey(tok.text)
	if err != nil {
		return Key{}, &SyntaxError{Offset: tok.pos, Msg: err.Error()}
	}
	return Key{Components: components}, nil
}

// splitKey splits on unescaped dots and removes the escapes.
func splitKey(raw string) ([]string, error) {
	var components []string
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		switch {
		case raw[i] == '\\' && i+1 < len(raw) && raw[i+1] == '.':
			b.WriteByte('.')
			i++
		case raw[i] == '.':
			if b.Len() == 0 {
				return nil, errEmptyComponent(raw)
			}
			components = append(components, b.String())
			b.Reset()
		default:
			b.WriteByte(raw[i])
		}
	}
	if b.Len() == 0 {
		return nil, errEmptyComponent(raw)
	}
	return append(components, b.String()), nil
}

func errEmptyComponent(raw string) error {
	return fmt.Errorf("empty component in key %q", raw)
}

func (p *parser) parseValue() (ValueExpr, error) {
	if tok := p.peek(); tok.kind == tokLParen {
		return p.parseValueGroup()
	}
	return p.parseLiteral()
}

func (p *parser) parseValueGroup() (ValueExpr, error) {
	open := p.next()
	if p.peek().kind == tokRParen {
		return nil, syntaxErrorf(open.pos, "empty group")
	}
	group := &ValueGroup{}
	for {
		item, err := p.parseValueItem()
		if err != nil {
			return nil, err
		}
		group.Items = append(group.Items, item)
		if p.peek().kind == tokRParen {
			p.next()
			return group, nil
		}
		if p.peek().kind == tokEOF {
			return nil, syntaxErrorf(open.pos, "unbalanced '('")
		}
		op, ok := p.operator()
		if !ok {
			tok := p.peek()
			return nil, syntaxErrorf(tok.pos, "missing operator before %q", tok.text)
		}
		group.Ops = append(group.Ops, op)
	}
}

func (p *parser) parseValueItem() (ValueExpr, error) {
	tok := p.peek()
	if tok.kind == tokLParen {
		return p.parseValueGroup()
	}
	if tok.kind == tokWord && p.peekAt(1).kind == tokColon {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.next()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return Pair{Key: key, Value: value}, nil
	}
	return p.parseLiteral()
}

func (p *parser) parseLiteral() (ValueExpr, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return StringLit{Value: tok.text, Start: tok.start, End: tok.end}, nil
	case tokCompare:
		num := p.next()
		if num.kind != tokWord {
			return nil, syntaxErrorf(num.pos, "expected a number after %q", tok.text)
		}
		value, ok := parseNumber(num.text)
		if !ok {
			return nil, syntaxErrorf(num.pos, "invalid number %q", num.text)
		}
		return NumberLit{Op: Comparison(tok.text), Value: value}, nil
	case tokWord:
		switch tok.text {
		case "true":
			return BoolLit{Value: true}, nil
		case "false":
			return BoolLit{Value: false}, nil
		case "null":
			return NullLit{}, nil
		}
		value, ok := parseNumber(tok.text)
		if !ok {
			return nil, syntaxErrorf(tok.pos, "expected a value, got %q (strings must be quoted)", tok.text)
		}
		return NumberLit{Op: Eq, Value: value}, nil
	case tokEOF:
		return nil, syntaxErrorf(tok.pos, "expected a value")
	}
	return nil, syntaxErrorf(tok.pos, "expected a value, got %s", tok.kind)
}

func parseNumber(text string) (float64, bool) {
	if text == "" || strings.Contains(text, `\`) {
		return 0, false
	}
	switch c := text[0]; {
	case c >= '0' && c <= '9', c == '-', c == '+', c == '.':
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
