package query

import (
	"strconv"
	"strings"
)

// Operator joins two clauses or two values.
type Operator int

const (
	And Operator = iota
	Or
)

func (o Operator) String() string {
	if o == Or {
		return "OR"
	}
	return "AND"
}

// Expr is an element of a QueryGroup: Key, Pair or *QueryGroup.
type Expr interface {
	expr()
	String() string
}

// ValueExpr is the value side of a Pair: a literal, a *ValueGroup or a nested
// Pair inside a value group.
type ValueExpr interface {
	valueExpr()
	String() string
}

// QueryGroup is a list of clauses joined by operators. len(Ops) is always
// len(Items)-1.
type QueryGroup struct {
	Items []Expr
	Ops   []Operator
}

// Key is a key path; each component is already unescaped.
type Key struct {
	Components []string
}

// Pair restricts a key to values matching Value.
type Pair struct {
	Key   Key
	Value ValueExpr
}

// ValueGroup is a list of values joined by operators.
type ValueGroup struct {
	Items []ValueExpr
	Ops   []Operator
}

// StringLit matches string values. Start and End are the anchors.
type StringLit struct {
	Value string
	Start bool
	End   bool
}

// Comparison operators for NumberLit.
type Comparison string

const (
	Eq Comparison = "="
	Gt Comparison = ">"
	Ge Comparison = ">="
	Lt Comparison = "<"
	Le Comparison = "<="
)

// NumberLit matches numeric values using Op.
type NumberLit struct {
	Op    Comparison
	Value float64
}

// BoolLit matches a boolean exactly.
type BoolLit struct {
	Value bool
}

// NullLit matches null.
type NullLit struct{}

func (*QueryGroup) expr() {}
func (Key) expr()         {}
func (Pair) expr()        {}

func (*ValueGroup) valueExpr() {}
func (Pair) valueExpr()        {}
func (StringLit) valueExpr()   {}
func (NumberLit) valueExpr()   {}
func (BoolLit) valueExpr()     {}
func (NullLit) valueExpr()     {}

func (g *QueryGroup) String() string {
	parts := make([]string, len(g.Items))
	for i, item := range g.Items {
		if sub, ok := item.(*QueryGroup); ok {
			parts[i] = "(" + sub.String() + ")"
			continue
		}
		parts[i] = item.String()
	}
	return join(parts, g.Ops)
}

func (k Key) String() string {
	parts := make([]string, len(k.Components))
	for i, c := range k.Components {
		parts[i] = strings.ReplaceAll(c, ".", `\.`)
	}
	return strings.Join(parts, ".")
}

func (p Pair) String() string {
	return p.Key.String() + ": " + p.Value.String()
}

func (g *ValueGroup) String() string {
	parts := make([]string, len(g.Items))
	for i, item := range g.Items {
		parts[i] = item.String()
	}
	return "(" + join(parts, g.Ops) + ")"
}

func (s StringLit) String() string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `^`, `\^`, `$`, `\$`)
	var b strings.Builder
	if s.Start {
		b.WriteByte('^')
	}
	b.WriteByte('"')
	b.WriteString(r.Replace(s.Value))
	b.WriteByte('"')
	if s.End {
		b.WriteByte('$')
	}
	return b.String()
}

func (n NumberLit) String() string {
	op := string(n.Op)
	if n.Op == Eq {
		op = ""
	}
	return op + strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (b BoolLit) String() string { return strconv.FormatBool(b.Value) }

func (NullLit) String() string { return "null" }

func join(parts []string, ops []Operator) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString(" " + ops[i-1].String() + " ")
		}
		b.WriteString(p)
	}
	return b.String()
}
