package search

import (
	"strings"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/query"
)

// MatchLiteral reports whether a document value satisfies a literal. Types
// are strict: "42" never matches the number 42.
func MatchLiteral(lit query.ValueExpr, v domain.Value) bool {
	switch l := lit.(type) {
	case query.StringLit:
		s, ok := v.AsString()
		if !ok {
			return false
		}
		return matchString(l, s)
	case query.NumberLit:
		n, ok := v.AsNumber()
		if !ok {
			return false
		}
		return compare(l.Op, n, l.Value)
	case query.BoolLit:
		b, ok := v.AsBool()
		return ok && b == l.Value
	case query.NullLit:
		return v.IsNull()
	}
	return false
}

func matchString(l query.StringLit, s string) bool {
	switch {
	case l.Start && l.End:
		return s == l.Value
	case l.Start:
		return strings.HasPrefix(s, l.Value)
	case l.End:
		return strings.HasSuffix(s, l.Value)
	}
	return strings.Contains(s, l.Value)
}

func compare(op query.Comparison, doc, lit float64) bool {
	switch op {
	case query.Gt:
		return doc > lit
	case query.Ge:
		return doc >= lit
	case query.Lt:
		return doc < lit
	case query.Le:
		return doc <= lit
	}
	return doc == lit
}
