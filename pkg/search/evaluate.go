package search

import (
	"fmt"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/query"
)

// Evaluate runs q against corpus. An empty top-level result is reported as
// domain.ErrNoMatches; empty sub-clauses are folded silently.
func Evaluate(q *query.QueryGroup, corpus Corpus) (HitSet, error) {
	if q == nil || len(q.Items) == 0 {
		return nil, fmt.Errorf("%w: empty query", domain.ErrSyntax)
	}
	e := &evaluator{corpus: corpus, leaves: make(map[string][]Leaf, len(corpus))}
	hits := e.group(q)
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoMatches, q)
	}
	return hits, nil
}

// Search parses text and evaluates it against corpus.
func Search(text string, corpus Corpus) (HitSet, error) {
	q, err := query.Parse(text)
	if err != nil {
		return nil, err
	}
	return Evaluate(q, corpus)
}

type evaluator struct {
	corpus Corpus
	leaves map[string][]Leaf
}

func (e *evaluator) leavesOf(id string) []Leaf {
	if l, ok := e.leaves[id]; ok {
		return l
	}
	l := Leaves(e.corpus[id])
	e.leaves[id] = l
	return l
}

func (e *evaluator) group(g *query.QueryGroup) HitSet {
	hits := e.expr(g.Items[0])
	for i, item := range g.Items[1:] {
		hits = fold(hits, g.Ops[i], e.expr(item))
	}
	return hits
}

func (e *evaluator) expr(x query.Expr) HitSet {
	switch x := x.(type) {
	case *query.QueryGroup:
		return e.group(x)
	case query.Key:
		return e.match(x, nil)
	case query.Pair:
		return e.pair(x.Key, x.Value)
	}
	return HitSet{}
}

// pair evaluates key against a value. Pairs nested inside a value group are
// independent clauses and ignore the enclosing key.
func (e *evaluator) pair(key query.Key, v query.ValueExpr) HitSet {
	switch v := v.(type) {
	case *query.ValueGroup:
		hits := e.pair(key, v.Items[0])
		for i, item := range v.Items[1:] {
			hits = fold(hits, v.Ops[i], e.pair(key, item))
		}
		return hits
	case query.Pair:
		return e.pair(v.Key, v.Value)
	}
	return e.match(key, v)
}

// match collects the ids holding a leaf whose path ends with key and, when
// lit is set, whose value satisfies it.
func (e *evaluator) match(key query.Key, lit query.ValueExpr) HitSet {
	hits := HitSet{}
	for id := range e.corpus {
		for _, leaf := range e.leavesOf(id) {
			if !leaf.MatchesKey(key.Components) {
				continue
			}
			if lit == nil || MatchLiteral(lit, leaf.Value) {
				hits[id] = struct{}{}
				break
			}
		}
	}
	return hits
}

func fold(acc HitSet, op query.Operator, next HitSet) HitSet {
	if op == query.Or {
		return acc.Union(next)
	}
	return acc.Intersect(next)
}
