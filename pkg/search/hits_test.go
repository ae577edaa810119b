package search

import (
	"testing"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestHitSet_Algebra(t *testing.T) {
	a := NewHitSet("1", "2", "3")
	b := NewHitSet("2", "3", "4")

	assert.Equal(t, []string{"1", "2", "3", "4"}, a.Union(b).Sorted())
	assert.Equal(t, []string{"2", "3"}, a.Intersect(b).Sorted())
	assert.Equal(t, a.Union(b), b.Union(a))
	assert.Equal(t, a.Intersect(b), b.Intersect(a))
	assert.Empty(t, a.Intersect(NewHitSet()))

	// inputs are not mutated
	assert.Equal(t, []string{"1", "2", "3"}, a.Sorted())
}

func TestLeaves(t *testing.T) {
	doc := domain.Mapping(
		domain.M("a", domain.Mapping(domain.M("b", domain.Number(1)))),
		domain.M("empty", domain.Mapping()),
		domain.M("list", domain.Sequence(domain.String("x"), domain.Mapping(domain.M("c", domain.Null())))),
		domain.M("none", domain.Sequence()),
	)

	var paths [][]string
	for _, leaf := range Leaves(doc) {
		paths = append(paths, leaf.Path)
	}
	assert.Equal(t, [][]string{
		{"a", "b"},
		{"empty"},
		{"list", "0"},
		{"list", "1", "c"},
		{"none"},
	}, paths)
}

func TestLeaf_MatchesKey(t *testing.T) {
	leaf := Leaves(domain.Mapping(domain.M("list", domain.Sequence(
		domain.Mapping(domain.M("c", domain.Null())),
	))))[0]

	assert.True(t, leaf.MatchesKey([]string{"c"}))
	assert.True(t, leaf.MatchesKey([]string{"list", "c"}))
	assert.True(t, leaf.MatchesKey([]string{"list", "0", "c"}))
	assert.True(t, leaf.MatchesKey([]string{"0", "c"}))
	assert.False(t, leaf.MatchesKey([]string{"list"}))
	assert.False(t, leaf.MatchesKey(nil))
	assert.False(t, leaf.MatchesKey([]string{"x", "list", "0", "c"}))
}
