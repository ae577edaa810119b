package search

import (
	"sort"

	"github.com/aretw0/provview/pkg/domain"
)

// Corpus maps a node id to the document searched for it.
type Corpus map[string]domain.Value

// IDs returns the corpus ids in ascending order.
func (c Corpus) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HitSet is a set of corpus ids.
type HitSet map[string]struct{}

// NewHitSet builds a set from ids.
func NewHitSet(ids ...string) HitSet {
	h := make(HitSet, len(ids))
	for _, id := range ids {
		h[id] = struct{}{}
	}
	return h
}

func (h HitSet) Has(id string) bool {
	_, ok := h[id]
	return ok
}

// Union returns a new set holding the ids of both sets.
func (h HitSet) Union(o HitSet) HitSet {
	out := make(HitSet, len(h)+len(o))
	for id := range h {
		out[id] = struct{}{}
	}
	for id := range o {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns a new set holding the ids present in both sets.
func (h HitSet) Intersect(o HitSet) HitSet {
	small, large := h, o
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(HitSet, len(small))
	for id := range small {
		if large.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in ascending order.
func (h HitSet) Sorted() []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
