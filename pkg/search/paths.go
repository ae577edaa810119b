package search

import (
	"strconv"

	"github.com/aretw0/provview/pkg/domain"
)

// Leaf is a terminal value of a document and the full path leading to it.
// A terminal is anything but a non-empty mapping or sequence.
type Leaf struct {
	Path  []string
	Value domain.Value

	// index marks the path segments that are sequence positions
	index []bool
}

// Leaves enumerates every terminal of doc in document order. Sequence
// elements contribute their position as a path segment.
func Leaves(doc domain.Value) []Leaf {
	var out []Leaf
	walk(doc, nil, nil, &out)
	return out
}

func walk(v domain.Value, path []string, index []bool, out *[]Leaf) {
	switch v.Kind() {
	case domain.KindMapping:
		if v.Len() == 0 && len(path) > 0 {
			*out = append(*out, newLeaf(path, index, v))
			return
		}
		for _, m := range v.Members() {
			walk(m.Value, append(path, m.Key), append(index, false), out)
		}
	case domain.KindSequence:
		if v.Len() == 0 && len(path) > 0 {
			*out = append(*out, newLeaf(path, index, v))
			return
		}
		for i, item := range v.Items() {
			walk(item, append(path, strconv.Itoa(i)), append(index, true), out)
		}
	default:
		if len(path) > 0 {
			*out = append(*out, newLeaf(path, index, v))
		}
	}
}

func newLeaf(path []string, index []bool, v domain.Value) Leaf {
	return Leaf{
		Path:  append([]string(nil), path...),
		Value: v,
		index: append([]bool(nil), index...),
	}
}

// MatchesKey reports whether key equals the trailing segments of the leaf
// path, either as written or with the sequence positions left out.
func (l Leaf) MatchesKey(key []string) bool {
	if hasSuffix(l.Path, key) {
		return true
	}
	named := make([]string, 0, len(l.Path))
	for i, seg := range l.Path {
		if i < len(l.index) && l.index[i] {
			continue
		}
		named = append(named, seg)
	}
	if len(named) == len(l.Path) {
		return false
	}
	return hasSuffix(named, key)
}

func hasSuffix(path, key []string) bool {
	if len(key) == 0 || len(key) > len(path) {
		return false
	}
	offset := len(path) - len(key)
	for i, seg := range key {
		if path[offset+i] != seg {
			return false
		}
	}
	return true
}
