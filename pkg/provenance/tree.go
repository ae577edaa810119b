package provenance

import (
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/search"
)

// InternalsKey is the key under which a pipeline action exposes the steps it
// aliases when searched.
const InternalsKey = "pipeline-internals"

// Tree is the reconstructed provenance of one result. It is built fresh per
// load and is not modified afterwards.
type Tree struct {
	Root   string `json:"root"`
	Height int    `json:"height"`
	Width  int    `json:"width"`

	// Actions are in discovery order.
	Actions []domain.ActionNode `json:"actions"`
	// Results are ordered by row, then column.
	Results     []domain.ResultNode `json:"results"`
	Edges       []domain.Edge       `json:"edges"`
	Collections []domain.Collection `json:"collections,omitempty"`

	Metadata    []domain.MetadataUsage `json:"metadata,omitempty"`
	Truncations []domain.Truncation    `json:"truncations,omitempty"`

	// Internals holds the pipeline alias steps keyed by outer execution id.
	Internals map[string][]domain.InternalRecord `json:"internals,omitempty"`

	documents map[string]domain.Value
}

// Document returns the document recorded for a node id.
func (t *Tree) Document(id string) (domain.Value, bool) {
	doc, ok := t.documents[id]
	if !ok {
		return domain.Value{}, false
	}
	if records, ok := t.Internals[id]; ok {
		doc = doc.With(InternalsKey, internalsValue(records))
	}
	return doc, true
}

// Corpus returns a fresh node id to document map for searching.
func (t *Tree) Corpus() search.Corpus {
	corpus := make(search.Corpus, len(t.documents))
	for id := range t.documents {
		corpus[id], _ = t.Document(id)
	}
	return corpus
}

// Action returns the action node with the given execution id.
func (t *Tree) Action(id string) (domain.ActionNode, bool) {
	for _, a := range t.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return domain.ActionNode{}, false
}

// Result returns the result node with the given id.
func (t *Tree) Result(id string) (domain.ResultNode, bool) {
	for _, r := range t.Results {
		if r.ID == id {
			return r, true
		}
	}
	return domain.ResultNode{}, false
}

// Collection returns the collection with the given id.
func (t *Tree) Collection(id string) (domain.Collection, bool) {
	for _, c := range t.Collections {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Collection{}, false
}

// Row returns the result nodes of a row in column order.
func (t *Tree) Row(row int) []domain.ResultNode {
	var out []domain.ResultNode
	for _, r := range t.Results {
		if r.Row == row {
			out = append(out, r)
		}
	}
	return out
}

// ProducedBy returns the result nodes whose parent is the given action.
func (t *Tree) ProducedBy(actionID string) []domain.ResultNode {
	var out []domain.ResultNode
	for _, r := range t.Results {
		if r.Parent == actionID {
			out = append(out, r)
		}
	}
	return out
}

func internalsValue(records []domain.InternalRecord) domain.Value {
	members := make([]domain.Member, 0, len(records))
	for _, r := range records {
		entry := []domain.Member{
			domain.M("action", r.Action),
			domain.M("artifact", r.Artifact),
		}
		if r.Error != "" {
			entry = append(entry, domain.M("error", domain.String(r.Error)))
		}
		members = append(members, domain.M(r.ResultID, domain.Mapping(entry...)))
	}
	return domain.Mapping(members...)
}
