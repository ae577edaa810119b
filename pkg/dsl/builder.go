package dsl

import (
	"fmt"

	"github.com/aretw0/provview/pkg/adapters/memory"
	"github.com/aretw0/provview/pkg/domain"
)

// Builder manages the archive construction.
type Builder struct {
	root    string
	results map[string]*ResultBuilder
	order   []string
}

// New creates a new archive builder whose viewed result is root.
func New(root string) *Builder {
	return &Builder{
		root:    root,
		results: make(map[string]*ResultBuilder),
	}
}

// Result declares a result recorded in the archive provenance.
// If the result already exists, it returns the existing builder.
func (b *Builder) Result(uuid string) *ResultBuilder {
	if rb, ok := b.results[uuid]; ok {
		return rb
	}
	rb := &ResultBuilder{
		uuid:        uuid,
		executionID: "exec-" + uuid,
		semantic:    "Unknown",
		actionType:  domain.ActionTypeImport,
	}
	b.results[uuid] = rb
	b.order = append(b.order, uuid)
	return rb
}

// Build compiles the archive into a memory Loader. Results referenced by an
// input but never declared are absent, which reads as missing provenance.
func (b *Builder) Build() (*memory.Loader, error) {
	if _, ok := b.results[b.root]; !ok {
		return nil, fmt.Errorf("root result %s was not declared", b.root)
	}

	actions := make(map[string]domain.Value, len(b.results))
	artifacts := make(map[string]domain.Value, len(b.results))
	for _, id := range b.order {
		rb := b.results[id]
		if rb.err != nil {
			return nil, fmt.Errorf("result %s: %w", id, rb.err)
		}
		actions[id] = rb.actionDocument()
		artifacts[id] = rb.artifactDocument()
	}

	return memory.NewLoader(b.root, actions, artifacts), nil
}
