package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/provview/pkg/domain"
)

// Loader implements ports.Loader using in-memory documents.
type Loader struct {
	root      string
	actions   map[string]domain.Value
	artifacts map[string]domain.Value
}

// NewLoader creates a Loader from parsed documents keyed by artifact UUID.
func NewLoader(root string, actions, artifacts map[string]domain.Value) *Loader {
	l := &Loader{
		root:      root,
		actions:   make(map[string]domain.Value, len(actions)),
		artifacts: make(map[string]domain.Value, len(artifacts)),
	}
	for k, v := range actions {
		l.actions[k] = v
	}
	for k, v := range artifacts {
		l.artifacts[k] = v
	}
	return l
}

// NewFromYAML creates a Loader from raw action.yaml and metadata.yaml texts.
// This handles parsing automatically, improving DX for tests.
func NewFromYAML(root string, actions, artifacts map[string]string) (*Loader, error) {
	parsedActions := make(map[string]domain.Value, len(actions))
	for id, text := range actions {
		v, err := domain.ParseYAML([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", id, err)
		}
		parsedActions[id] = v
	}
	parsedArtifacts := make(map[string]domain.Value, len(artifacts))
	for id, text := range artifacts {
		v, err := domain.ParseYAML([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", id, err)
		}
		parsedArtifacts[id] = v
	}
	return &Loader{root: root, actions: parsedActions, artifacts: parsedArtifacts}, nil
}

// RootUUID returns the UUID of the viewed result.
func (l *Loader) RootUUID() string { return l.root }

// LoadAction returns the action document that produced uuid.
func (l *Loader) LoadAction(ctx context.Context, uuid string) (domain.Value, error) {
	if err := ctx.Err(); err != nil {
		return domain.Value{}, err
	}
	doc, ok := l.actions[uuid]
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: no action for %s", domain.ErrMissingProvenance, uuid)
	}
	return doc, nil
}

// LoadArtifact returns the metadata document of uuid.
func (l *Loader) LoadArtifact(ctx context.Context, uuid string) (domain.Value, error) {
	if err := ctx.Err(); err != nil {
		return domain.Value{}, err
	}
	doc, ok := l.artifacts[uuid]
	if !ok {
		return domain.Value{}, fmt.Errorf("%w: no metadata for %s", domain.ErrMissingProvenance, uuid)
	}
	return doc, nil
}

// UUIDs returns every artifact UUID with an action document.
func (l *Loader) UUIDs() []string {
	keys := make([]string, 0, len(l.actions))
	for k := range l.actions {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}
