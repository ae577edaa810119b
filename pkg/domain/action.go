package domain

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Action types recorded in provenance.
const (
	ActionTypeMethod     = "method"
	ActionTypeVisualizer = "visualizer"
	ActionTypePipeline   = "pipeline"
	ActionTypeImport     = "import"
)

// Argument is one named input or parameter of an action, in declaration order.
type Argument struct {
	Name  string
	Value Value
}

// ActionRecord is the part of an action.yaml document the builder consumes.
type ActionRecord struct {
	ExecutionID string
	Type        string
	Plugin      string
	Action      string
	AliasOf     string
	Inputs      []Argument
	Parameters  []Argument
	Environment Value

	// Document is the full action document with the action name normalized.
	Document Value
}

// actionHeader mirrors the scalar fields of action.yaml for mapstructure.
type actionHeader struct {
	Execution struct {
		UUID string `mapstructure:"uuid"`
	} `mapstructure:"execution"`
	Action struct {
		Type    string `mapstructure:"type"`
		Plugin  string `mapstructure:"plugin"`
		Action  string `mapstructure:"action"`
		AliasOf string `mapstructure:"alias-of"`
	} `mapstructure:"action"`
}

// HasHistory reports whether the action can have anything upstream of it.
func (a ActionRecord) HasHistory() bool {
	switch a.Type {
	case ActionTypeMethod, ActionTypeVisualizer, ActionTypePipeline:
		return true
	}
	return false
}

// NormalizeActionName replaces underscores with hyphens so names match the
// command line spelling.
func NormalizeActionName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// DecodeAction extracts an ActionRecord from a parsed action.yaml document.
func DecodeAction(doc Value) (ActionRecord, error) {
	if doc.Kind() != KindMapping {
		return ActionRecord{}, fmt.Errorf("action document must be a mapping, got %s", doc.Kind())
	}

	var header actionHeader
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &header,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return ActionRecord{}, err
	}
	if err := decoder.Decode(headerInput(doc)); err != nil {
		return ActionRecord{}, fmt.Errorf("failed to decode action header: %w", err)
	}
	if header.Execution.UUID == "" {
		return ActionRecord{}, fmt.Errorf("action document is missing execution.uuid")
	}

	rec := ActionRecord{
		ExecutionID: header.Execution.UUID,
		Type:        header.Action.Type,
		Plugin:      header.Action.Plugin,
		Action:      NormalizeActionName(header.Action.Action),
		AliasOf:     header.Action.AliasOf,
		Document:    doc,
	}

	if action, ok := doc.Get("action"); ok {
		rec.Inputs = arguments(action, "inputs")
		rec.Parameters = arguments(action, "parameters")
		if _, ok := action.Get("action"); ok {
			rec.Document = doc.With("action", action.With("action", String(rec.Action)))
		}
	}
	if env, ok := doc.Get("environment"); ok {
		rec.Environment = env
	}
	return rec, nil
}

// headerInput keeps only the scalar header fields so mapstructure never has to
// reason about free-form inputs and parameters.
func headerInput(doc Value) map[string]any {
	out := map[string]any{}
	if exec, ok := doc.Get("execution"); ok {
		if id, ok := exec.Get("uuid"); ok {
			out["execution"] = map[string]any{"uuid": id.Interface()}
		}
	}
	if action, ok := doc.Get("action"); ok {
		fields := map[string]any{}
		for _, key := range []string{"type", "plugin", "action", "alias-of"} {
			if v, ok := action.Get(key); ok && !v.IsNull() {
				fields[key] = v.Interface()
			}
		}
		out["action"] = fields
	}
	return out
}

// arguments flattens a sequence of single-key mappings, keeping order.
func arguments(action Value, key string) []Argument {
	list, ok := action.Get(key)
	if !ok {
		return nil
	}
	var args []Argument
	for _, item := range list.Items() {
		for _, m := range item.Members() {
			args = append(args, Argument{Name: m.Key, Value: m.Value})
		}
	}
	return args
}

// ArtifactUUIDs lists every artifact referenced by the inputs and parameters,
// in declaration order, without duplicates.
func (a ActionRecord) ArtifactUUIDs() []string {
	var out []string
	seen := map[string]bool{}
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, in := range a.Inputs {
		for _, ref := range InputRefs(in.Value) {
			add(ref.UUID)
		}
	}
	for _, p := range a.Parameters {
		for _, id := range ParameterArtifacts(p.Value) {
			add(id)
		}
	}
	return out
}

// InputRef is one artifact referenced by an input. CollectionKey is set when
// the input was a collection of {key: uuid} elements.
type InputRef struct {
	UUID          string
	CollectionKey string
	InCollection  bool
}

// InputRefs expands an input value: a single uuid, a list of uuids, or a list
// of single-key {key: uuid} mappings. Anything else is an optional input that
// was not provided.
func InputRefs(v Value) []InputRef {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		return []InputRef{{UUID: s}}
	case KindSequence:
		var refs []InputRef
		for _, item := range v.Items() {
			switch item.Kind() {
			case KindString:
				s, _ := item.AsString()
				refs = append(refs, InputRef{UUID: s})
			case KindMapping:
				for _, m := range item.Members() {
					if s, ok := m.Value.AsString(); ok {
						refs = append(refs, InputRef{UUID: s, CollectionKey: m.Key, InCollection: true})
					}
				}
			}
		}
		return refs
	}
	return nil
}

// ParameterArtifacts returns the uuids a parameter carries under an
// `artifacts` key, as produced by metadata parameters.
func ParameterArtifacts(v Value) []string {
	artifacts, ok := v.Get("artifacts")
	if !ok {
		return nil
	}
	var ids []string
	for _, item := range artifacts.Items() {
		if s, ok := item.AsString(); ok {
			ids = append(ids, s)
		}
	}
	return ids
}

// MetadataFile returns the file name of a !metadata parameter value.
func MetadataFile(v Value) (string, bool) {
	if _, ok := v.Get("artifacts"); !ok {
		return "", false
	}
	file, ok := v.Get("file")
	if !ok {
		return "", false
	}
	return file.AsString()
}
