package dsl

import (
	"fmt"

	"github.com/aretw0/provview/pkg/domain"
)

// ResultBuilder provides a fluent API for configuring one result and the
// action that produced it.
type ResultBuilder struct {
	uuid        string
	executionID string
	semantic    string
	format      string

	actionType string
	plugin     string
	action     string
	aliasOf    string

	inputs []domain.Value
	params []domain.Value
	env    []domain.Member
	err    error
}

// Type sets the semantic type recorded in metadata.yaml.
func (r *ResultBuilder) Type(semantic string) *ResultBuilder {
	r.semantic = semantic
	return r
}

// Format sets the directory format recorded in metadata.yaml.
func (r *ResultBuilder) Format(format string) *ResultBuilder {
	r.format = format
	return r
}

// Execution overrides the generated execution id.
func (r *ResultBuilder) Execution(id string) *ResultBuilder {
	r.executionID = id
	return r
}

// Import marks the result as imported data with no upstream history.
func (r *ResultBuilder) Import() *ResultBuilder {
	r.actionType = domain.ActionTypeImport
	r.plugin, r.action = "", ""
	return r
}

// Method marks the result as produced by a plugin method.
func (r *ResultBuilder) Method(plugin, action string) *ResultBuilder {
	return r.produced(domain.ActionTypeMethod, plugin, action)
}

// Visualizer marks the result as produced by a plugin visualizer.
func (r *ResultBuilder) Visualizer(plugin, action string) *ResultBuilder {
	r.semantic = "Visualization"
	return r.produced(domain.ActionTypeVisualizer, plugin, action)
}

// Pipeline marks the result as produced by a pipeline.
func (r *ResultBuilder) Pipeline(plugin, action string) *ResultBuilder {
	return r.produced(domain.ActionTypePipeline, plugin, action)
}

func (r *ResultBuilder) produced(kind, plugin, action string) *ResultBuilder {
	r.actionType = kind
	r.plugin = plugin
	r.action = action
	return r
}

// AliasOf records the artifact this pipeline output aliases.
func (r *ResultBuilder) AliasOf(uuid string) *ResultBuilder {
	r.aliasOf = uuid
	return r
}

// Input adds a named input bound to a single result.
func (r *ResultBuilder) Input(name, uuid string) *ResultBuilder {
	r.inputs = append(r.inputs, domain.Mapping(domain.M(name, domain.String(uuid))))
	return r
}

// OptionalInput adds a named input that was not provided.
func (r *ResultBuilder) OptionalInput(name string) *ResultBuilder {
	r.inputs = append(r.inputs, domain.Mapping(domain.M(name, domain.Null())))
	return r
}

// List adds a named input bound to a plain list of results.
func (r *ResultBuilder) List(name string, uuids ...string) *ResultBuilder {
	items := make([]domain.Value, len(uuids))
	for i, id := range uuids {
		items[i] = domain.String(id)
	}
	r.inputs = append(r.inputs, domain.Mapping(domain.M(name, domain.Sequence(items...))))
	return r
}

// Collection adds a named input bound to a keyed collection. Elements are
// given as alternating key, uuid pairs.
func (r *ResultBuilder) Collection(name string, pairs ...string) *ResultBuilder {
	if len(pairs)%2 != 0 {
		r.err = fmt.Errorf("collection %q needs key, uuid pairs", name)
		return r
	}
	items := make([]domain.Value, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		items = append(items, domain.Mapping(domain.M(pairs[i], domain.String(pairs[i+1]))))
	}
	r.inputs = append(r.inputs, domain.Mapping(domain.M(name, domain.Sequence(items...))))
	return r
}

// Param adds a parameter. Plain Go values are converted with
// domain.FromInterface.
func (r *ResultBuilder) Param(name string, value any) *ResultBuilder {
	v, err := domain.FromInterface(value)
	if err != nil {
		r.err = err
		return r
	}
	r.params = append(r.params, domain.Mapping(domain.M(name, v)))
	return r
}

// Metadata adds a metadata parameter read from file and derived from the
// given artifacts.
func (r *ResultBuilder) Metadata(name, file string, uuids ...string) *ResultBuilder {
	items := make([]domain.Value, len(uuids))
	for i, id := range uuids {
		items[i] = domain.String(id)
	}
	v := domain.Mapping(
		domain.M("file", domain.String(file)),
		domain.M("artifacts", domain.Sequence(items...)),
	)
	r.params = append(r.params, domain.Mapping(domain.M(name, v)))
	return r
}

// Env adds an entry to the environment section of the action.
func (r *ResultBuilder) Env(key string, value any) *ResultBuilder {
	v, err := domain.FromInterface(value)
	if err != nil {
		r.err = err
		return r
	}
	r.env = append(r.env, domain.M(key, v))
	return r
}

func (r *ResultBuilder) actionDocument() domain.Value {
	action := []domain.Member{domain.M("type", domain.String(r.actionType))}
	if r.actionType != domain.ActionTypeImport {
		action = append(action,
			domain.M("plugin", domain.String(r.plugin)),
			domain.M("action", domain.String(r.action)),
			domain.M("inputs", domain.Sequence(r.inputs...)),
			domain.M("parameters", domain.Sequence(r.params...)),
		)
	}
	if r.aliasOf != "" {
		action = append(action, domain.M("alias-of", domain.String(r.aliasOf)))
	}

	env := r.env
	if len(env) == 0 {
		env = []domain.Member{domain.M("framework", domain.Mapping(domain.M("version", domain.String("2023.9.1"))))}
	}

	return domain.Mapping(
		domain.M("execution", domain.Mapping(domain.M("uuid", domain.String(r.executionID)))),
		domain.M("action", domain.Mapping(action...)),
		domain.M("environment", domain.Mapping(env...)),
	)
}

func (r *ResultBuilder) artifactDocument() domain.Value {
	members := []domain.Member{
		domain.M("uuid", domain.String(r.uuid)),
		domain.M("type", domain.String(r.semantic)),
	}
	if r.format != "" {
		members = append(members, domain.M("format", domain.String(r.format)))
	} else {
		members = append(members, domain.M("format", domain.Null()))
	}
	return domain.Mapping(members...)
}
