package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a provenance YAML document into a Value.
//
// Scalars follow the YAML core schema except timestamps, which stay strings so
// they remain searchable as written. The QIIME 2 provenance tags are resolved:
//
//	!ref 'environment:plugins:X'  -> "q2-X"
//	!metadata 'a,b:sample.tsv'    -> {file: sample.tsv, artifacts: [a, b]}
//	!no-provenance, !color, !cite -> plain string
//	!set [...]                    -> sequence
func ParseYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if root.Kind == 0 {
		return Null(), nil
	}
	return fromNode(&root)
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return Null(), nil
		}
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		members := make([]Member, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := fromNode(n.Content[i+1])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			members = append(members, Member{Key: key, Value: val})
		}
		return Mapping(members...), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return Value{}, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!ref":
		parts := strings.Split(n.Value, ":")
		if len(parts) < 3 {
			return String(n.Value), nil
		}
		return String("q2-" + parts[2]), nil
	case "!metadata":
		return metadataValue(n.Value), nil
	case "!no-provenance", "!color", "!cite":
		return String(n.Value), nil
	}

	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			return String(n.Value), nil
		}
		return Bool(b), nil
	case "!!int":
		if f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64); err == nil {
			return Number(f), nil
		}
		if i, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64); err == nil {
			return Number(float64(i)), nil
		}
		return String(n.Value), nil
	case "!!float":
		switch strings.ToLower(n.Value) {
		case ".inf", "+.inf":
			return Number(math.Inf(1)), nil
		case "-.inf":
			return Number(math.Inf(-1)), nil
		case ".nan":
			return Number(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
		if err != nil {
			return String(n.Value), nil
		}
		return Number(f), nil
	}
	return String(n.Value), nil
}

func metadataValue(raw string) Value {
	artifactsPart, file, found := strings.Cut(raw, ":")
	if !found {
		return Mapping(M("file", String(raw)), M("artifacts", Sequence()))
	}
	var artifacts []Value
	for _, id := range strings.Split(artifactsPart, ",") {
		if id = strings.TrimSpace(id); id != "" {
			artifacts = append(artifacts, String(id))
		}
	}
	return Mapping(M("file", String(file)), M("artifacts", Sequence(artifacts...)))
}

// MarshalYAML lets yaml.v3 encode a Value with mapping order preserved.
func (v Value) MarshalYAML() (any, error) {
	return v.toNode(), nil
}

func (v Value) toNode() *yaml.Node {
	switch v.kind {
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			n.Content = append(n.Content, item.toNode())
		}
		return n
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.members {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				m.Value.toNode())
		}
		return n
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindNumber:
		text := formatNumber(v.n)
		tag := "!!float"
		if _, err := strconv.ParseInt(text, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
