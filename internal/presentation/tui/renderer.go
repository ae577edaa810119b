package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/provview/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// With plain set it uses the notty style so output is safe for pipes.
func NewRenderer(plain bool) func(string) (string, error) {
	style := glamour.WithAutoStyle() // Automatically detect light/dark background
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// DocumentMarkdown formats a node document as a markdown section with a YAML
// code block, keeping mapping order.
func DocumentMarkdown(title string, doc domain.Value) (string, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", title)
	sb.WriteString("```yaml\n")
	sb.Write(data)
	sb.WriteString("```\n")
	return sb.String(), nil
}
