package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/provenance"
)

// Overlay marks nodes to highlight on the graph, such as search hits.
type Overlay struct {
	Highlighted []string
}

// GenerateMermaid produces a Mermaid flowchart of a provenance tree.
// Each action is a subgraph holding the results it produced:
// - Result: [Rectangle]
// - Collection: [[Subroutine]] labelled with its size
// - Missing: ((Circle)) outside any action
// Edges run from a result to the action that consumed it, labelled with the
// parameter name.
func GenerateMermaid(tree *provenance.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, action := range tree.Actions {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", actionID(action.ID), escape(actionLabel(action)))
		for _, r := range tree.ProducedBy(action.ID) {
			sb.WriteString("    ")
			writeResult(&sb, tree, r)
		}
		sb.WriteString("    end\n")
	}
	for _, r := range tree.Results {
		if r.Kind == domain.NodeKindMissing {
			writeResult(&sb, tree, r)
		}
	}

	for _, e := range tree.Edges {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", resultID(e.Source), escape(e.Param), actionID(e.Target))
	}

	if overlay != nil && len(overlay.Highlighted) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef hit fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Highlighted {
			var safeID string
			switch {
			case hasResult(tree, id):
				safeID = resultID(id)
			case hasAction(tree, id):
				safeID = actionID(id)
			default:
				continue
			}
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s hit;\n", safeID)
			}
		}
	}

	return sb.String()
}

func writeResult(sb *strings.Builder, tree *provenance.Tree, r domain.ResultNode) {
	opener, closer := "[", "]"
	label := shortID(r.ID)

	switch r.Kind {
	case domain.NodeKindCollection:
		opener, closer = "[[", "]]"
		if c, ok := tree.Collection(r.ID); ok {
			label = fmt.Sprintf("%s (%d items)", collectionParam(r.ID), len(c.Elements))
		}
	case domain.NodeKindMissing:
		opener, closer = "((", "))"
		label += " <br/> missing"
	default:
		if doc, ok := tree.Document(r.ID); ok {
			if semantic, ok := doc.Get("type"); ok {
				if s, ok := semantic.AsString(); ok && s != "" {
					label += " <br/> " + s
				}
			}
		}
	}
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", resultID(r.ID), opener, escape(label), closer)
}

func actionLabel(a domain.ActionNode) string {
	if a.Plugin == "" {
		return a.Type
	}
	return a.Plugin + " " + a.Action
}

func hasResult(tree *provenance.Tree, id string) bool {
	_, ok := tree.Result(id)
	return ok
}

func hasAction(tree *provenance.Tree, id string) bool {
	_, ok := tree.Action(id)
	return ok
}

// collectionParam is the input name a collection was passed under.
func collectionParam(id string) string {
	param, _, _ := strings.Cut(id, ":")
	return param
}

func shortID(id string) string {
	if len(id) > 8 && !strings.Contains(id, ":") {
		return id[:8]
	}
	return id
}

func actionID(id string) string { return "a_" + sanitizeMermaidID(id) }

func resultID(id string) string { return "r_" + sanitizeMermaidID(id) }

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, id)
}
