package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/aretw0/provview/pkg/archive"
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/provenance"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

// Title renders a heading line.
func Title(s string) string { return titleStyle.Render(s) }

// TreeTable lists the result nodes of a tree by row and column with the
// action that produced each one.
func TreeTable(tree *provenance.Tree) string {
	t := newTable("ROW", "COL", "KIND", "NODE", "PRODUCED BY")
	var kinds []string
	for _, r := range tree.Results {
		producer := "-"
		if a, ok := tree.Action(r.Parent); ok {
			producer = ActionLabel(a)
		}
		kinds = append(kinds, r.Kind)
		t.Row(strconv.Itoa(r.Row), strconv.Itoa(r.Col), r.Kind, r.ID, producer)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(kinds) && kinds[row] == domain.NodeKindMissing {
			return missingStyle
		}
		return cellStyle
	})
	return t.Render()
}

// HitTable lists search hits with what kind of node each one is.
func HitTable(tree *provenance.Tree, hits []string) string {
	t := newTable("NODE", "KIND", "DESCRIPTION")
	for _, id := range hits {
		kind, desc := describe(tree, id)
		t.Row(id, kind, desc)
	}
	t.StyleFunc(plainStyle)
	return t.Render()
}

// FileTable lists archive entries with human readable sizes.
func FileTable(entries []archive.Entry) string {
	t := newTable("FILE", "SIZE")
	var total uint64
	for _, e := range entries {
		total += uint64(e.Size)
		t.Row(e.Name, humanize.Bytes(uint64(e.Size)))
	}
	t.Row(fmt.Sprintf("%d files", len(entries)), humanize.Bytes(total))
	t.StyleFunc(plainStyle)
	return t.Render()
}

func plainStyle(row, col int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

// ActionLabel is "plugin action", or the action type for imports.
func ActionLabel(a domain.ActionNode) string {
	if a.Plugin == "" {
		return a.Type
	}
	return a.Plugin + " " + a.Action
}

func describe(tree *provenance.Tree, id string) (string, string) {
	if a, ok := tree.Action(id); ok {
		return "action", ActionLabel(a)
	}
	if r, ok := tree.Result(id); ok {
		if r.Kind == domain.NodeKindCollection {
			if c, ok := tree.Collection(id); ok {
				return r.Kind, fmt.Sprintf("%d items", len(c.Elements))
			}
		}
		if doc, ok := tree.Document(id); ok {
			if semantic, ok := doc.Get("type"); ok {
				return r.Kind, semantic.Scalar()
			}
		}
		return r.Kind, ""
	}
	return "unknown", ""
}
