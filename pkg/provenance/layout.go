package provenance

import (
	"sort"

	"github.com/aretw0/provview/pkg/domain"
)

// layout orders the result nodes of each row by parent action id and
// assigns columns. Nodes with the same parent keep discovery order. It
// returns the nodes sorted by row then column, and the width of the widest
// row.
func layout(results []domain.ResultNode) ([]domain.ResultNode, int) {
	out := make([]domain.ResultNode, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Parent < out[j].Parent
	})

	width := 0
	col := 0
	for i := range out {
		if i > 0 && out[i].Row != out[i-1].Row {
			col = 0
		}
		out[i].Col = col
		if col+1 > width {
			width = col + 1
		}
		col++
	}
	return out, width
}
