package provenance

import (
	"testing"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestLayout(t *testing.T) {
	in := []domain.ResultNode{
		{ID: "r3", Parent: "z", Row: 3},
		{ID: "c", Parent: "c", Row: 1},
		{ID: "a1", Parent: "a", Row: 1},
		{ID: "b", Parent: "b", Row: 1},
		{ID: "a2", Parent: "a", Row: 1},
		{ID: "m", Parent: "", Row: 1},
		{ID: "r2", Parent: "y", Row: 2},
	}

	out, width := layout(in)

	var got []string
	for _, n := range out {
		got = append(got, n.ID)
	}
	assert.Equal(t, []string{"m", "a1", "a2", "b", "c", "r2", "r3"}, got)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 0}, []int{out[0].Col, out[1].Col, out[2].Col, out[3].Col, out[4].Col, out[5].Col, out[6].Col})
	assert.Equal(t, 5, width)

	// input is left untouched
	assert.Equal(t, "r3", in[0].ID)
}
