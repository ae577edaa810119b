package tui_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/provview/internal/presentation/tui"
	"github.com/aretw0/provview/pkg/archive"
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/dsl"
	"github.com/aretw0/provview/pkg/provenance"
)

func sampleTree(t *testing.T) *provenance.Tree {
	t.Helper()
	b := dsl.New("root")
	b.Result("root").Type("DistanceMatrix").
		Method("q2-diversity", "beta_diversity").
		Input("table", "table").
		Input("phylogeny", "gone")
	b.Result("table").Type("FeatureTable[Frequency]").Import()

	loader, err := b.Build()
	require.NoError(t, err)
	tree, err := provenance.Build(context.Background(), loader)
	require.NoError(t, err)
	return tree
}

func TestTreeTable(t *testing.T) {
	out := tui.TreeTable(sampleTree(t))

	assert.Contains(t, out, "PRODUCED BY")
	assert.Contains(t, out, "q2-diversity beta-diversity")
	assert.Contains(t, out, "import")
	assert.Contains(t, out, domain.NodeKindMissing)
	assert.Contains(t, out, "gone")
}

func TestHitTable(t *testing.T) {
	out := tui.HitTable(sampleTree(t), []string{"exec-root", "table", "nope"})

	assert.Contains(t, out, "action")
	assert.Contains(t, out, "FeatureTable[Frequency]")
	assert.Contains(t, out, "unknown")
}

func TestFileTable(t *testing.T) {
	out := tui.FileTable([]archive.Entry{
		{Name: "data/index.html", Size: 2048},
		{Name: "metadata.yaml", Size: 100},
	})

	assert.Contains(t, out, "data/index.html")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "2 files")
	assert.Contains(t, out, "2.1 kB")
}

func TestDocumentMarkdown(t *testing.T) {
	doc := domain.Mapping(
		domain.M("uuid", domain.String("abc")),
		domain.M("type", domain.String("Foo")),
	)
	md, err := tui.DocumentMarkdown("abc", doc)
	require.NoError(t, err)
	assert.Equal(t, "## abc\n\n```yaml\nuuid: abc\ntype: Foo\n```\n", md)

	rendered, err := tui.NewRenderer(true)(md)
	require.NoError(t, err)
	assert.Contains(t, rendered, "uuid: abc")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3\n")
	assert.True(t, strings.Contains(buf.String(), "v1.2.3"))
}
