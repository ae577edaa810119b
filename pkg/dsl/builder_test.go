package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/provview/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleHistory(t *testing.T) {
	// 1. Describe the history using the DSL
	b := New("root")

	b.Result("root").
		Type("SampleData[AlphaDiversity]").
		Method("q2-diversity", "alpha_phylogenetic").
		Input("table", "table").
		OptionalInput("phylogeny").
		Param("metric", "faith_pd").
		Metadata("sample_metadata", "sample-metadata.tsv", "md")

	b.Result("table").
		Type("FeatureTable[Frequency]").
		Import()

	// 2. Compile to Loader
	loader, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "root", loader.RootUUID())

	// 3. Verify the generated documents
	ctx := context.Background()
	doc, err := loader.LoadAction(ctx, "root")
	require.NoError(t, err)

	rec, err := domain.DecodeAction(doc)
	require.NoError(t, err)
	assert.Equal(t, "exec-root", rec.ExecutionID)
	assert.Equal(t, domain.ActionTypeMethod, rec.Type)
	assert.Equal(t, "alpha-phylogenetic", rec.Action)
	require.Len(t, rec.Inputs, 2)
	assert.Equal(t, "table", rec.Inputs[0].Name)
	assert.True(t, rec.Inputs[1].Value.IsNull())
	assert.Equal(t, []string{"table", "md"}, rec.ArtifactUUIDs())

	file, ok := domain.MetadataFile(rec.Parameters[1].Value)
	require.True(t, ok)
	assert.Equal(t, "sample-metadata.tsv", file)

	artifact, err := loader.LoadArtifact(ctx, "table")
	require.NoError(t, err)
	semantic, _ := artifact.Get("type")
	assert.Equal(t, "FeatureTable[Frequency]", semantic.Scalar())

	importDoc, err := loader.LoadAction(ctx, "table")
	require.NoError(t, err)
	importRec, err := domain.DecodeAction(importDoc)
	require.NoError(t, err)
	assert.False(t, importRec.HasHistory())
}

func TestBuilder_Collection(t *testing.T) {
	b := New("root")
	b.Result("root").
		Method("q2-demux", "merge").
		Collection("tables", "a", "uuid-a", "b", "uuid-b")

	loader, err := b.Build()
	require.NoError(t, err)

	doc, err := loader.LoadAction(context.Background(), "root")
	require.NoError(t, err)
	rec, err := domain.DecodeAction(doc)
	require.NoError(t, err)

	refs := domain.InputRefs(rec.Inputs[0].Value)
	require.Len(t, refs, 2)
	assert.Equal(t, domain.InputRef{UUID: "uuid-a", CollectionKey: "a", InCollection: true}, refs[0])
	assert.Equal(t, "uuid-b", refs[1].UUID)
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("UndeclaredRoot", func(t *testing.T) {
		_, err := New("root").Build()
		assert.Error(t, err)
	})

	t.Run("OddCollection", func(t *testing.T) {
		b := New("root")
		b.Result("root").Method("p", "a").Collection("tables", "only-key")
		_, err := b.Build()
		assert.ErrorContains(t, err, "key, uuid pairs")
	})

	t.Run("UnsupportedParam", func(t *testing.T) {
		b := New("root")
		b.Result("root").Method("p", "a").Param("bad", struct{}{})
		_, err := b.Build()
		assert.Error(t, err)
	})
}

func TestBuilder_ResultIsIdempotent(t *testing.T) {
	b := New("root")
	first := b.Result("root")
	assert.Same(t, first, b.Result("root"))
}
