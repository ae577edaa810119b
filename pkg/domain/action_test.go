package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/provview/pkg/domain"
)

const filterDoc = `
execution:
  uuid: e1
  runtime:
    start: 2024-03-01T10:00:00.000000+00:00
action:
  type: method
  plugin: !ref 'environment:plugins:feature-table'
  action: filter_samples
  inputs:
  - table: t1
  - tree: null
  - samples:
    - s1
    - s2
  parameters:
  - min_frequency: 10
  - metadata: !metadata 'm1:sample.tsv'
environment:
  framework:
    version: 2024.2.0
`

func TestDecodeAction(t *testing.T) {
	doc, err := domain.ParseYAML([]byte(filterDoc))
	require.NoError(t, err)

	rec, err := domain.DecodeAction(doc)
	require.NoError(t, err)

	assert.Equal(t, "e1", rec.ExecutionID)
	assert.Equal(t, domain.ActionTypeMethod, rec.Type)
	assert.Equal(t, "q2-feature-table", rec.Plugin)
	assert.Equal(t, "filter-samples", rec.Action)
	assert.True(t, rec.HasHistory())

	require.Len(t, rec.Inputs, 3)
	assert.Equal(t, "tree", rec.Inputs[1].Name)
	assert.Nil(t, domain.InputRefs(rec.Inputs[1].Value))
	require.Len(t, rec.Parameters, 2)

	assert.Equal(t, []string{"t1", "s1", "s2", "m1"}, rec.ArtifactUUIDs())

	name, ok := rec.Document.Lookup("action", "action")
	require.True(t, ok)
	assert.Equal(t, "filter-samples", name.Scalar())

	version, ok := rec.Environment.Lookup("framework", "version")
	require.True(t, ok)
	assert.Equal(t, "2024.2.0", version.Scalar())
}

func TestDecodeAction_Errors(t *testing.T) {
	_, err := domain.DecodeAction(domain.String("nope"))
	assert.Error(t, err)

	doc, err := domain.ParseYAML([]byte("action:\n  type: import\n"))
	require.NoError(t, err)
	_, err = domain.DecodeAction(doc)
	assert.ErrorContains(t, err, "execution.uuid")
}

func TestDecodeAction_Import(t *testing.T) {
	doc, err := domain.ParseYAML([]byte("execution:\n  uuid: i1\naction:\n  type: import\n"))
	require.NoError(t, err)
	rec, err := domain.DecodeAction(doc)
	require.NoError(t, err)
	assert.False(t, rec.HasHistory())
	assert.Empty(t, rec.ArtifactUUIDs())
	assert.Empty(t, rec.Plugin)
}

func TestInputRefs_Collection(t *testing.T) {
	doc, err := domain.ParseYAML([]byte("- left: u1\n- right: u2\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.InputRef{
		{UUID: "u1", CollectionKey: "left", InCollection: true},
		{UUID: "u2", CollectionKey: "right", InCollection: true},
	}, domain.InputRefs(doc))
}

func TestNormalizeActionName(t *testing.T) {
	assert.Equal(t, "core-metrics-phylogenetic", domain.NormalizeActionName("core_metrics_phylogenetic"))
}
