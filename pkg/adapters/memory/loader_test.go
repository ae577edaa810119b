package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/provview/pkg/adapters/memory"
	"github.com/aretw0/provview/pkg/domain"
	contract "github.com/aretw0/provview/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rootID   = "6a560ee1-2aa5-4b8c-9a4e-1bd9a1c4e5a1"
	parentID = "0f1b2b36-54c1-4d4d-9bb5-7a5ad6f0b3c2"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	actions := map[string]string{
		rootID: `
execution:
  uuid: e-root
action:
  type: method
  plugin: !ref 'environment:plugins:diversity'
  action: alpha_phylogenetic
  inputs:
  - table: ` + parentID + `
`,
		parentID: `
execution:
  uuid: e-import
action:
  type: import
`,
	}
	artifacts := map[string]string{
		rootID:   "uuid: " + rootID + "\ntype: SampleData[AlphaDiversity]\n",
		parentID: "uuid: " + parentID + "\ntype: FeatureTable[Frequency]\n",
	}

	loader, err := memory.NewFromYAML(rootID, actions, artifacts)
	require.NoError(t, err)

	contract.LoaderContractTest(t, loader, []string{rootID, parentID})
}

func TestInMemoryLoader_ResolvesTags(t *testing.T) {
	loader, err := memory.NewFromYAML(rootID, map[string]string{
		rootID: "execution:\n  uuid: e1\naction:\n  type: method\n  plugin: !ref 'environment:plugins:feature-table'\n",
	}, nil)
	require.NoError(t, err)

	doc, err := loader.LoadAction(context.Background(), rootID)
	require.NoError(t, err)

	plugin, ok := doc.Lookup("action", "plugin")
	require.True(t, ok)
	assert.Equal(t, "q2-feature-table", plugin.Scalar())
}

func TestInMemoryLoader_InvalidYAML(t *testing.T) {
	_, err := memory.NewFromYAML(rootID, map[string]string{rootID: "action: [unclosed"}, nil)
	assert.Error(t, err)
}

func TestInMemoryLoader_CancelledContext(t *testing.T) {
	loader := memory.NewLoader(rootID, map[string]domain.Value{rootID: domain.Null()}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.LoadAction(ctx, rootID)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestInMemoryLoader_UUIDs(t *testing.T) {
	loader := memory.NewLoader(rootID, map[string]domain.Value{
		rootID:   domain.Null(),
		parentID: domain.Null(),
	}, nil)
	assert.Equal(t, []string{parentID, rootID}, loader.UUIDs())
}
