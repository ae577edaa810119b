package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/provview/internal/testutils"
	"github.com/aretw0/provview/pkg/session"
)

const filterExec = "4b1d7c2e-3a5f-4e6d-8c9b-0a1b2c3d4e5f"

func newLoaded(t *testing.T) *Server {
	t.Helper()
	s := NewServer(session.NewManager())
	_, err := s.handleLoad(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"source": testutils.SampleArchive(t),
	})
	require.NoError(t, err)
	return s
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	c, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return c.Text
}

func TestHandleLoadAndList(t *testing.T) {
	s := newLoaded(t)
	ctx := context.Background()

	list, err := s.handleList(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	got := list.Results[0]
	assert.Equal(t, testutils.RootUUID, got.UUID)
	assert.Equal(t, "FeatureTable[Frequency]", got.Type)
	assert.Equal(t, 2, got.Actions)

	_, err = s.handleLoad(ctx, mcp.CallToolRequest{}, map[string]interface{}{"source": ""})
	assert.ErrorIs(t, err, session.ErrNoSource)
}

func TestHandleSearch(t *testing.T) {
	s := newLoaded(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		uuid    string
		query   string
		want    []SearchHit
		wantErr bool
	}{
		{
			name:  "ActionName",
			uuid:  testutils.RootUUID,
			query: `action:"filter-samples"`,
			want:  []SearchHit{{ID: filterExec, Kind: "action"}},
		},
		{name: "SyntaxError", uuid: testutils.RootUUID, query: `action:`, wantErr: true},
		{name: "NoMatches", uuid: testutils.RootUUID, query: `action:"nothing-like-this"`, wantErr: true},
		{name: "UnknownResult", uuid: "missing", query: `type:"import"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.handleSearch(ctx, mcp.CallToolRequest{}, map[string]interface{}{
				"uuid":  tt.uuid,
				"query": tt.query,
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.query, got.Query)
			assert.Equal(t, tt.want, got.Hits)
		})
	}
}

func TestHandleGetNode(t *testing.T) {
	s := newLoaded(t)
	ctx := context.Background()

	res, err := s.handleGetNode(ctx, call("get_node", map[string]any{"uuid": testutils.RootUUID, "id": filterExec}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &doc))
	assert.Contains(t, doc, "action")

	res, err = s.handleGetNode(ctx, call("get_node", map[string]any{"uuid": testutils.RootUUID, "id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGetNode(ctx, call("get_node", map[string]any{"uuid": "missing", "id": filterExec}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleGetGraph(t *testing.T) {
	s := newLoaded(t)
	ctx := context.Background()

	res, err := s.handleGetGraph(ctx, call("get_graph", map[string]any{
		"uuid":  testutils.RootUUID,
		"query": `action:"filter-samples"`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	out := text(t, res)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "classDef hit")

	res, err = s.handleGetGraph(ctx, call("get_graph", map[string]any{"uuid": testutils.RootUUID, "query": "("}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestToolsList(t *testing.T) {
	s := NewServer(session.NewManager())
	msg := s.mcpServer.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"load_result", "list_results", "search_provenance", "get_node", "get_graph"} {
		assert.Contains(t, string(data), `"`+name+`"`)
	}
}
