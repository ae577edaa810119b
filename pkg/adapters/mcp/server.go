package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/internal/logging"
	"github.com/aretw0/provview/internal/presentation/graph"
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/session"
)

const resultsURI = "provview://results"

// ResultInfo describes a loaded result.
type ResultInfo struct {
	UUID          string `json:"uuid" jsonschema_description:"Root UUID of the result"`
	Type          string `json:"type,omitempty" jsonschema_description:"Semantic type of the result"`
	Format        string `json:"format,omitempty" jsonschema_description:"Directory format of the result"`
	Visualization bool   `json:"visualization" jsonschema_description:"Whether the result is a visualization"`
	Height        int    `json:"height" jsonschema_description:"Number of action levels in the provenance tree"`
	Width         int    `json:"width" jsonschema_description:"Largest number of actions on one level"`
	Actions       int    `json:"actions" jsonschema_description:"Number of actions in the tree"`
	Results       int    `json:"results" jsonschema_description:"Number of results in the tree"`
	Truncated     int    `json:"truncated" jsonschema_description:"Number of ancestors whose provenance was missing"`
}

// ResultList is the output of list_results.
type ResultList struct {
	Results []ResultInfo `json:"results" jsonschema_description:"Loaded results ordered by UUID"`
}

// SearchHit is one node matching a query.
type SearchHit struct {
	ID   string `json:"id" jsonschema_description:"Node id"`
	Kind string `json:"kind" jsonschema_description:"action, result, collection or missing"`
}

// SearchResult is the output of search_provenance.
type SearchResult struct {
	Query string      `json:"query" jsonschema_description:"The query as received"`
	Hits  []SearchHit `json:"hits" jsonschema_description:"Matching nodes ordered by id"`
}

// Server exposes loaded provenance trees as an MCP server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server over sessions.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("provview-mcp", strings.TrimSpace(provview.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: load_result
	s.mcpServer.AddTool(mcp.NewTool("load_result",
		mcp.WithDescription("Load a QIIME 2 result (.qza/.qzv path, extracted directory or URL) and build its provenance tree."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Path or http(s) URL of the result")),
		mcp.WithOutputSchema[ResultInfo](),
	), mcp.NewStructuredToolHandler(s.handleLoad))

	// TOOL: list_results
	s.mcpServer.AddTool(mcp.NewTool("list_results",
		mcp.WithDescription("List the results loaded in this server."),
		mcp.WithOutputSchema[ResultList](),
	), mcp.NewStructuredToolHandler(s.handleList))

	// TOOL: search_provenance
	s.mcpServer.AddTool(mcp.NewTool("search_provenance",
		mcp.WithDescription("Search the provenance tree of a loaded result. "+
			"Queries are key:value pairs such as action:\"filter-samples\" combined with AND, OR and parentheses."),
		mcp.WithString("uuid", mcp.Required(), mcp.Description("Root UUID of a loaded result")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Provenance query")),
		mcp.WithOutputSchema[SearchResult](),
	), mcp.NewStructuredToolHandler(s.handleSearch))

	// TOOL: get_node
	s.mcpServer.AddTool(mcp.NewTool("get_node",
		mcp.WithDescription("Get the provenance document of one action, result or collection node."),
		mcp.WithString("uuid", mcp.Required(), mcp.Description("Root UUID of a loaded result")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id as returned by search_provenance")),
	), s.handleGetNode)

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render the provenance tree of a loaded result as a Mermaid flowchart."),
		mcp.WithString("uuid", mcp.Required(), mcp.Description("Root UUID of a loaded result")),
		mcp.WithString("query", mcp.Description("Highlight the nodes matching this query (optional)")),
	), s.handleGetGraph)
}

// Handler methods for structured tools

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ResultInfo, error) {
	source, _ := args["source"].(string)
	res, _, err := s.sessions.Load(ctx, source)
	if err != nil {
		s.logger.Warn("MCP load_result failed", "source", source, "error", err)
		return ResultInfo{}, fmt.Errorf("load failed: %w", err)
	}
	return info(res), nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ResultList, error) {
	results, err := s.sessions.List(ctx)
	if err != nil {
		return ResultList{}, err
	}
	out := ResultList{Results: make([]ResultInfo, 0, len(results))}
	for _, res := range results {
		out.Results = append(out.Results, info(res))
	}
	return out, nil
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SearchResult, error) {
	id, _ := args["uuid"].(string)
	q, _ := args["query"].(string)

	res, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SearchResult{}, err
	}
	hits, err := res.Search(ctx, q)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search failed: %w", err)
	}

	out := SearchResult{Query: q, Hits: make([]SearchHit, 0, len(hits))}
	for _, hit := range hits.Sorted() {
		out.Hits = append(out.Hits, SearchHit{ID: hit, Kind: nodeKind(res, hit)})
	}
	return out, nil
}

func (s *Server) handleGetNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.sessions.Get(ctx, request.GetString("uuid", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := request.GetString("id", "")
	doc, ok := res.Tree.Document(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%v: node %s", domain.ErrResultNotFound, id)), nil
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.sessions.Get(ctx, request.GetString("uuid", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var overlay *graph.Overlay
	if q := request.GetString("query", ""); q != "" {
		hits, err := res.Search(ctx, q)
		if err != nil && !errors.Is(err, domain.ErrNoMatches) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		overlay = &graph.Overlay{Highlighted: hits.Sorted()}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(res.Tree, overlay)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: provview://results
	s.mcpServer.AddResource(mcp.NewResource(resultsURI, "Loaded Results",
		mcp.WithResourceDescription("Summaries of the results loaded in this server"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.handleList(ctx, mcp.CallToolRequest{}, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list results: %w", err)
		}
		jsonBytes, _ := json.Marshal(list)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      resultsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func info(res *provview.Result) ResultInfo {
	out := ResultInfo{
		UUID:      res.UUID(),
		Height:    res.Tree.Height,
		Width:     res.Tree.Width,
		Actions:   len(res.Tree.Actions),
		Results:   len(res.Tree.Results),
		Truncated: len(res.Tree.Truncations),
	}
	if a := res.Archive; a != nil {
		out.Type = a.Metadata.Type
		out.Format = a.Metadata.Format
		out.Visualization = a.IsVisualization()
	}
	return out
}

func nodeKind(res *provview.Result, id string) string {
	if _, ok := res.Tree.Action(id); ok {
		return "action"
	}
	if r, ok := res.Tree.Result(id); ok {
		return r.Kind
	}
	return ""
}
