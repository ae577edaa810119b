package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/internal/presentation/graph"
	"github.com/aretw0/provview/pkg/archive"
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/provenance"
	"github.com/aretw0/provview/pkg/session"
)

// LoadRequest is the body of POST /results.
type LoadRequest struct {
	Source string `json:"source"`
}

// ResultSummary describes a loaded result.
type ResultSummary struct {
	UUID          string           `json:"uuid"`
	Source        string           `json:"source,omitempty"`
	Type          string           `json:"type,omitempty"`
	Format        string           `json:"format,omitempty"`
	Visualization bool             `json:"visualization"`
	IndexPath     string           `json:"index_path,omitempty"`
	Version       *archive.Version `json:"version,omitempty"`
	Height        int              `json:"height"`
	Width         int              `json:"width"`
	Actions       int              `json:"actions"`
	Results       int              `json:"results"`
	Truncated     int              `json:"truncated"`
}

// ResultDetail is a summary plus the full tree.
type ResultDetail struct {
	ResultSummary
	Tree *provenance.Tree `json:"tree"`
}

// NodeResponse is one node with its document.
type NodeResponse struct {
	ID       string       `json:"id"`
	Kind     string       `json:"kind"`
	Document domain.Value `json:"document"`
}

// SearchResponse lists the nodes matching a query.
type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

// SearchHit is one matching node.
type SearchHit struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func summarize(res *provview.Result) ResultSummary {
	sum := ResultSummary{
		UUID:      res.UUID(),
		Height:    res.Tree.Height,
		Width:     res.Tree.Width,
		Actions:   len(res.Tree.Actions),
		Results:   len(res.Tree.Results),
		Truncated: len(res.Tree.Truncations),
	}
	if a := res.Archive; a != nil {
		version := a.Version
		sum.Source = a.Source
		sum.Type = a.Metadata.Type
		sum.Format = a.Metadata.Format
		sum.Visualization = a.IsVisualization()
		sum.IndexPath = a.IndexPath()
		sum.Version = &version
	}
	return sum
}

func nodeKind(tree *provenance.Tree, id string) string {
	if _, ok := tree.Action(id); ok {
		return "action"
	}
	if r, ok := tree.Result(id); ok {
		return r.Kind
	}
	return ""
}

// LoadResult handles POST /results. Concurrent loads of the same source share
// a single build.
func (s *Server) LoadResult(w http.ResponseWriter, r *http.Request) {
	var body LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		s.logger.Warn("LoadResult: Invalid request body", "error", err)
		return
	}

	res, shared, err := s.Sessions.Load(r.Context(), body.Source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("LoadResult", "uuid", res.UUID(), "shared", shared)
	writeJSON(w, http.StatusCreated, summarize(res))
}

// ListResults handles GET /results.
func (s *Server) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ResultSummary, 0, len(results))
	for _, res := range results {
		out = append(out, summarize(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) result(w http.ResponseWriter, r *http.Request) (*provview.Result, bool) {
	res, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res, true
}

// GetResult handles GET /results/{uuid}.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ResultDetail{ResultSummary: summarize(res), Tree: res.Tree})
}

// DeleteResult handles DELETE /results/{uuid}.
func (s *Server) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /results/{uuid}/graph. With ?format=mermaid the tree
// is rendered as a Mermaid flowchart, highlighting the hits of ?q= if given.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w, r)
	if !ok {
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, res.Tree)
	case "mermaid":
		var overlay *graph.Overlay
		if q := r.URL.Query().Get("q"); q != "" {
			hits, err := res.Search(r.Context(), q)
			if err != nil && !errors.Is(err, domain.ErrNoMatches) {
				s.writeError(w, r, err)
				return
			}
			overlay = &graph.Overlay{Highlighted: hits.Sorted()}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(graph.GenerateMermaid(res.Tree, overlay)))
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown format %q", format)})
	}
}

// GetNode handles GET /results/{uuid}/nodes/{id}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w, r)
	if !ok {
		return
	}
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid node id"})
		return
	}
	doc, found := res.Tree.Document(id)
	if !found {
		s.writeError(w, r, fmt.Errorf("%w: node %s", domain.ErrResultNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, NodeResponse{ID: id, Kind: nodeKind(res.Tree, id), Document: doc})
}

// Search handles GET /results/{uuid}/search?q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	hits, err := res.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := SearchResponse{Query: q, Hits: make([]SearchHit, 0, len(hits))}
	for _, id := range hits.Sorted() {
		resp.Hits = append(resp.Hits, SearchHit{ID: id, Kind: nodeKind(res.Tree, id)})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFile handles GET /results/{uuid}/files/*, serving files of the archive
// such as a visualization's data/index.html.
func (s *Server) GetFile(w http.ResponseWriter, r *http.Request) {
	res, release, err := s.Sessions.Acquire(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer release()
	if res.Archive == nil {
		s.writeError(w, r, fmt.Errorf("%w: result %s has no archive", domain.ErrResultNotFound, res.UUID()))
		return
	}
	f, err := res.Archive.File(chi.URLParam(r, "*"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "provview-http",
		"version": strings.TrimSpace(provview.Version),
	})
}

func (s *Server) broadcast(e session.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	s.Streams.Broadcast(string(data))
}
