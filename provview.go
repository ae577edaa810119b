package provview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/provview/internal/logging"
	"github.com/aretw0/provview/pkg/archive"
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/ports"
	"github.com/aretw0/provview/pkg/provenance"
	"github.com/aretw0/provview/pkg/query"
	"github.com/aretw0/provview/pkg/search"
)

// Result is a loaded result with its reconstructed provenance.
// It is immutable after Open and safe for concurrent searches.
type Result struct {
	// Archive is nil when the result was built from a custom loader.
	Archive *archive.Archive
	Tree    *provenance.Tree

	maxQuerySize int
	hooks        domain.Hooks
	logger       *slog.Logger

	corpusOnce sync.Once
	corpus     search.Corpus
}

type options struct {
	logger       *slog.Logger
	hooks        domain.Hooks
	maxQuerySize int
}

// Option configures Open and FromLoader.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks registers observers for builds and searches.
func WithHooks(hooks domain.Hooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithMaxQuerySize bounds the size in bytes of accepted queries.
func WithMaxQuerySize(n int) Option {
	return func(o *options) {
		o.maxQuerySize = n
	}
}

func newOptions(opts []Option) *options {
	o := &options{maxQuerySize: query.DefaultMaxSize}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	return o
}

// Open loads a .qza/.qzv file, an extracted directory or an http(s) URL and
// builds its provenance tree.
func Open(ctx context.Context, source string, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	a, err := archive.OpenSource(ctx, source, archive.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	r, err := build(ctx, a, o)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	r.Archive = a
	return r, nil
}

// FromLoader builds a Result from any provenance loader.
func FromLoader(ctx context.Context, loader ports.Loader, opts ...Option) (*Result, error) {
	return build(ctx, loader, newOptions(opts))
}

func build(ctx context.Context, loader ports.Loader, o *options) (*Result, error) {
	logger := o.logger.With("result", loader.RootUUID())
	tree, err := provenance.Build(ctx, loader,
		provenance.WithLogger(logger),
		provenance.WithHooks(o.hooks))
	if err != nil {
		return nil, fmt.Errorf("failed to build provenance: %w", err)
	}
	return &Result{
		Tree:         tree,
		maxQuerySize: o.maxQuerySize,
		hooks:        o.hooks,
		logger:       logger,
	}, nil
}

// UUID returns the root UUID of the result.
func (r *Result) UUID() string { return r.Tree.Root }

// Corpus returns the searchable documents of the result.
func (r *Result) Corpus() search.Corpus {
	r.corpusOnce.Do(func() {
		r.corpus = r.Tree.Corpus()
	})
	return r.corpus
}

// Search sanitizes and evaluates text against the result's documents.
// Syntax errors match domain.ErrSyntax and empty results domain.ErrNoMatches.
func (r *Result) Search(ctx context.Context, text string) (search.HitSet, error) {
	start := time.Now()
	hits, err := r.search(text)

	if r.hooks.OnSearch != nil {
		r.hooks.OnSearch(ctx, &domain.SearchEvent{
			Root:     r.UUID(),
			Query:    text,
			Hits:     len(hits),
			Duration: time.Since(start),
			Err:      err,
		})
	}
	switch {
	case err == nil:
		r.logger.Debug("search evaluated", "query", text, "hits", len(hits))
	case errors.Is(err, domain.ErrNoMatches):
		r.logger.Debug("search matched nothing", "query", text)
	default:
		r.logger.Warn("search rejected", "query", text, "error", err)
	}
	return hits, err
}

func (r *Result) search(text string) (search.HitSet, error) {
	clean, err := query.Sanitize(text, r.maxQuerySize)
	if err != nil {
		return nil, err
	}
	return search.Search(clean, r.Corpus())
}

// Close releases the underlying archive, if any.
func (r *Result) Close() error {
	if r.Archive == nil {
		return nil
	}
	return r.Archive.Close()
}
