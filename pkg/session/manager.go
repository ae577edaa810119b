package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/internal/logging"
	"github.com/aretw0/provview/internal/metrics"
	"github.com/aretw0/provview/pkg/adapters/memory"
	"github.com/aretw0/provview/pkg/ports"
)

// Opener loads a result from a path or URL.
type Opener func(ctx context.Context, source string) (*provview.Result, error)

// ErrNoSource is returned by Load for a blank source.
var ErrNoSource = errors.New("source is required")

// Event types passed to change listeners.
const (
	EventLoaded  = "loaded"
	EventDeleted = "deleted"
)

// Event reports a result entering or leaving the manager.
type Event struct {
	Type string `json:"type"`
	UUID string `json:"uuid"`
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to loaded results.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ResultStore[*provview.Result]
	open  Opener

	mu    sync.Mutex
	locks map[string]*lockEntry
	loads singleflight.Group

	// readers counts Acquire handles per result; retired results are closed
	// when their count drops to zero.
	refMu   sync.Mutex
	readers map[*provview.Result]int
	retired map[*provview.Result]bool

	resultOpts []provview.Option
	metrics    *metrics.Metrics
	listeners  []func(Event)
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStore replaces the in-memory result store.
func WithStore(store ports.ResultStore[*provview.Result]) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithOpener replaces provview.Open as the way sources are loaded.
func WithOpener(open Opener) Option {
	return func(m *Manager) {
		m.open = open
	}
}

// WithResultOptions are passed to provview.Open for every load.
func WithResultOptions(opts ...provview.Option) Option {
	return func(m *Manager) {
		m.resultOpts = append(m.resultOpts, opts...)
	}
}

// WithMetrics records load outcomes and wires the builder and search hooks.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// OnChange registers a listener called after every load and delete.
func OnChange(fn func(Event)) Option {
	return func(m *Manager) {
		m.listeners = append(m.listeners, fn)
	}
}

// NewManager creates a Manager backed by an in-memory store unless
// WithStore says otherwise.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		store:  memory.NewStore[*provview.Result](),
		locks:   make(map[string]*lockEntry),
		readers: make(map[*provview.Result]int),
		retired: make(map[*provview.Result]bool),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.open == nil {
		m.open = m.defaultOpen
	}
	return m
}

func (m *Manager) defaultOpen(ctx context.Context, source string) (*provview.Result, error) {
	opts := append([]provview.Option{provview.WithLogger(m.logger)}, m.resultOpts...)
	if m.metrics != nil {
		opts = append(opts, provview.WithHooks(m.metrics.Hooks()))
	}
	return provview.Open(ctx, source, opts...)
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the lock for id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn(ctx)
}

// Load opens source and stores the result under its root UUID, closing any
// result it replaces. Concurrent loads of the same source share one build;
// shared reports whether this call reused another caller's build.
func (m *Manager) Load(ctx context.Context, source string) (res *provview.Result, shared bool, err error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, false, ErrNoSource
	}

	v, err, shared := m.loads.Do(source, func() (any, error) {
		return m.load(context.WithoutCancel(ctx), source)
	})
	if err != nil {
		return nil, shared, err
	}
	return v.(*provview.Result), shared, nil
}

func (m *Manager) load(ctx context.Context, source string) (*provview.Result, error) {
	res, err := m.open(ctx, source)
	if m.metrics != nil {
		m.metrics.ObserveLoad(err)
	}
	if err != nil {
		return nil, err
	}

	id := res.UUID()
	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		old, err := m.store.Load(ctx, id)
		if err := m.store.Save(ctx, id, res); err != nil {
			return err
		}
		if err == nil && old != res {
			m.retire(id, old)
		}
		return nil
	})
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("failed to store result: %w", err)
	}

	m.logger.Info("result loaded", "uuid", id, "source", source)
	m.notify(Event{Type: EventLoaded, UUID: id})
	return res, nil
}

// Get returns the result stored under id.
// Returns domain.ErrResultNotFound if nothing is loaded under id.
func (m *Manager) Get(ctx context.Context, id string) (*provview.Result, error) {
	return m.store.Load(ctx, id)
}

// Acquire returns the result stored under id and keeps it open until
// release is called, even if it is replaced or deleted meanwhile. Use it
// around reads of the underlying archive.
func (m *Manager) Acquire(ctx context.Context, id string) (res *provview.Result, release func(), err error) {
	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		res, err = m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		m.refMu.Lock()
		m.readers[res]++
		m.refMu.Unlock()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return res, func() { once.Do(func() { m.releaseReader(id, res) }) }, nil
}

func (m *Manager) releaseReader(id string, res *provview.Result) {
	m.refMu.Lock()
	m.readers[res]--
	closeNow := m.readers[res] <= 0 && m.retired[res]
	if m.readers[res] <= 0 {
		delete(m.readers, res)
	}
	if closeNow {
		delete(m.retired, res)
	}
	m.refMu.Unlock()

	if closeNow {
		m.closeResult(id, res)
	}
}

// retire closes a result that left the store, or defers the close to the
// last reader holding it. Callers hold the lock for id.
func (m *Manager) retire(id string, res *provview.Result) {
	m.refMu.Lock()
	if m.readers[res] > 0 {
		m.retired[res] = true
		m.refMu.Unlock()
		m.logger.Debug("result close deferred to active readers", "uuid", id)
		return
	}
	m.refMu.Unlock()
	m.closeResult(id, res)
}

func (m *Manager) closeResult(id string, res *provview.Result) {
	if err := res.Close(); err != nil {
		m.logger.Warn("failed to close result", "uuid", id, "error", err)
	}
}

// List returns the loaded results ordered by UUID.
func (m *Manager) List(ctx context.Context) ([]*provview.Result, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*provview.Result, 0, len(ids))
	for _, id := range ids {
		res, err := m.store.Load(ctx, id)
		if err != nil {
			// deleted between List and Load
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

// Delete removes and closes the result stored under id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		res, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if err := m.store.Delete(ctx, id); err != nil {
			return err
		}
		m.retire(id, res)
		return nil
	})
	if err != nil {
		return err
	}
	m.notify(Event{Type: EventDeleted, UUID: id})
	return nil
}

// Close removes and closes every loaded result.
func (m *Manager) Close(ctx context.Context) error {
	ids, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := m.Delete(ctx, id); err != nil {
			m.logger.Warn("failed to release result", "uuid", id, "error", err)
		}
	}
	return nil
}

// Watch registers fn to be called after every load and delete.
func (m *Manager) Watch(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(e Event) {
	m.mu.Lock()
	listeners := append([]func(Event)(nil), m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(e)
	}
}
