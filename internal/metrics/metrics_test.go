package metrics_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/provview/internal/metrics"
	"github.com/aretw0/provview/pkg/domain"
)

func TestHooks(t *testing.T) {
	m := metrics.New()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnActionVisited(ctx, &domain.ActionEvent{Type: "method"})
	hooks.OnActionVisited(ctx, &domain.ActionEvent{Type: "method"})
	hooks.OnActionVisited(ctx, &domain.ActionEvent{Type: "import"})
	hooks.OnBranchTruncated(ctx, &domain.TruncationEvent{})

	hooks.OnSearch(ctx, &domain.SearchEvent{Hits: 3, Duration: time.Millisecond})
	hooks.OnSearch(ctx, &domain.SearchEvent{Err: fmt.Errorf("%w: q", domain.ErrNoMatches)})
	hooks.OnSearch(ctx, &domain.SearchEvent{Err: domain.ErrSyntax})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActionsVisited.WithLabelValues("method")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionsVisited.WithLabelValues("import")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Truncations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues(metrics.OutcomeHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues(metrics.OutcomeNoMatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues(metrics.OutcomeInvalid)))
}

func TestObserveLoad(t *testing.T) {
	m := metrics.New()
	m.ObserveLoad(nil)
	m.ObserveLoad(fmt.Errorf("x: %w", domain.ErrInvalidArchive))
	m.ObserveLoad(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("error")))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.Truncations.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "provview_branches_truncated_total 1"))
}
