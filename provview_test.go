package provview_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/internal/testutils"
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/dsl"
	"github.com/aretw0/provview/pkg/query"
)

const importExec = "9e8d7c6b-5a49-4382-b716-a5f4e3d2c1b0"

func TestOpen_Archive(t *testing.T) {
	var visited, searched atomic.Int32
	var lastHits atomic.Int32
	hooks := domain.Hooks{
		OnActionVisited: func(context.Context, *domain.ActionEvent) { visited.Add(1) },
		OnSearch: func(_ context.Context, e *domain.SearchEvent) {
			searched.Add(1)
			lastHits.Store(int32(e.Hits))
		},
	}

	ctx := context.Background()
	res, err := provview.Open(ctx, testutils.SampleArchive(t), provview.WithHooks(hooks))
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, testutils.RootUUID, res.UUID())
	assert.Equal(t, int32(2), visited.Load())
	assert.Len(t, res.Tree.Results, 2)

	hits, err := res.Search(ctx, `type:"import"`)
	require.NoError(t, err)
	assert.Equal(t, []string{importExec}, hits.Sorted())
	assert.Equal(t, int32(1), searched.Load())
	assert.Equal(t, int32(1), lastHits.Load())
}

func TestOpen_InvalidArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.qza")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := provview.Open(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidArchive)
}

func TestOpen_MissingRootAction(t *testing.T) {
	files := testutils.SampleFiles()
	delete(files, testutils.RootUUID+"/provenance/action/action.yaml")

	_, err := provview.Open(context.Background(), testutils.WriteArchive(t, files))
	assert.ErrorIs(t, err, domain.ErrInvalidArchive)
}

func TestResult_SearchErrors(t *testing.T) {
	ctx := context.Background()
	res, err := provview.Open(ctx, testutils.SampleArchive(t), provview.WithMaxQuerySize(32))
	require.NoError(t, err)
	defer res.Close()

	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"Syntax", `type:"import`, domain.ErrSyntax},
		{"NoMatches", `type:"visualizer"`, domain.ErrNoMatches},
		{"TooLarge", strings.Repeat("a", 33), query.ErrQueryTooLarge},
		{"InvalidUTF8", "type:\"\xff\"", query.ErrInvalidUTF8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := res.Search(ctx, tt.query)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromLoader(t *testing.T) {
	b := dsl.New("viz")
	b.Result("viz").
		Type("Visualization").
		Visualizer("q2-diversity", "alpha_rarefaction").
		Input("table", "table")
	b.Result("table").
		Type("FeatureTable[Frequency]").
		Import()

	loader, err := b.Build()
	require.NoError(t, err)

	ctx := context.Background()
	res, err := provview.FromLoader(ctx, loader)
	require.NoError(t, err)
	assert.Nil(t, res.Archive)
	assert.NoError(t, res.Close())

	hits, err := res.Search(ctx, `action:"alpha-rarefaction"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"exec-viz"}, hits.Sorted())
}
