package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/provview/pkg/domain"
)

func TestHooks_Merge(t *testing.T) {
	var calls []string
	first := domain.Hooks{
		OnActionVisited: func(context.Context, *domain.ActionEvent) { calls = append(calls, "first") },
	}
	second := domain.Hooks{
		OnActionVisited: func(context.Context, *domain.ActionEvent) { calls = append(calls, "second") },
		OnSearch:        func(context.Context, *domain.SearchEvent) { calls = append(calls, "search") },
	}

	merged := first.Merge(second)
	ctx := context.Background()
	merged.OnActionVisited(ctx, &domain.ActionEvent{})
	merged.OnSearch(ctx, &domain.SearchEvent{})
	merged.OnBranchTruncated(ctx, &domain.TruncationEvent{})

	assert.Equal(t, []string{"first", "second", "search"}, calls)
}
