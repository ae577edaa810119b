package domain

import (
	"context"
	"time"
)

// ActionEvent is emitted once per action expanded by the builder.
type ActionEvent struct {
	ExecutionID string
	Type        string
	Plugin      string
	Action      string
	Height      int
}

// TruncationEvent is emitted when a branch is cut short.
type TruncationEvent struct {
	Truncation
	Err error
}

// SearchEvent is emitted after a query has been evaluated against a result.
type SearchEvent struct {
	Root     string
	Query    string
	Hits     int
	Duration time.Duration
	Err      error
}

// Hooks are optional observers owned by the caller of a build.
type Hooks struct {
	OnActionVisited   func(context.Context, *ActionEvent)
	OnBranchTruncated func(context.Context, *TruncationEvent)
	OnSearch          func(context.Context, *SearchEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnActionVisited: func(ctx context.Context, e *ActionEvent) {
			if h.OnActionVisited != nil {
				h.OnActionVisited(ctx, e)
			}
			if other.OnActionVisited != nil {
				other.OnActionVisited(ctx, e)
			}
		},
		OnBranchTruncated: func(ctx context.Context, e *TruncationEvent) {
			if h.OnBranchTruncated != nil {
				h.OnBranchTruncated(ctx, e)
			}
			if other.OnBranchTruncated != nil {
				other.OnBranchTruncated(ctx, e)
			}
		},
		OnSearch: func(ctx context.Context, e *SearchEvent) {
			if h.OnSearch != nil {
				h.OnSearch(ctx, e)
			}
			if other.OnSearch != nil {
				other.OnSearch(ctx, e)
			}
		},
	}
}
