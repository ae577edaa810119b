package provview_test

import (
	"context"
	"fmt"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/pkg/dsl"
)

func ExampleFromLoader() {
	b := dsl.New("filtered")
	b.Result("filtered").
		Method("q2-feature-table", "filter_samples").
		Input("table", "table").
		Param("min_frequency", 10)
	b.Result("table").Import()

	loader, err := b.Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	res, err := provview.FromLoader(ctx, loader)
	if err != nil {
		fmt.Println(err)
		return
	}

	hits, err := res.Search(ctx, "min_frequency:>=10")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Tree.Height, hits.Sorted())
	// Output: 2 [exec-filtered]
}
