/*
Package dsl provides a Go DSL for programmatically constructing QIIME 2 provenance.

It allows tests and tools to describe a result history using a fluent builder
instead of assembling action.yaml and metadata.yaml files by hand.

Example usage:

	b := dsl.New("root-uuid")

	b.Result("root-uuid").
		Type("SampleData[AlphaDiversity]").
		Method("q2-diversity", "alpha-phylogenetic").
		Input("table", "table-uuid").
		Param("metric", "faith_pd")

	b.Result("table-uuid").
		Type("FeatureTable[Frequency]").
		Import()

	// The resulting loader can be passed to provenance.Build.
	loader, err := b.Build()
*/
package dsl
