/*
Package provenance reconstructs the provenance graph of a QIIME 2 result.

Build walks backward from the root result through the actions that produced
it, one document fetch at a time. Every action is expanded at most once, so a
result reachable through several downstream actions becomes one node with
several incoming edges. Results passed together as a keyed collection
collapse into a single node with a single edge.

A missing ancestor never aborts the walk: that branch is truncated and
recorded in Tree.Truncations. Only a missing root document is fatal.

	loader, _ := archive.Open("table.qza")
	tree, err := provenance.Build(ctx, loader, provenance.WithLogger(logger))
	hits, err := search.Search(`plugin: "q2-diversity"`, tree.Corpus())
*/
package provenance
