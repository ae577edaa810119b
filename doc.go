/*
Package provview reconstructs and searches the provenance recorded inside
QIIME 2 results.

Every .qza artifact and .qzv visualization carries the action.yaml and
metadata.yaml documents of the actions that produced it and of all their
ancestors. provview walks those documents from the root result back to the
imports, building a directed acyclic graph of actions and results with a
layered layout, and evaluates a small boolean query language against every
node.

# Key Features

  - Reads zip containers, extracted directories and http(s) URLs (Dropbox and
    Zenodo links are rewritten to their download form).
  - Collections, optional inputs, pipeline aliases and missing ancestry are
    modelled explicitly, so a damaged history still yields a usable tree.
  - Queries such as action:"filter-samples" AND min_frequency:>=10 match any
    key path of a node's document.
  - The same trees are served over HTTP, as MCP tools and from the CLI.

# Usage

	ctx := context.Background()
	res, err := provview.Open(ctx, "table.qza")
	if err != nil {
		log.Fatal(err)
	}
	defer res.Close()

	hits, err := res.Search(ctx, `plugin:"q2-feature-table" AND type:"method"`)
	if errors.Is(err, domain.ErrNoMatches) {
		log.Println("nothing found")
	}
	for _, id := range hits.Sorted() {
		doc, _ := res.Tree.Document(id)
		fmt.Println(id, doc)
	}
*/
package provview
