package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/provview/internal/presentation/graph"
	"github.com/aretw0/provview/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <source>",
	Short: "Export the provenance graph visualization",
	Long: `Builds the provenance tree and outputs a Mermaid diagram (graph TD).
With --query the matching nodes are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := openResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer res.Close()

		var overlay *graph.Overlay
		if q, _ := cmd.Flags().GetString("query"); q != "" {
			hits, err := res.Search(cmd.Context(), q)
			if err != nil && !errors.Is(err, domain.ErrNoMatches) {
				return err
			}
			overlay = &graph.Overlay{Highlighted: hits.Sorted()}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(res.Tree, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("query", "q", "", "Highlight the nodes matching this query")
}
