package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/provview/internal/presentation/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search <source> <query>",
	Short: "Search the provenance of a result",
	Long: `Evaluates a query against every action, result and collection of the tree.

Queries are key:value terms combined with AND, OR and parentheses:

  provview search table.qza 'action:"filter-samples" AND plugin:"q2-feature-table"'
  provview search table.qza 'parameters.min_frequency:>=10'`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := openResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer res.Close()

		hits, err := res.Search(cmd.Context(), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if ids, _ := cmd.Flags().GetBool("ids"); ids {
			for _, id := range hits.Sorted() {
				fmt.Fprintln(out, id)
			}
			return nil
		}
		fmt.Fprintln(out, tui.HitTable(res.Tree, hits.Sorted()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Bool("ids", false, "Print only the matching node ids, one per line")
}
