package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/provview/internal/presentation/tui"
)

var treeCmd = &cobra.Command{
	Use:   "tree <source>",
	Short: "Print the provenance tree of a result",
	Long:  `Builds the provenance tree of a .qza/.qzv file, extracted directory or URL and prints its actions and results level by level.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := openResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer res.Close()

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Tree)
		}

		title := fmt.Sprintf("%s (height %d, width %d)", res.UUID(), res.Tree.Height, res.Tree.Width)
		if plainOutput(cmd) {
			fmt.Fprintln(out, title)
		} else {
			fmt.Fprintln(out, tui.Title(title))
		}
		fmt.Fprintln(out, tui.TreeTable(res.Tree))
		if n := len(res.Tree.Truncations); n > 0 {
			fmt.Fprintf(out, "%d ancestor(s) have no recorded provenance\n", n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Bool("json", false, "Print the tree as JSON")
}
