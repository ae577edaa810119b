package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/provview/internal/presentation/tui"
	"github.com/aretw0/provview/pkg/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <source> <node-id>",
	Short: "Show the provenance document of one node",
	Long:  `Prints the action.yaml or metadata.yaml document recorded for an action, result or collection node.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := openResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer res.Close()

		id := args[1]
		doc, ok := res.Tree.Document(id)
		if !ok {
			return fmt.Errorf("%w: node %s", domain.ErrResultNotFound, id)
		}

		out := cmd.OutOrStdout()
		if raw, _ := cmd.Flags().GetBool("yaml"); raw {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(doc)
		}

		md, err := tui.DocumentMarkdown(id, doc)
		if err != nil {
			return err
		}
		rendered, err := tui.NewRenderer(plainOutput(cmd))(md)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("yaml", false, "Print the raw YAML document")
}
