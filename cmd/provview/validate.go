package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/provview/internal/presentation/tui"
	"github.com/aretw0/provview/pkg/archive"
)

var errInvalid = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate <source>",
	Short: "Check that a file is a well formed QIIME 2 archive",
	Long: `Checks the layout of a .qza/.qzv file or extracted directory: a single
UUID-named root holding VERSION and metadata.yaml. Every problem found is
reported. With --files the archive contents are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		a, err := archive.OpenSource(cmd.Context(), args[0], archive.WithLogger(logger))
		if problems := archive.Problems(err); len(problems) > 0 {
			fmt.Fprintf(out, "%s is not a valid QIIME 2 archive:\n", args[0])
			for _, p := range problems {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			return errInvalid
		}
		if err != nil {
			return err
		}
		defer a.Close()

		kind := "artifact"
		if a.IsVisualization() {
			kind = "visualization"
		}
		fmt.Fprintf(out, "%s is a valid %s (uuid %s, type %s, archive version %s, framework %s)\n",
			args[0], kind, a.UUID, a.Metadata.Type, a.Version.Archive, a.Version.Framework)

		if files, _ := cmd.Flags().GetBool("files"); files {
			entries, err := a.Entries()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tui.FileTable(entries))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("files", false, "List the files of the archive with their sizes")
}
