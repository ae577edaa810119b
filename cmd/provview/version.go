package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/internal/presentation/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of provview",
	Run: func(cmd *cobra.Command, args []string) {
		if banner, _ := cmd.Flags().GetBool("banner"); banner && !plainOutput(cmd) {
			tui.PrintBanner(cmd.OutOrStdout(), provview.Version)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "provview version %s\n", strings.TrimSpace(provview.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the banner")
}
