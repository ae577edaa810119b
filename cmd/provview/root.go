package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/internal/config"
	"github.com/aretw0/provview/internal/logging"
)

var (
	v      = config.New()
	cfg    *config.Config
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "provview",
	Short: "provview inspects the provenance of QIIME 2 results",
	Long: `provview reconstructs the provenance graph recorded inside a QIIME 2
archive (.qza/.qzv, extracted directory or URL) and lets you browse and
search it from the terminal, over HTTP or as an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(v, file)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		format, err := logging.ParseFormat(loaded.LogFormat)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewWithOptions(logging.Options{
			Level:  level,
			Format: format,
		})
		slog.SetDefault(logger)
		logger.Debug("configuration loaded", "file", v.ConfigFileUsed())
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default provview.yaml in ., ./config or $HOME/.provview)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("plain", false, "Disable colours and styled output")
	bindFlag(rootCmd, "log_level", "log-level")
	bindFlag(rootCmd, "log_format", "log-format")
}

// bindFlag makes a command line flag override the config key.
func bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// plainOutput reports whether styled output should be disabled, either by
// flag or because stdout is not a terminal.
func plainOutput(cmd *cobra.Command) bool {
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		return true
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

// openResult opens source with the configured logger and query limit.
func openResult(ctx context.Context, source string) (*provview.Result, error) {
	opts := []provview.Option{provview.WithLogger(logger)}
	if cfg != nil {
		opts = append(opts, provview.WithMaxQuerySize(cfg.Query.MaxSize))
	}
	return provview.Open(ctx, source, opts...)
}
