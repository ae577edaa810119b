package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/provview"
	"github.com/aretw0/provview/internal/metrics"
	httpAdapter "github.com/aretw0/provview/pkg/adapters/http"
	"github.com/aretw0/provview/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve [source...]",
	Short: "Start the HTTP server",
	Long: `Starts an HTTP API over loaded results. Sources given as arguments are
loaded at startup; more can be loaded with POST /results.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var m *metrics.Metrics
		if cfg.Metrics.Enabled {
			m = metrics.New()
		}
		srv := httpAdapter.NewServer(
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(m),
			httpAdapter.WithSessionOptions(session.WithResultOptions(provview.WithMaxQuerySize(cfg.Query.MaxSize))),
		)
		defer srv.Sessions.Close(context.Background())

		if err := preload(cmd.Context(), srv.Sessions, args); err != nil {
			return err
		}

		httpServer := &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting provview server", "address", httpServer.Addr, "metrics", m != nil)
			serverErrors <- httpServer.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := httpServer.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("provview server stopped gracefully")
			return nil
		}
	},
}

// preload loads every source before a server starts accepting requests.
func preload(ctx context.Context, sessions *session.Manager, sources []string) error {
	for _, source := range sources {
		res, _, err := sessions.Load(ctx, source)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", source, err)
		}
		logger.Info("preloaded result", "uuid", res.UUID(), "source", source)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("address", "a", ":8080", "Address to listen on")
	bindFlag(serveCmd, "http.address", "address")
}
