package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/cli"
	httpadapter "github.com/aretw0/remnawizard/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the wizard as a JSON API over HTTP, with an SSE mirror of the
replies per user, health checks and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}
		if cfg.APIToken == "" {
			logger.Warn("API_TOKEN is empty: /v1 is open to anyone who can reach it")
		}

		stack, err := cli.Build(cfg, cli.BuildOptions{}, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		opts := []httpadapter.Option{
			httpadapter.WithMetrics(stack.Metrics.Registry()),
			httpadapter.WithAPIToken(cfg.APIToken),
			httpadapter.WithEventAccess(stack.Wizard.Admins().Allowed),
			httpadapter.WithLogger(logger),
		}
		if stack.Health != nil {
			opts = append(opts, httpadapter.WithHealthCheck(stack.Health))
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpadapter.NewHandler(stack.Wizard, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("start shutdown", "signal", fmt.Sprint(ctx.Signal()))

			// Give outstanding requests a deadline for completion.
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(sctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
}
