package main

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/cli"
	httpadapter "github.com/aretw0/remnawizard/pkg/adapters/http"
	"github.com/aretw0/remnawizard/pkg/adapters/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Starts long polling against the Telegram Bot API. When --ops-addr is set,
health and metrics endpoints are served alongside.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Require("BOT_TOKEN"); err != nil {
			return err
		}

		stack, err := cli.Build(cfg, cli.BuildOptions{}, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if addr, _ := cmd.Flags().GetString("ops-addr"); addr != "" {
			opts := []httpadapter.Option{
				httpadapter.WithMetrics(stack.Metrics.Registry()),
				httpadapter.WithLogger(logger),
			}
			if stack.Health != nil {
				opts = append(opts, httpadapter.WithHealthCheck(stack.Health))
			}
			srv := &http.Server{Addr: addr, Handler: httpadapter.NewHandler(nil, opts...)}
			go func() {
				logger.Info("serving ops endpoints", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("ops server failed", "err", err)
				}
			}()
			defer srv.Close()
		}

		logger.Info("starting telegram bot")
		err = telegram.New(stack.Wizard, telegram.WithLogger(logger)).Run(ctx, cfg.BotToken)
		if sig := ctx.Signal(); sig != nil {
			logger.Info("bot stopped", "signal", sig.String())
		}
		if cli.IsShutdown(err) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.Flags().String("ops-addr", "", "address for /healthz and /metrics (disabled when empty)")
}
