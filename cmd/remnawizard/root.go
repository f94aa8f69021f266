package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/cli"
	"github.com/aretw0/remnawizard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "remnawizard",
	Short: "Remnawave user provisioning wizard",
	Long: `remnawizard walks allow-listed operators through creating a Remnawave
user one step at a time, over Telegram, HTTP or an interactive terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
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
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "dotenv files to load (default .env)")
	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
}

// setup loads the configuration and the logger shared by every command.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
