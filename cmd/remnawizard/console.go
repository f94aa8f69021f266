package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/cli"
	"github.com/aretw0/remnawizard/internal/console"
	"github.com/aretw0/remnawizard/pkg/domain"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the wizard in this terminal",
	Long: `Runs the wizard interactively as the given operator. The operator must be
in ADMIN_IDS unless --dry-run is set, which also keeps users off the panel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := console.CheckTerminal(os.Stdin); err != nil {
			return err
		}
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetInt64("user")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		opts := cli.BuildOptions{DryRun: dryRun}
		if dryRun {
			opts.ExtraAdmins = []int64{userID}
		}

		stack, err := cli.Build(cfg, opts, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		console.PrintBanner(cmd.OutOrStdout())
		c := console.New(stack.Wizard, domain.UserID(userID),
			console.WithOutput(cmd.OutOrStdout()),
			console.WithLogger(logger),
		)
		if err := c.Run(ctx); err != nil && !cli.IsShutdown(err) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().Int64("user", 0, "operator Telegram user id")
	consoleCmd.Flags().Bool("dry-run", false, "record users locally instead of calling the panel")
	_ = consoleCmd.MarkFlagRequired("user")
}
