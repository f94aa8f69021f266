package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/runtime"
	"github.com/aretw0/remnawizard/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the squad catalog",
	Long: `Decodes the environment, the session keys, ADMIN_IDS and the squad catalog,
then checks that every wizard step has a way out. --bot also requires the
settings the bot command needs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		if bot, _ := cmd.Flags().GetBool("bot"); bot {
			if err := cfg.Require("BOT_TOKEN", "REMNAWAVE_BASE_URL", "REMNAWAVE_TOKEN", "ADMIN_IDS"); err != nil {
				return err
			}
		}
		if _, err := cfg.Admins(); err != nil {
			return err
		}
		if _, _, err := cfg.EncryptionKeys(); err != nil {
			return err
		}
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}

		exits := make(map[domain.StepID]bool)
		for _, t := range runtime.DefaultRegistry().Transitions(&runtime.Env{Catalog: catalog}) {
			exits[t.From] = true
		}
		for _, step := range domain.Steps {
			if !exits[step] {
				return fmt.Errorf("step %s has no way out with this catalog", step)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid! ✅ (%d internal, %d external squads)\n",
			len(catalog.Internal), len(catalog.External))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("bot", false, "also require the bot settings")
}
