package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/cli"
	"github.com/aretw0/remnawizard/internal/presentation/graph"
	"github.com/aretw0/remnawizard/internal/runtime"
	"github.com/aretw0/remnawizard/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the wizard graph visualization",
	Long: `Probes the step table and outputs a Mermaid diagram (graph TD) of the wizard.
--highlight marks a step; --user marks the step a stored session is at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}

		overlay := &graph.Overlay{}
		if h, _ := cmd.Flags().GetString("highlight"); h != "" {
			step := domain.StepID(h)
			if !step.Valid() {
				return fmt.Errorf("unknown step %q", h)
			}
			overlay.CurrentStep = step
		}

		if cmd.Flags().Changed("user") {
			userID, _ := cmd.Flags().GetInt64("user")
			stack, err := cli.Build(cfg, cli.BuildOptions{DryRun: true}, logger)
			if err != nil {
				return err
			}
			defer stack.Close()

			s, err := stack.Wizard.Sessions().Load(cmd.Context(), domain.UserID(userID))
			switch {
			case errors.Is(err, domain.ErrSessionNotFound):
				logger.Info("no wizard in progress", "user_id", userID)
			case err != nil:
				return err
			default:
				overlay.CurrentStep = s.CurrentStep
			}
		}

		env := &runtime.Env{Catalog: catalog}
		fmt.Fprint(cmd.OutOrStdout(), graph.FromRegistry(runtime.DefaultRegistry(), env, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("highlight", "", "step to highlight")
	graphCmd.Flags().Int64("user", 0, "highlight the step of this user's stored session")
}
