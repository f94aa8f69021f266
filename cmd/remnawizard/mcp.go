package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/cli"
	"github.com/aretw0/remnawizard/internal/presentation/graph"
	"github.com/aretw0/remnawizard/internal/runtime"
	"github.com/aretw0/remnawizard/pkg/adapters/mcp"
	"github.com/aretw0/remnawizard/pkg/domain"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start a Model Context Protocol server",
	Long: `Exposes the wizard as MCP tools so an agent can create users on behalf of
one operator. The operator must be in ADMIN_IDS.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetInt64("user")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "sse" {
			return fmt.Errorf("unknown transport %q (use stdio or sse)", transport)
		}

		stack, err := cli.Build(cfg, cli.BuildOptions{}, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		catalog := stack.Wizard.Catalog()
		render := func() string {
			return graph.FromRegistry(runtime.DefaultRegistry(), &runtime.Env{Catalog: catalog}, nil)
		}
		srv := mcp.NewServer(stack.Wizard, domain.UserID(userID),
			mcp.WithGraph(render),
			mcp.WithLogger(logger),
		)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if transport == "sse" {
			err = srv.ServeSSE(ctx, fmt.Sprintf(":%d", port), fmt.Sprintf("http://localhost:%d", port))
		} else {
			err = srv.ServeStdio(ctx, os.Stdin, os.Stdout)
		}
		if cli.IsShutdown(err) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int64("user", 0, "operator Telegram user id the server acts as")
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
	_ = mcpCmd.MarkFlagRequired("user")
}
