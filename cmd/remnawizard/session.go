package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard/internal/cli"
	"github.com/aretw0/remnawizard/pkg/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored wizard sessions",
	Long:  `List, inspect, and remove the sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List users with a wizard in progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := sessionStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		users, err := stack.Wizard.Sessions().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No active sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Active Sessions:")
		for _, u := range users {
			fmt.Fprintf(out, "- %d\n", u)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <user-id>",
	Short: "Print the stored session of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		stack, err := sessionStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		s, err := stack.Wizard.Sessions().Load(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("error loading session %d: %w", userID, err)
		}
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <user-id>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := sessionStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()
		store := stack.Wizard.Sessions()

		var users []domain.UserID
		if all, _ := cmd.Flags().GetBool("all"); all {
			if users, err = store.List(cmd.Context()); err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
		}
		for _, a := range args {
			id, err := parseUserID(a)
			if err != nil {
				return err
			}
			users = append(users, id)
		}

		var errs []error
		for _, u := range users {
			if err := store.Delete(cmd.Context(), u); err != nil {
				errs = append(errs, fmt.Errorf("error removing %d: %w", u, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session %d\n", u)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "remove every stored session")
}

// sessionStack opens the configured store without touching the panel.
func sessionStack(cmd *cobra.Command) (*cli.Stack, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return cli.Build(cfg, cli.BuildOptions{DryRun: true}, logger)
}

func parseUserID(s string) (domain.UserID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return domain.UserID(id), nil
}
