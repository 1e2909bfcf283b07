package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/mirrorer/internal/cli/formatter"
	"github.com/alexanderramin/mirrorer/internal/prompt"
)

func newUsersCmd(app *App) *cobra.Command {
	var (
		dom    domainValue
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List catalog users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Users.ListUsers(cmd.Context(), string(dom))
			if err != nil {
				return fmt.Errorf("listing users: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), users)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUserList(users))
			return nil
		},
	}
	addDomainFlag(cmd.Flags(), &dom)
	addJSONFlag(cmd.Flags(), &asJSON)
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user's profile, history and labelled exposure list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Users.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUserDetail(u))
			return nil
		},
	}
	addJSONFlag(cmd.Flags(), &asJSON)
	return cmd
}

func newPromptCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <user-id>",
		Short: "Print the decision prompt built for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Users.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), prompt.Build(u))
			return nil
		},
	}
}
