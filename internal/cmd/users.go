package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/skilladmin/internal/api"
	"github.com/felixgeelhaar/skilladmin/internal/tui"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage platform users",
		Long: `List, add, edit and delete platform users.

Examples:
  skilladmin users list --page 2 --limit 20
  skilladmin users create --name "Ada Lovelace" --email ada@example.com --password s3cret
  skilladmin users update 64f1c2 --phone "+44 20 7946 0000"
  skilladmin users delete 64f1c2 --yes
`,
	}
	cmd.AddCommand(users.listCmd(), newUserCreateCmd(), newUserUpdateCmd(), users.deleteCmd())
	return cmd
}

func bindUserFlags(f *pflag.FlagSet, in *api.UserInput) {
	f.StringVar(&in.FullName, "name", "", "full name")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Password, "password", "", "password")
	f.StringVar(&in.Role, "role", "", "role (default \"User\" for new users)")
	f.StringVar(&in.Occupation, "occupation", "", "occupation")
	f.StringVar(&in.AboutUser, "about", "", "short bio")
}

func newUserCreateCmd() *cobra.Command {
	var in api.UserInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a user",
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, rt *runtime, _ []string) error {
			if in.Password == "" && tui.ShouldPrompt() {
				pw, err := promptIfEmpty(in.Password, "password", tui.Prompt{Message: "Password for the new user", Required: true, Secret: true})
				if err != nil {
					return err
				}
				in.Password = pw
			}
			return users.create(ctx, rt, in)
		}),
	}
	bindUserFlags(cmd.Flags(), &in)
	return cmd
}

func newUserUpdateCmd() *cobra.Command {
	var in api.UserInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, rt *runtime, args []string) error {
			return users.update(ctx, rt, args[0], in)
		}),
	}
	bindUserFlags(cmd.Flags(), &in)
	return cmd
}
