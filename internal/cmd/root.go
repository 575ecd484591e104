package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the full command tree. Each call returns a fresh tree
// with its own flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skilladmin",
		Short: "Admin console for the SkillsWorth platform",
		Long: `skilladmin manages the users, reels, skills and sub-skills of a SkillsWorth
deployment through its admin REST API.

Log in once with 'skilladmin login'; the session is kept in the configured
store (a file under ~/.skilladmin by default) until you log out or the
server rejects it. Run 'skilladmin dashboard' for the interactive tables,
or use the resource commands from scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.skilladmin/config.yaml)")
	flags.String("api-url", "", "admin API base URL")
	flags.String("format", "", "output format: text, json, yaml")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("ephemeral", false, "keep the session in memory for this run only")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newUsersCmd(),
		newSkillsCmd(),
		newSubSkillsCmd(),
		newReelsCmd(),
		newCatalogCmd(),
		newDashboardCmd(),
		newContractCmd(),
		newDoctorCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx. main cancels ctx on
// SIGINT/SIGTERM.
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
