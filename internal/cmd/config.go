package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/config"
)

const masked = "********"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit the configuration file",
		Long: `View and edit ~/.skilladmin/config.yaml (or the file named by --config).

Supported keys:
  ` + strings.Join(config.Keys(), "\n  ") + `

Environment variables (SKILLADMIN_API_URL, SKILLADMIN_SESSION_BACKEND, ...)
override the file for a single run and are never written back by 'set'.`,
	}
	cmd.AddCommand(newConfigViewCmd(), newConfigPathCmd(), newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, cfg, err := localOutput(cmd)
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Session.Redis.Password != "" {
				shown.Session.Redis.Password = masked
			}
			return out.Format(shown)
		},
	}
}

func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath(cmd))
			return err
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one effective value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, cfg, err := localOutput(cmd)
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			if isSecretKey(args[0]) && v != "" {
				v = masked
			}
			return out.Format(v)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Write one value to the config file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd)
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}

			shown := args[1]
			if isSecretKey(args[0]) {
				shown = masked
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], shown, path)
			return err
		},
	}
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "password")
}
