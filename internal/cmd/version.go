package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/ux"
	"github.com/felixgeelhaar/skilladmin/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// version must work even with a broken config file.
			format, _ := cmd.Flags().GetString("format")
			out, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			return out.Format(version.GetInfo())
		},
	}
}
