package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skilladmin/internal/config"
	"github.com/felixgeelhaar/skilladmin/internal/errors"
	"github.com/felixgeelhaar/skilladmin/internal/ux"
)

// localOutput builds just the formatter for commands that never talk to
// the API or the session store.
func localOutput(cmd *cobra.Command) (ux.Formatter, *config.Config, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(cc)
	if err != nil {
		return nil, nil, err
	}
	out, err := ux.NewFormatter(cfg.Defaults.Format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: cfg.Defaults.NoColor,
	})
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInputInvalid, "invalid --format", err)
	}
	return out, cfg, nil
}
