package cmd

import (
	"github.com/spf13/cobra"
)

// CommandContext holds the persistent flags of one invocation.
// Empty values mean "not given"; config and environment decide then.
type CommandContext struct {
	// Output control
	Verbose bool
	Format  string
	NoColor bool

	// Configuration
	ConfigPath string
	APIURL     string
	LogLevel   string
	Ephemeral  bool
}

// NewCommandContext extracts command context from cobra.Command flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	ephemeral, err := cmd.Flags().GetBool("ephemeral")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Verbose:    verbose,
		Format:     format,
		NoColor:    noColor,
		ConfigPath: configPath,
		APIURL:     apiURL,
		LogLevel:   logLevel,
		Ephemeral:  ephemeral,
	}, nil
}
