package env

import (
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective config as JSON",
		Long: `Prints the config parsed from ENV and the optional config file.
Secrets (keys, passwords) are never printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.PrintJSON(cmd.OutOrStdout(), config.DefaultEngineConfigFromEnv())
		},
	}
}
