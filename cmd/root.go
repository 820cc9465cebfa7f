package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/cmd/confirm"
	"github/chapool/go-trader/cmd/db"
	"github/chapool/go-trader/cmd/delegate"
	"github/chapool/go-trader/cmd/env"
	"github/chapool/go-trader/cmd/probe"
	"github/chapool/go-trader/cmd/relay"
	"github/chapool/go-trader/cmd/server"
	"github/chapool/go-trader/cmd/trade"
	"github/chapool/go-trader/internal/config"
)

const configFlag = "config"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Version: config.GetFormattedBuildArgs(),
		Use:     "app",
		Short:   config.ModuleName,
		Long: fmt.Sprintf(`%v

Delegated leveraged trading engine: builds, relays and confirms trades
signed by a local delegate key. Configured through TRADER_* env vars,
optionally merged with a config file.`, config.ModuleName),
		SilenceUsage: true,
		// every subcommand reads its config from env, --config is forwarded there
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString(configFlag)
			if file == "" {
				return nil
			}

			return errors.Wrap(os.Setenv(config.EnvConfigFile, file), "failed to set config file")
		},
	}

	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().String(configFlag, "", "Config file (toml, yaml or json), same as "+config.EnvConfigFile)

	root.AddCommand(
		confirm.New(),
		db.New(),
		delegate.New(),
		env.New(),
		probe.New(),
		relay.New(),
		server.New(),
		trade.New(),
	)

	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute command")
		os.Exit(1)
	}
}
