package db

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
	"github/chapool/go-trader/internal/wallet/delegate"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("db",
		newMigrate(),
	)
}

func newMigrate() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies pending delegate store migrations",
		Long: `Applies all pending migrations of the delegate store configured through
TRADER_DELEGATE_STORE_DRIVER and TRADER_DELEGATE_STORE_DSN. The server applies them on start as well.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultEngineConfigFromEnv()
			command.SetupLogger(cfg)

			if cfg.Delegate.StoreDriver == api.StoreDriverMemory {
				log.Info().Msg("Memory store configured, nothing to migrate")
				return nil
			}

			db, err := sql.Open(cfg.Delegate.StoreDriver, cfg.Delegate.StoreDSN)
			if err != nil {
				return errors.Wrap(err, "failed to open delegate store")
			}
			defer db.Close()

			n, err := delegate.Migrate(cmd.Context(), db, cfg.Delegate.StoreDriver)
			if err != nil {
				log.Error().Err(err).Msg("Failed to migrate delegate store")
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations.\n", n)

			return nil
		},
	}
}
