package relay

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("relay",
		newProviders(),
		newCheck(),
	)
}

func newProviders() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Lists relay providers and whether they are configured",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultEngineConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				return command.PrintJSON(cmd.OutOrStdout(), s.Relay.Providers())
			})
		},
	}
}

func newCheck() *cobra.Command {
	return &cobra.Command{
		Use:   "check <provider>",
		Short: "Checks that a relay provider can be selected",
		Long: `Checks that the provider is registered and configured. Select it for the server
through TRADER_RELAY_PROVIDER.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultEngineConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				if err := s.Relay.Use(ctx, args[0]); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Relay provider %s is usable.\n", args[0])

				return nil
			})
		},
	}
}
