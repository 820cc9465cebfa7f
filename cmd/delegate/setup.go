package delegate

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

func newSetup() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Registers the delegate and approves USDC from the configured wallet",
		Long: `Sends the one-time setup multicall (setDelegate + capped USDC approval) signed by
TRADER_WALLET_PRIVATE_KEY and waits for its receipt.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultEngineConfigFromEnv()
			if err := command.PromptPassword(&cfg); err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				delegateAddr, err := s.Delegate.Address(ctx)
				if err != nil {
					return err
				}

				res, err := s.Setup.Run(ctx, delegateAddr)
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}
