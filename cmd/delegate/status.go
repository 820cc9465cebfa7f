package delegate

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
	"github/chapool/go-trader/internal/wallet/delegate"
)

func newStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status <trader>",
		Short: "Shows the on-chain setup state of a trader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(args[0]) {
				return errors.Errorf("invalid trader address %q", args[0])
			}
			trader := common.HexToAddress(args[0])

			cfg := config.DefaultEngineConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				delegateAddr, err := s.Delegate.Address(ctx)
				if err != nil && !errors.Is(err, delegate.ErrNotFound) {
					return err
				}

				status, err := s.Setup.Status(ctx, trader, delegateAddr)
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd.OutOrStdout(), status)
			})
		},
	}
}
