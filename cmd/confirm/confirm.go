package confirm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <tx-hash>",
		Short: "Waits for a transaction to reach a terminal stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := hexHash(args[0])
			if err != nil {
				return err
			}

			cfg := config.DefaultEngineConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				session, err := s.Engine.Confirm(ctx, hash)
				if printErr := command.PrintJSON(cmd.OutOrStdout(), session); printErr != nil {
					return printErr
				}

				return err
			})
		},
	}
}

func hexHash(raw string) (common.Hash, error) {
	b, err := common.ParseHexOrString(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, errors.Errorf("invalid transaction hash %q", raw)
	}

	return common.BytesToHash(b), nil
}
