package probe

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
)

func newReadiness() *cobra.Command {
	return newProbe("readiness", "Runs readiness probes",
		`Checks that the RPC node answers on the configured chain.`,
		func(ctx context.Context, s *api.Server) (string, error) {
			chainID, err := s.Node.ChainID(ctx)
			if err != nil {
				return "", err
			}
			if chainID.Int64() != s.Config.Chain.ChainID {
				return "", errors.Errorf("node is on chain %d, expected %d", chainID.Int64(), s.Config.Chain.ChainID)
			}

			number, err := s.Node.BlockNumber(ctx)
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("Chain %d at block %d.", chainID.Int64(), number), nil
		})
}
