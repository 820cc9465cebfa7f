package probe

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
)

func newLiveness() *cobra.Command {
	return newProbe("liveness", "Runs liveness probes",
		`Checks that the delegate store opens and the delegate key unlocks with the
configured password.`,
		func(ctx context.Context, s *api.Server) (string, error) {
			if !s.Delegate.IsUnlocked() {
				return "", errors.New("delegate key is locked")
			}

			addr, err := s.Delegate.Address(ctx)
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("Delegate %s unlocked.", addr.Hex()), nil
		})
}
