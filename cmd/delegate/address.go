package delegate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

func newAddress() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Prints the delegate address, creating the key on first use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultEngineConfigFromEnv()
			if err := command.PromptPassword(&cfg); err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				addr, err := s.Delegate.Address(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), addr.Hex())

				return nil
			})
		},
	}
}
