package delegate

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

func newLogout() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Removes the delegate key and all delegate state",
		Long: `Removes the encrypted delegate key, the delegation flag and all setup flags.
The on-chain delegate registration is left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to remove the delegate key without --yes")
			}

			cfg := config.DefaultEngineConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				if err := s.Delegate.Logout(ctx); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Delegate key removed.")

				return nil
			})
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm removing the delegate key")

	return cmd
}
