package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

const verboseFlag = "verbose"

// Probes are meant for container health checks: exit code 0 on success, 1 otherwise.
func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newLiveness(),
		newReadiness(),
	)
}

// check reports a line of verbose output on success.
type check func(ctx context.Context, s *api.Server) (string, error)

func newProbe(use, short, long string, fn check) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)

			err := command.WithServer(cmd.Context(), config.DefaultEngineConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				msg, err := fn(ctx, s)
				if err == nil && verbose {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}

				return err
			})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s probe failed: %v\n", use, err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}
