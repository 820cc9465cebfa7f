package trade

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/util/command"
)

func newClose() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Closes (part of) a position through the delegate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			trader, err := traderAddress(cmd)
			if err != nil {
				return err
			}

			req := encoder.CloseRequest{Trader: trader}
			req.PairIndex, _ = cmd.Flags().GetInt64(pairFlag)
			req.TradeIndex, _ = cmd.Flags().GetInt64(tradeIndexFlag)
			if req.Collateral, err = decimalFlag(cmd, collateralFlag); err != nil {
				return err
			}

			cfg := config.DefaultEngineConfigFromEnv()
			if err := command.PromptPassword(&cfg); err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				out, err := s.Engine.CloseTrade(ctx, req)
				if out != nil {
					if printErr := command.PrintJSON(cmd.OutOrStdout(), out); printErr != nil {
						return printErr
					}
				}

				return err
			})
		},
	}

	cmd.Flags().String(traderFlag, "", "Trader address (required)")
	cmd.Flags().Int64(pairFlag, 0, "Pair index")
	cmd.Flags().Int64(tradeIndexFlag, 0, "Trade index within the pair")
	cmd.Flags().String(collateralFlag, "", "Collateral to close in USDC (required)")

	_ = cmd.MarkFlagRequired(traderFlag)
	_ = cmd.MarkFlagRequired(collateralFlag)

	return cmd
}
