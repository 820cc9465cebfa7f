package trade

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/util/command"
)

func newTpSl() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tpsl",
		Short: "Updates take profit and stop loss of a position",
		Long:  `Updates take profit and stop loss of a position. A zero stop loss removes it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			trader, err := traderAddress(cmd)
			if err != nil {
				return err
			}

			req := encoder.TpSlRequest{Trader: trader}
			req.PairIndex, _ = cmd.Flags().GetInt64(pairFlag)
			req.TradeIndex, _ = cmd.Flags().GetInt64(tradeIndexFlag)
			if req.TakeProfit, err = decimalFlag(cmd, "tp"); err != nil {
				return err
			}
			if req.StopLoss, err = decimalFlag(cmd, "sl"); err != nil {
				return err
			}

			cfg := config.DefaultEngineConfigFromEnv()
			if err := command.PromptPassword(&cfg); err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				out, err := s.Engine.UpdateTpSl(ctx, req)
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
	cmd.Flags().String("tp", "", "Take profit price (required)")
	cmd.Flags().String("sl", "0", "Stop loss price")

	_ = cmd.MarkFlagRequired(traderFlag)
	_ = cmd.MarkFlagRequired("tp")

	return cmd
}
