package trade

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/util/command"
)

func newOpen() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Opens a market position through the delegate",
		Long: `Opens a zero-fee market position for --trader. The one-time setup runs first if the
configured wallet belongs to the trader. Waits for confirmation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			trader, err := traderAddress(cmd)
			if err != nil {
				return err
			}

			intent := encoder.TradeIntent{Trader: trader}
			intent.PairIndex, _ = cmd.Flags().GetInt64(pairFlag)
			intent.IsLong, _ = cmd.Flags().GetBool("long")

			if intent.Collateral, err = decimalFlag(cmd, collateralFlag); err != nil {
				return err
			}
			if intent.Leverage, err = decimalFlag(cmd, "leverage"); err != nil {
				return err
			}
			if intent.OpenPrice, err = decimalFlag(cmd, "price"); err != nil {
				return err
			}
			if intent.TakeProfit, err = optionalDecimalFlag(cmd, "tp"); err != nil {
				return err
			}
			if intent.StopLoss, err = optionalDecimalFlag(cmd, "sl"); err != nil {
				return err
			}
			if intent.SlippagePercent, err = optionalDecimalFlag(cmd, "slippage"); err != nil {
				return err
			}

			cfg := config.DefaultEngineConfigFromEnv()
			if err := command.PromptPassword(&cfg); err != nil {
				return err
			}

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				out, err := s.Engine.OpenTrade(ctx, intent)
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
	cmd.Flags().String(collateralFlag, "", "Collateral in USDC (required)")
	cmd.Flags().String("leverage", "", "Leverage (required)")
	cmd.Flags().Bool("long", true, "Long position, --long=false for short")
	cmd.Flags().String("price", "", "Expected open price (required)")
	cmd.Flags().String("tp", "", "Take profit price")
	cmd.Flags().String("sl", "", "Stop loss price")
	cmd.Flags().String("slippage", "", "Slippage in percent")

	for _, name := range []string{traderFlag, collateralFlag, "leverage", "price"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
