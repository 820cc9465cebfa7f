package trade

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/util/command"
)

const (
	traderFlag     = "trader"
	pairFlag       = "pair"
	tradeIndexFlag = "index"
	collateralFlag = "collateral"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("trade",
		newOpen(),
		newClose(),
		newTpSl(),
		newInspect(),
	)
}

func traderAddress(cmd *cobra.Command) (common.Address, error) {
	raw, _ := cmd.Flags().GetString(traderFlag)
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.Errorf("invalid --%s %q", traderFlag, raw)
	}

	return common.HexToAddress(raw), nil
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid --%s", name)
	}

	return d, nil
}

// optionalDecimalFlag returns nil if the flag was not set.
func optionalDecimalFlag(cmd *cobra.Command, name string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}

	d, err := decimalFlag(cmd, name)
	if err != nil {
		return nil, err
	}

	return &d, nil
}
