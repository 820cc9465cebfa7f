package trade

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/util/command"
)

func newInspect() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <calldata>",
		Short: "Decodes delegatedAction(openTrade) calldata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hexutil.Decode(args[0])
			if err != nil {
				return errors.Wrap(err, "calldata must be 0x prefixed hex")
			}

			decoded, err := encoder.DecodeOpenTrade(data)
			if err != nil {
				return err
			}

			return command.PrintJSON(cmd.OutOrStdout(), decoded)
		},
	}
}
