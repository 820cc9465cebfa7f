package userop

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ModeSingleCall is the ERC-7579 execution mode for one call with default exec type.
var ModeSingleCall = [32]byte{}

// Execute wraps a call into the smart account's execute(mode, executionCalldata), where
// executionCalldata = abi.encodePacked(target, value, data).
func Execute(target common.Address, value *big.Int, data []byte) ([]byte, error) {
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 || value.BitLen() > 256 {
		return nil, errors.New("invalid call value")
	}

	execution := make([]byte, 0, common.AddressLength+common.HashLength+len(data))
	execution = append(execution, target.Bytes()...)
	execution = append(execution, common.LeftPadBytes(value.Bytes(), common.HashLength)...)
	execution = append(execution, data...)

	callData, err := accountABI.Pack("execute", ModeSingleCall, execution)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack execute")
	}

	return callData, nil
}
