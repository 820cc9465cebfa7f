package encoder

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const selectorLength = 4

// DecodedOpenTrade is an openTrade call recovered from a delegatedAction envelope.
type DecodedOpenTrade struct {
	Trader    common.Address
	Trade     TradeStruct
	OrderType uint8
	Slippage  *big.Int
}

// DecodeDelegatedAction splits a delegatedAction call into the trader and the inner calldata.
func DecodeDelegatedAction(data []byte) (common.Address, []byte, error) {
	method := tradingABI.Methods["delegatedAction"]
	if len(data) < selectorLength || !bytes.Equal(data[:selectorLength], method.ID) {
		return common.Address{}, nil, errors.New("not a delegatedAction call")
	}

	values, err := method.Inputs.Unpack(data[selectorLength:])
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "failed to unpack delegatedAction")
	}

	trader, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, errors.New("unexpected trader argument")
	}

	inner, ok := values[1].([]byte)
	if !ok {
		return common.Address{}, nil, errors.New("unexpected call data argument")
	}

	return trader, inner, nil
}

// DecodeOpenTrade decodes a delegatedAction(openTrade) produced by OpenTrade.
func DecodeOpenTrade(data []byte) (*DecodedOpenTrade, error) {
	trader, inner, err := DecodeDelegatedAction(data)
	if err != nil {
		return nil, err
	}

	method := tradingABI.Methods["openTrade"]
	if len(inner) < selectorLength || !bytes.Equal(inner[:selectorLength], method.ID) {
		return nil, errors.New("inner call is not openTrade")
	}

	values, err := method.Inputs.Unpack(inner[selectorLength:])
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack openTrade")
	}

	trade, ok := abi.ConvertType(values[0], new(TradeStruct)).(*TradeStruct)
	if !ok {
		return nil, errors.New("unexpected trade tuple")
	}

	orderType, ok := values[1].(uint8)
	if !ok {
		return nil, errors.New("unexpected order type")
	}

	slippage, ok := values[2].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected slippage")
	}

	return &DecodedOpenTrade{
		Trader:    trader,
		Trade:     *trade,
		OrderType: orderType,
		Slippage:  slippage,
	}, nil
}
