package encoder

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const tradingABIJSON = `[
	{"type":"function","name":"openTrade","stateMutability":"payable","outputs":[],"inputs":[
		{"name":"t","type":"tuple","components":[
			{"name":"trader","type":"address"},
			{"name":"pairIndex","type":"uint256"},
			{"name":"index","type":"uint256"},
			{"name":"initialPosToken","type":"uint256"},
			{"name":"positionSizeUSDC","type":"uint256"},
			{"name":"openPrice","type":"uint256"},
			{"name":"buy","type":"bool"},
			{"name":"leverage","type":"uint256"},
			{"name":"tp","type":"uint256"},
			{"name":"sl","type":"uint256"},
			{"name":"timestamp","type":"uint256"}]},
		{"name":"_type","type":"uint8"},
		{"name":"_slippageP","type":"uint256"}]},
	{"type":"function","name":"closeTradeMarket","stateMutability":"payable","outputs":[],"inputs":[
		{"name":"_pairIndex","type":"uint256"},
		{"name":"_index","type":"uint256"},
		{"name":"_amount","type":"uint256"}]},
	{"type":"function","name":"updateTpAndSl","stateMutability":"payable","outputs":[],"inputs":[
		{"name":"_pairIndex","type":"uint256"},
		{"name":"_index","type":"uint256"},
		{"name":"_newSl","type":"uint256"},
		{"name":"_newTP","type":"uint256"},
		{"name":"priceUpdateData","type":"bytes[]"}]},
	{"type":"function","name":"delegatedAction","stateMutability":"payable","inputs":[
		{"name":"trader","type":"address"},
		{"name":"call_data","type":"bytes"}],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"setDelegate","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"delegate","type":"address"}]},
	{"type":"function","name":"removeDelegate","stateMutability":"nonpayable","outputs":[],"inputs":[]},
	{"type":"function","name":"delegations","stateMutability":"view","inputs":[
		{"name":"","type":"address"}],"outputs":[{"name":"","type":"address"}]}
]`

// storageABIJSON holds the public getters of the protocol's TradingStorage.
const storageABIJSON = `[
	{"type":"function","name":"openTradesCount","stateMutability":"view","inputs":[
		{"name":"","type":"address"},
		{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"openTrades","stateMutability":"view","inputs":[
		{"name":"","type":"address"},
		{"name":"","type":"uint256"},
		{"name":"","type":"uint256"}],"outputs":[
		{"name":"trader","type":"address"},
		{"name":"pairIndex","type":"uint256"},
		{"name":"index","type":"uint256"},
		{"name":"initialPosToken","type":"uint256"},
		{"name":"positionSizeUSDC","type":"uint256"},
		{"name":"openPrice","type":"uint256"},
		{"name":"buy","type":"bool"},
		{"name":"leverage","type":"uint256"},
		{"name":"tp","type":"uint256"},
		{"name":"sl","type":"uint256"},
		{"name":"timestamp","type":"uint256"}]}
]`

const erc20ABIJSON = `[
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[
		{"name":"spender","type":"address"},
		{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[
		{"name":"owner","type":"address"},
		{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[
		{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const multicallABIJSON = `[
	{"type":"function","name":"aggregate","stateMutability":"payable","inputs":[
		{"name":"calls","type":"tuple[]","components":[
			{"name":"target","type":"address"},
			{"name":"callData","type":"bytes"}]}],
	"outputs":[
		{"name":"blockNumber","type":"uint256"},
		{"name":"returnData","type":"bytes[]"}]}
]`

var (
	tradingABI   = mustParseABI(tradingABIJSON)
	storageABI   = mustParseABI(storageABIJSON)
	erc20ABI     = mustParseABI(erc20ABIJSON)
	multicallABI = mustParseABI(multicallABIJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}

	return parsed
}
