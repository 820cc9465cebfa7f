package chain

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Currency describes the native gas token of a chain.
type Currency struct {
	Name     string `toml:"name" json:"name"`
	Symbol   string `toml:"symbol" json:"symbol"`
	Decimals int    `toml:"decimals" json:"decimals"`
}

// Chain 链配置
type Chain struct {
	ChainID        int64    `toml:"chain_id"`
	Name           string   `toml:"name"`
	RPCURLs        []string `toml:"rpc_urls"`
	ExplorerURLs   []string `toml:"explorer_urls"`
	NativeCurrency Currency `toml:"native_currency"`
}

// AddChainParams are the wallet_addEthereumChain (EIP-3085) parameters of a chain.
type AddChainParams struct {
	ChainID           hexutil.Big `json:"chainId"`
	ChainName         string      `json:"chainName"`
	RPCURLs           []string    `json:"rpcUrls"`
	BlockExplorerURLs []string    `json:"blockExplorerUrls,omitempty"`
	NativeCurrency    Currency    `json:"nativeCurrency"`
}

type registryFile struct {
	Chains []Chain `toml:"chains"`
}
