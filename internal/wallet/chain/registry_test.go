package chain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/wallet/chain"
)

const registryTOML = `
[[chains]]
chain_id = 84532
name = "Base Sepolia"
rpc_urls = ["https://sepolia.base.org"]
explorer_urls = ["https://sepolia.basescan.org"]

  [chains.native_currency]
  name = "Sepolia Ether"
  symbol = "ETH"
  decimals = 18

[[chains]]
chain_id = 8453
name = "Base (file)"
rpc_urls = ["https://file.example"]
`

func TestParseRPCURLs(t *testing.T) {
	assert.Nil(t, chain.ParseRPCURLs(""))
	assert.Equal(t, []string{"https://a", "https://b"}, chain.ParseRPCURLs(" https://a, ,https://b "))
}

func TestRegistryFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.toml")
	require.NoError(t, os.WriteFile(path, []byte(registryTOML), 0o600))

	r, err := chain.RegistryFromConfig(config.Chain{
		ChainID:      8453,
		Name:         "Base",
		RPCURL:       "https://mainnet.base.org,https://backup.base.org",
		ExplorerURL:  "https://basescan.org",
		RegistryFile: path,
	})
	require.NoError(t, err)

	chains := r.ListChains()
	require.Len(t, chains, 2)
	assert.Equal(t, int64(8453), chains[0].ChainID)

	base, err := r.GetChain(8453)
	require.NoError(t, err)
	assert.Equal(t, "Base", base.Name)
	assert.Equal(t, []string{"https://mainnet.base.org", "https://backup.base.org"}, base.RPCURLs)

	sepolia, err := r.GetChain(84532)
	require.NoError(t, err)
	assert.Equal(t, "Sepolia Ether", sepolia.NativeCurrency.Name)

	_, err = r.GetChain(1)
	assert.True(t, errors.Is(err, chain.ErrChainNotFound))
}

func TestLoadRegistryRejectsIncompleteChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[chains]]\nchain_id = 10\nname = \"x\"\n"), 0o600))

	_, err := chain.LoadRegistry(path)
	assert.Error(t, err)
}

func TestAddChainParamsJSON(t *testing.T) {
	c := chain.Chain{
		ChainID:        8453,
		Name:           "Base",
		RPCURLs:        []string{"https://mainnet.base.org"},
		NativeCurrency: chain.Currency{Name: "Ether", Symbol: "ETH", Decimals: 18},
	}

	raw, err := json.Marshal(c.AddChainParams())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"chainId": "0x2105",
		"chainName": "Base",
		"rpcUrls": ["https://mainnet.base.org"],
		"nativeCurrency": {"name": "Ether", "symbol": "ETH", "decimals": 18}
	}`, string(raw))
}
