package chain

import (
	"math/big"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/config"
)

// ErrChainNotFound is returned for chain IDs missing from the registry.
var ErrChainNotFound = errors.New("chain not found")

// Registry holds the metadata wallets need to add a chain.
type Registry struct {
	chains map[int64]Chain
}

func NewRegistry(chains ...Chain) *Registry {
	r := &Registry{chains: make(map[int64]Chain, len(chains))}
	for _, c := range chains {
		r.chains[c.ChainID] = c
	}

	return r
}

// LoadRegistry reads a toml file with [[chains]] tables.
func LoadRegistry(path string) (*Registry, error) {
	var file registryFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to decode chain registry %s", path)
	}

	for _, c := range file.Chains {
		if c.ChainID <= 0 {
			return nil, errors.Errorf("chain %q has no chain_id", c.Name)
		}
		if len(c.RPCURLs) == 0 {
			return nil, errors.Errorf("chain %d has no rpc_urls", c.ChainID)
		}
	}

	return NewRegistry(file.Chains...), nil
}

// RegistryFromConfig builds the registry from the configured chain plus the optional registry file.
// The configured chain wins over a file entry with the same ID.
func RegistryFromConfig(cfg config.Chain) (*Registry, error) {
	r := NewRegistry()
	if cfg.RegistryFile != "" {
		loaded, err := LoadRegistry(cfg.RegistryFile)
		if err != nil {
			return nil, err
		}
		r = loaded
	}

	configured := Chain{
		ChainID: cfg.ChainID,
		Name:    cfg.Name,
		RPCURLs: ParseRPCURLs(cfg.RPCURL),
		NativeCurrency: Currency{
			Name:     "Ether",
			Symbol:   "ETH",
			Decimals: 18, //nolint:mnd
		},
	}
	if cfg.ExplorerURL != "" {
		configured.ExplorerURLs = []string{cfg.ExplorerURL}
	}
	r.chains[configured.ChainID] = configured

	return r, nil
}

// GetChain 根据 chain_id 查询链配置
func (r *Registry) GetChain(chainID int64) (Chain, error) {
	c, ok := r.chains[chainID]
	if !ok {
		return Chain{}, errors.Wrapf(ErrChainNotFound, "chain %d", chainID)
	}

	return c, nil
}

// ListChains 查询所有链配置
func (r *Registry) ListChains() []Chain {
	chains := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		chains = append(chains, c)
	}

	sort.Slice(chains, func(i, j int) bool { return chains[i].ChainID < chains[j].ChainID })

	return chains
}

// AddChainParams returns the EIP-3085 parameters of c.
func (c Chain) AddChainParams() AddChainParams {
	return AddChainParams{
		ChainID:           hexutil.Big(*big.NewInt(c.ChainID)),
		ChainName:         c.Name,
		RPCURLs:           c.RPCURLs,
		BlockExplorerURLs: c.ExplorerURLs,
		NativeCurrency:    c.NativeCurrency,
	}
}

// ParseRPCURLs 解析 RPC URL（支持多个，逗号分隔）
func ParseRPCURLs(rpcURL string) []string {
	if rpcURL == "" {
		return nil
	}

	urls := strings.Split(rpcURL, ",")
	result := make([]string, 0, len(urls))

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url != "" {
			result = append(result, url)
		}
	}

	return result
}
