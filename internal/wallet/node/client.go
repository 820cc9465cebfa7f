package node

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-trader/internal/txerr"
	"golang.org/x/time/rate"
)

// Client 封装以太坊 RPC 客户端，支持多个 URL 和故障转移
type Client struct {
	urls    []string
	clients []*ethclient.Client
	limiter *rate.Limiter
	mu      sync.Mutex
	current int // 当前使用的客户端索引
}

// Dial 创建新的 RPC 客户端. requestsPerSecond <= 0 disables rate limiting.
func Dial(urls []string, requestsPerSecond float64) (*Client, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	clients := make([]*ethclient.Client, 0, len(urls))
	for _, url := range urls {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			// 继续尝试其他 URL，不立即失败
			clients = append(clients, nil)
			continue
		}
		clients = append(clients, client)
	}

	if allClientsNil(clients) {
		return nil, errors.New("failed to connect to any RPC node")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), max(1, int(requestsPerSecond)))
	}

	return &Client{
		urls:    urls,
		clients: clients,
		limiter: limiter,
	}, nil
}

// allClientsNil 检查所有客户端是否都是 nil
func allClientsNil(clients []*ethclient.Client) bool {
	for _, client := range clients {
		if client != nil {
			return false
		}
	}
	return true
}

// Close 关闭所有客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		if client != nil {
			client.Close()
		}
	}
}

// ChainID 获取链 ID
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var chainID *big.Int
	err := c.do(ctx, "get chain ID", func(client *ethclient.Client) (err error) {
		chainID, err = client.ChainID(ctx)
		return err
	})

	return chainID, err
}

// BlockNumber 获取最新区块号
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.do(ctx, "get latest block number", func(client *ethclient.Client) (err error) {
		number, err = client.BlockNumber(ctx)
		return err
	})

	return number, err
}

// HeaderByNumber returns a block header, nil number means latest.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	var header *types.Header
	err := c.do(ctx, "get block header", func(client *ethclient.Client) (err error) {
		header, err = client.HeaderByNumber(ctx, number)
		return err
	})

	return header, err
}

// TransactionReceipt 获取交易回执. ethereum.NotFound is returned unwrapped while the
// transaction is still pending.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.do(ctx, "get transaction receipt", func(client *ethclient.Client) (err error) {
		receipt, err = client.TransactionReceipt(ctx, txHash)
		return err
	})

	return receipt, err
}

// CallContract executes a read-only call, nil blockNumber means latest.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.do(ctx, "call contract", func(client *ethclient.Client) (err error) {
		out, err = client.CallContract(ctx, msg, blockNumber)
		return err
	})

	return out, err
}

// EstimateGas 估算 Gas 用量
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := c.do(ctx, "estimate gas", func(client *ethclient.Client) (err error) {
		gas, err = client.EstimateGas(ctx, msg)
		return err
	})

	return gas, err
}

// PendingNonceAt returns the pending nonce for the given address.
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var nonce uint64
	err := c.do(ctx, "get pending nonce", func(client *ethclient.Client) (err error) {
		nonce, err = client.PendingNonceAt(ctx, account)
		return err
	})

	return nonce, err
}

// SuggestGasTipCap 建议 Gas 小费上限 (EIP-1559)
func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var tip *big.Int
	err := c.do(ctx, "suggest gas tip cap", func(client *ethclient.Client) (err error) {
		tip, err = client.SuggestGasTipCap(ctx)
		return err
	})

	return tip, err
}

// SuggestFees returns EIP-1559 caps: maxFee = tip + 2 * baseFee.
func (c *Client) SuggestFees(ctx context.Context) (*big.Int, *big.Int, error) {
	tip, err := c.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, err
	}

	header, err := c.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, err
	}

	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}

	const baseFeeHeadroom = 2
	maxFee := new(big.Int).Mul(baseFee, big.NewInt(baseFeeHeadroom))
	maxFee.Add(maxFee, tip)

	return maxFee, tip, nil
}

// SendTransaction 发送已签名的交易
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.do(ctx, "send transaction", func(client *ethclient.Client) error {
		return client.SendTransaction(ctx, tx)
	})
}

// BalanceAt returns the balance of an address at the latest known block.
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := c.do(ctx, "get balance", func(client *ethclient.Client) (err error) {
		balance, err = client.BalanceAt(ctx, account, nil)
		return err
	})

	return balance, err
}

// do runs fn against the current node and fails over to the next one on transport errors.
// Answers of a healthy node (JSON-RPC errors, not found) are returned as is.
func (c *Client) do(ctx context.Context, op string, fn func(client *ethclient.Client) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "failed to %s", op)
	}

	c.mu.Lock()
	start := c.current
	c.mu.Unlock()

	var lastErr error
	for i := range c.urls {
		idx := (start + i) % len(c.urls)

		client, err := c.client(idx)
		if err != nil {
			lastErr = err
			continue
		}

		err = fn(client)
		if err == nil {
			c.setCurrent(idx)
			return nil
		}

		if errors.Is(err, ethereum.NotFound) {
			c.setCurrent(idx)
			return err
		}

		if ctx.Err() != nil {
			return errors.Wrapf(err, "failed to %s", op)
		}

		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			c.setCurrent(idx)
			return errors.Wrapf(err, "failed to %s", op)
		}

		log.Warn().
			Str("url", c.urls[idx]).
			Str("op", op).
			Err(err).
			Msg("RPC node request failed, trying next node")
		lastErr = err
	}

	return txerr.Network(op, errors.Wrap(lastErr, "all RPC nodes are unavailable"))
}

// client 获取指定索引的客户端，必要时重新连接
func (c *Client) client(idx int) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clients[idx] != nil {
		return c.clients[idx], nil
	}

	client, err := ethclient.Dial(c.urls[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reconnect to %s", c.urls[idx])
	}
	c.clients[idx] = client

	return client, nil
}

func (c *Client) setCurrent(idx int) {
	c.mu.Lock()
	c.current = idx
	c.mu.Unlock()
}
