// Package selfrelay submits user operations to the entry point from a funded local key
// instead of a third party relay.
package selfrelay

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/trade/relay"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/signer"
)

const Name = "self"

// Node is the RPC access needed to broadcast handleOps.
type Node interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestFees(ctx context.Context) (*big.Int, *big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Client is a relay.Backend broadcasting directly through the node. The task id is the
// transaction hash.
type Client struct {
	signer *signer.Service
	node   Node
}

// NewClient returns a client signing with s. A nil s yields an unconfigured client.
func NewClient(s *signer.Service, node Node) *Client {
	return &Client{signer: s, node: node}
}

// NewProvider returns the self relay provider for cfg. Without a relayer key the provider
// is registered but not configured.
//
//nolint:ireturn
func NewProvider(cfg config.SelfRelay, relayer *relay.Relayer, node Node) (relay.Provider, error) {
	var s *signer.Service
	if cfg.PrivateKey != "" {
		var err error
		s, err = signer.NewServiceFromHex(cfg.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "invalid self relay key")
		}
	}

	return relay.NewProvider(Name, relayer, NewClient(s, node)), nil
}

func (c *Client) IsConfigured() bool {
	return c.signer != nil && c.node != nil
}

// Address of the relayer key paying for gas.
func (c *Client) Address() common.Address {
	if c.signer == nil {
		return common.Address{}
	}

	return c.signer.Address()
}

func (c *Client) Submit(ctx context.Context, req *relay.SubmitRequest) (string, error) {
	if !c.IsConfigured() {
		return "", errors.New("self relay is not configured")
	}

	from := c.signer.Address()

	nonce, err := c.node.PendingNonceAt(ctx, from)
	if err != nil {
		return "", err
	}

	maxFee, tip, err := c.node.SuggestFees(ctx)
	if err != nil {
		return "", err
	}

	auths := make([]types.SetCodeAuthorization, 0, len(req.AuthorizationList))
	for _, a := range req.AuthorizationList {
		auths = append(auths, a.SetCodeAuthorization())
	}

	resp, err := c.signer.SignEVMTransaction(ctx, &signer.SignEVMRequest{
		ChainID:              req.ChainID,
		To:                   req.Target,
		Value:                req.Value,
		GasLimit:             req.GasLimit,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
		Nonce:                nonce,
		Data:                 req.Data,
		AuthorizationList:    auths,
	})
	if err != nil {
		return "", txerr.Signing("sign handleOps transaction", err)
	}

	if err := c.node.SendTransaction(ctx, resp.Transaction); err != nil {
		return "", err
	}

	util.LogFromContext(ctx).Debug().
		Str("relayer", from.Hex()).
		Str("tx_hash", resp.TxHash.Hex()).
		Uint8("tx_type", resp.Transaction.Type()).
		Msg("handleOps broadcast")

	return resp.TxHash.Hex(), nil
}

// WaitForExecutionHash returns immediately, the transaction was broadcast by Submit.
func (c *Client) WaitForExecutionHash(_ context.Context, taskID string) (common.Hash, error) {
	if len(common.FromHex(taskID)) != common.HashLength {
		return common.Hash{}, errors.Errorf("invalid task id %q", taskID)
	}

	return common.HexToHash(taskID), nil
}
