package encoder

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-trader/internal/txerr"
)

// Approve builds a USDC approval for spender. A zero amount approves the configured cap,
// anything above the cap is rejected; unlimited approvals are never produced.
func (e *Encoder) Approve(spender common.Address, amount decimal.Decimal) (*EncodedTransaction, error) {
	if spender == (common.Address{}) {
		return nil, txerr.Validation("spender address is required")
	}
	if amount.IsNegative() {
		return nil, txerr.Validation("approval amount must not be negative")
	}

	if amount.IsZero() {
		amount = e.cfg.ApprovalCapUSDC
	}
	if amount.GreaterThan(e.cfg.ApprovalCapUSDC) {
		return nil, txerr.Validation("approval amount %s exceeds cap of %s USDC", amount, e.cfg.ApprovalCapUSDC)
	}

	data, err := erc20ABI.Pack("approve", spender, ScaleUSDC(amount))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack approve")
	}

	return e.tx(e.cfg.USDC, data, nil), nil
}

// SetDelegate authorizes delegate to trade on behalf of the sender.
func (e *Encoder) SetDelegate(delegate common.Address) (*EncodedTransaction, error) {
	if delegate == (common.Address{}) {
		return nil, txerr.Validation("delegate address is required")
	}

	data, err := tradingABI.Pack("setDelegate", delegate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack setDelegate")
	}

	return e.tx(e.cfg.Trading, data, nil), nil
}

func (e *Encoder) RemoveDelegate() (*EncodedTransaction, error) {
	data, err := tradingABI.Pack("removeDelegate")
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack removeDelegate")
	}

	return e.tx(e.cfg.Trading, data, nil), nil
}

// Multicall aggregates the given transactions into one atomic Multicall3 call. Values are not
// forwarded, so every call must be non-payable.
func (e *Encoder) Multicall(txs ...*EncodedTransaction) (*EncodedTransaction, error) {
	if len(txs) == 0 {
		return nil, txerr.Validation("multicall needs at least one call")
	}

	calls := make([]Call, 0, len(txs))
	for _, tx := range txs {
		if tx.ValueInt().Sign() != 0 {
			return nil, txerr.Validation("multicall cannot forward value to %s", tx.To.Hex())
		}
		calls = append(calls, Call{Target: tx.To, CallData: tx.Data})
	}

	data, err := multicallABI.Pack("aggregate", calls)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack aggregate")
	}

	return e.tx(e.cfg.Multicall, data, nil), nil
}

// DelegateOfCall returns the calldata reading the delegate registered for trader.
func (e *Encoder) DelegateOfCall(trader common.Address) ([]byte, error) {
	data, err := tradingABI.Pack("delegations", trader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack delegations")
	}

	return data, nil
}

func DecodeDelegateOf(out []byte) (common.Address, error) {
	values, err := tradingABI.Unpack("delegations", out)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "failed to unpack delegations")
	}

	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("unexpected delegations output")
	}

	return addr, nil
}

// AllowanceCall returns the calldata reading the USDC allowance owner granted to spender.
func (e *Encoder) AllowanceCall(owner, spender common.Address) ([]byte, error) {
	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack allowance")
	}

	return data, nil
}

func (e *Encoder) BalanceOfCall(account common.Address) ([]byte, error) {
	data, err := erc20ABI.Pack("balanceOf", account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack balanceOf")
	}

	return data, nil
}

// DecodeUint256 decodes the single uint256 returned by allowance or balanceOf.
func DecodeUint256(out []byte) (*big.Int, error) {
	values, err := erc20ABI.Methods["allowance"].Outputs.Unpack(out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack uint256")
	}

	n, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.New("unexpected uint256 output")
	}

	return n, nil
}
