package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type PostDelegateSetupPayload struct {
	Trader common.Address `json:"trader"`
	// DelegateAddress defaults to this installation's delegate.
	DelegateAddress *common.Address `json:"delegate_address,omitempty"`
}

func (p *PostDelegateSetupPayload) Validate() error {
	return vala.BeginValidation().Validate(
		addressSet(p.Trader, "trader"),
	).Check()
}

type DelegateStatusResponse struct {
	Trader          common.Address  `json:"trader"`
	IsSetup         bool            `json:"is_setup"`
	DelegateAddress *common.Address `json:"delegate_address"`
	IsDelegateSet   bool            `json:"is_delegate_set"`
	Allowance       decimal.Decimal `json:"allowance"`
	HasAllowance    bool            `json:"has_allowance"`
}

func (r *DelegateStatusResponse) Validate() error {
	if r.Trader == (common.Address{}) {
		return errors.New("trader is missing")
	}

	return nil
}

type PostApproveUSDCPayload struct {
	Trader common.Address `json:"trader"`
	// Amount defaults to the approval cap.
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

func (p *PostApproveUSDCPayload) Validate() error {
	return vala.BeginValidation().Validate(
		addressSet(p.Trader, "trader"),
		notNegative(p.Amount, "amount"),
	).Check()
}

type AllowanceResponse struct {
	Allowance     decimal.Decimal `json:"allowance"`
	Balance       decimal.Decimal `json:"balance"`
	Required      decimal.Decimal `json:"required"`
	HasSufficient bool            `json:"has_sufficient"`
}

func (r *AllowanceResponse) Validate() error {
	return nil
}

type PostRemoveDelegatePayload struct {
	Trader common.Address `json:"trader"`
}

func (p *PostRemoveDelegatePayload) Validate() error {
	return vala.BeginValidation().Validate(
		addressSet(p.Trader, "trader"),
	).Check()
}

type TradingContractResponse struct {
	Address common.Address `json:"address"`
}

func (r *TradingContractResponse) Validate() error {
	if r.Address == (common.Address{}) {
		return errors.New("trading contract is not configured")
	}

	return nil
}
