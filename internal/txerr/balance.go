package txerr

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrInsufficientBalance is the actionable replacement for relay balance errors.
var ErrInsufficientBalance = errors.New("insufficient USDC balance or allowance for this trade, top up the trading wallet or re-run setup")

var insufficientBalanceHints = []string{
	"insufficient balance",
	"insufficient funds",
	"exceeds balance",
	"transfer amount exceeds",
	"erc20: insufficient allowance",
}

// LooksLikeInsufficientBalance matches relay/transport error text. Heuristic only: relays do not
// expose a stable code for this, so a miss simply leaves the original error untouched.
func LooksLikeInsufficientBalance(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range insufficientBalanceHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}

	return false
}

// RewriteInsufficientBalance replaces balance related errors with ErrInsufficientBalance while keeping
// the original message in the chain.
func RewriteInsufficientBalance(err error) error {
	if !LooksLikeInsufficientBalance(err) {
		return err
	}

	return &Error{
		Kind: KindOf(err),
		Err:  &balanceError{cause: err},
	}
}

type balanceError struct {
	cause error
}

func (e *balanceError) Error() string {
	return ErrInsufficientBalance.Error() + " (" + e.cause.Error() + ")"
}

func (e *balanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

func (e *balanceError) Unwrap() error {
	return e.cause
}
