package txerr

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Kind classifies failures of the trade pipeline.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is raised before anything is signed and is never retried.
	KindValidation
	// KindSigning covers wallet refusals including user rejection.
	KindSigning
	// KindNetwork is a transient relay or RPC failure.
	KindNetwork
	// KindTimeout is a hard-capped wait that ran out.
	KindTimeout
	// KindProtocolRevert means the chain executed and reverted.
	KindProtocolRevert
	// KindConfirmationTimeout means no confirmation channel resolved in time.
	KindConfirmationTimeout
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSigning:
		return "signing"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindProtocolRevert:
		return "protocol_revert"
	case KindConfirmationTimeout:
		return "confirmation_timeout"
	default:
		return "unknown"
	}
}

// Error is a classified error. Op names the failing operation, Err keeps the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause makes pkg/errors.Cause stop at the classified error.
func (e *Error) Cause() error {
	return e.Err
}

func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Err: errors.Errorf(format, args...)}
}

func Network(op string, err error) error {
	return New(KindNetwork, op, err)
}

func Signing(op string, err error) error {
	return New(KindSigning, op, err)
}

func Revert(op string, reason string) error {
	return &Error{Kind: KindProtocolRevert, Op: op, Err: errors.New(reason)}
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ErrorCode extracts a JSON-RPC / EIP-1193 error code from err, 0 if there is none.
func ErrorCode(err error) int {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}

	return 0
}

// IsUserRejection reports whether a wallet refused because the user rejected the request.
func IsUserRejection(err error) bool {
	if ErrorCode(err) == CodeUserRejected {
		return true
	}

	return err != nil && strings.Contains(strings.ToLower(err.Error()), "user rejected")
}

// CodedError is a wallet error carrying an EIP-1193 code. It satisfies rpc.Error.
type CodedError struct {
	Code    int
	Message string
}

func (e *CodedError) Error() string {
	return e.Message
}

func (e *CodedError) ErrorCode() int {
	return e.Code
}
