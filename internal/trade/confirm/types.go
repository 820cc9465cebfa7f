package confirm

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Stage of a confirmation session. Stages only move forward, failed is reachable from
// every non-terminal stage.
type Stage string

const (
	StageNone         Stage = "none"
	StageSubmitted    Stage = "submitted"
	StagePickedUp     Stage = "picked_up"
	StagePreconfirmed Stage = "preconfirmed"
	StageConfirmed    Stage = "confirmed"
	StageFailed       Stage = "failed"
)

func (s Stage) rank() int {
	switch s {
	case StageSubmitted:
		return 1
	case StagePickedUp:
		return 2
	case StagePreconfirmed:
		return 3
	case StageConfirmed, StageFailed:
		return 4
	default:
		return 0
	}
}

func (s Stage) IsTerminal() bool {
	return s == StageConfirmed || s == StageFailed
}

// Source names what caused a transition.
type Source string

const (
	SourceStart   Source = "start"
	SourcePush    Source = "push"
	SourcePoll    Source = "poll"
	SourceTimeout Source = "timeout"
)

const (
	ReasonTimeout  = "Confirmation timeout"
	ReasonReverted = "Transaction reverted"
)

// Session is the observable state of the current confirmation.
type Session struct {
	TxHash    common.Hash `json:"txHash"`
	Stage     Stage       `json:"stage"`
	Source    Source      `json:"source,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	StartedAt time.Time   `json:"startedAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Listener receives every transition of the tracker. Listeners run on the session
// goroutine and must not call Start or Cancel synchronously.
type Listener func(Session)

// Event is a lifecycle notification of the push channel.
type Event struct {
	Kind   Stage
	TxHash common.Hash
	Reason string
}

// EventSource streams lifecycle events of transactions sent by account. The channel is
// closed once ctx ends or the stream breaks.
type EventSource interface {
	Subscribe(ctx context.Context, account common.Address) (<-chan Event, error)
}

// ReceiptReader looks up receipts; ethereum.NotFound means not mined yet.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Used by NewTracker for non-positive durations.
const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultTimeout      = 30 * time.Second
)

type Config struct {
	PollInterval time.Duration
	Timeout      time.Duration
	// Account is the sender whose push events are subscribed to.
	Account common.Address
}
