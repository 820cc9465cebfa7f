package sponsored

import (
	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-trader/internal/trade/relay"
)

// Name is the provider name of the sponsored relay.
const Name = "sponsored"

// Task states reported by the relay.
const (
	StateCheckPending           = "CheckPending"
	StateExecPending            = "ExecPending"
	StateWaitingForConfirmation = "WaitingForConfirmation"
	StateExecSuccess            = "ExecSuccess"
	StateExecReverted           = "ExecReverted"
	StateCancelled              = "Cancelled"
	StateNotFound               = "NotFound"
)

type sponsoredCallRequest struct {
	ChainID           string                `json:"chainId"`
	Target            common.Address        `json:"target"`
	Data              string                `json:"data"`
	Value             string                `json:"value,omitempty"`
	SponsorAPIKey     string                `json:"sponsorApiKey"`
	GasLimit          string                `json:"gasLimit,omitempty"`
	AuthorizationList []relay.Authorization `json:"authorizationList,omitempty"`
	TransactionType   string                `json:"transactionType,omitempty"`
}

type sponsoredCallResponse struct {
	TaskID string `json:"taskId"`
}

// TaskStatus is the relay's view of a submitted task.
type TaskStatus struct {
	ChainID          int64  `json:"chainId"`
	TaskID           string `json:"taskId"`
	TaskState        string `json:"taskState"`
	TransactionHash  string `json:"transactionHash,omitempty"`
	LastCheckMessage string `json:"lastCheckMessage,omitempty"`
}

type taskStatusResponse struct {
	Task TaskStatus `json:"task"`
}

type errorResponse struct {
	Message string `json:"message"`
}
