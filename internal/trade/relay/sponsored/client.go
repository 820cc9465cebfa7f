package sponsored

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/trade/relay"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
)

// HTTPError is a non 2xx answer of the relay.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}

// Client talks to a gas sponsoring relay over HTTP.
type Client struct {
	cfg        config.SponsoredRelay
	httpClient *http.Client
	retry      txerr.RetryConfig
}

func NewClient(cfg config.SponsoredRelay) *Client {
	retry := txerr.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialInterval > 0 {
		retry.InitialInterval = cfg.InitialInterval
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		retry:      retry,
	}
}

// NewProvider returns the sponsored relay provider.
//
//nolint:ireturn
func NewProvider(cfg config.SponsoredRelay, relayer *relay.Relayer) relay.Provider {
	return relay.NewProvider(Name, relayer, NewClient(cfg))
}

func (c *Client) IsConfigured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

// Submit sends a sponsored call and returns the relay's task id.
func (c *Client) Submit(ctx context.Context, req *relay.SubmitRequest) (string, error) {
	body := sponsoredCallRequest{
		ChainID:           req.ChainID.String(),
		Target:            req.Target,
		Data:              hexutil.Encode(req.Data),
		SponsorAPIKey:     c.cfg.APIKey,
		GasLimit:          strconv.FormatUint(req.GasLimit, 10),
		AuthorizationList: req.AuthorizationList,
		TransactionType:   req.TransactionType,
	}
	if req.Value != nil && req.Value.Sign() > 0 {
		body.Value = req.Value.String()
	}

	var resp sponsoredCallResponse
	if err := c.do(ctx, http.MethodPost, "/relays/sponsored-call", body, &resp); err != nil {
		return "", err
	}

	if resp.TaskID == "" {
		return "", errors.New("relay returned no task id")
	}

	util.LogFromContext(ctx).Debug().Str("task_id", resp.TaskID).Msg("Sponsored call submitted")

	return resp.TaskID, nil
}

// Status returns the current state of a task.
func (c *Client) Status(ctx context.Context, taskID string) (*TaskStatus, error) {
	var resp taskStatusResponse
	if err := c.do(ctx, http.MethodGet, "/tasks/status/"+taskID, nil, &resp); err != nil {
		return nil, err
	}

	return &resp.Task, nil
}

// WaitForExecutionHash polls the task until it carries a transaction hash.
func (c *Client) WaitForExecutionHash(ctx context.Context, taskID string) (common.Hash, error) {
	log := util.LogFromContext(ctx)

	interval := c.cfg.StatusInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.Status(ctx, taskID)
		if err != nil && !isNotFound(err) {
			if ctx.Err() != nil {
				return common.Hash{}, ctx.Err()
			}
			return common.Hash{}, err
		}

		if status != nil {
			log.Debug().Str("task_id", taskID).Str("state", status.TaskState).Msg("Relay task status")

			switch status.TaskState {
			case StateExecReverted:
				return common.Hash{}, txerr.Revert("relay task "+taskID, reason(status, "execution reverted"))
			case StateCancelled:
				return common.Hash{}, errors.Errorf("relay task cancelled: %s", reason(status, "no reason given"))
			case StateExecPending, StateWaitingForConfirmation, StateExecSuccess:
				if status.TransactionHash != "" {
					return common.HexToHash(status.TransactionHash), nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return common.Hash{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func reason(status *TaskStatus, fallback string) string {
	if status.LastCheckMessage != "" {
		return status.LastCheckMessage
	}

	return fallback
}

func isNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// do performs a JSON request, retrying transport errors and retryable statuses.
func (c *Client) do(ctx context.Context, method string, path string, in interface{}, out interface{}) error {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + path

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal relay request")
		}
	}

	return txerr.Retry(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return errors.Wrap(err, "failed to create relay request")
		}
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return txerr.Network(method+" "+path, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return txerr.Network(method+" "+path, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			httpErr := &HTTPError{StatusCode: resp.StatusCode, Method: method, URL: url, Message: errorMessage(raw)}
			if retryableStatus(resp.StatusCode) {
				return txerr.Network(method+" "+path, httpErr)
			}
			return httpErr
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(err, "failed to decode relay response")
		}

		return nil
	})
}

func errorMessage(raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		return e.Message
	}

	return strings.TrimSpace(string(raw))
}
