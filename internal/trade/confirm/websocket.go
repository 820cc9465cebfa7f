package confirm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/util"
)

const eventBuffer = 16

type subscribeMessage struct {
	Type    string         `json:"type"`
	Address common.Address `json:"address"`
}

type eventMessage struct {
	Event  string      `json:"event"`
	TxHash common.Hash `json:"txHash"`
	Reason string      `json:"reason,omitempty"`
}

// WebsocketSource receives transaction lifecycle events over a websocket. After
// connecting it sends {"type":"subscribe","address":...} and expects
// {"event":"picked_up|preconfirmed|confirmed|failed","txHash":...} messages.
type WebsocketSource struct {
	url    string
	dialer *websocket.Dialer
}

func NewWebsocketSource(url string) *WebsocketSource {
	return &WebsocketSource{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (s *WebsocketSource) Subscribe(ctx context.Context, account common.Address) (<-chan Event, error) {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", s.url)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err := conn.WriteJSON(subscribeMessage{Type: "subscribe", Address: account}); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to subscribe to transaction events")
	}

	events := make(chan Event, eventBuffer)
	log := util.LogFromContext(ctx)

	// unblocks ReadJSON once the session ends
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	go func() {
		defer close(events)
		defer stop()
		defer conn.Close()

		for {
			var msg eventMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil {
					log.Debug().Err(err).Msg("Transaction event stream closed")
				}
				return
			}

			kind, ok := parseEventKind(msg.Event)
			if !ok {
				continue
			}

			select {
			case events <- Event{Kind: kind, TxHash: msg.TxHash, Reason: msg.Reason}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func parseEventKind(name string) (Stage, bool) {
	switch Stage(strings.ToLower(name)) {
	case StagePickedUp:
		return StagePickedUp, true
	case StagePreconfirmed:
		return StagePreconfirmed, true
	case StageConfirmed:
		return StageConfirmed, true
	case StageFailed:
		return StageFailed, true
	default:
		return "", false
	}
}
