package confirm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/trade/confirm"
)

func TestWebsocketSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan map[string]string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		var msg map[string]string
		if !assert.NoError(t, conn.ReadJSON(&msg)) {
			return
		}
		subscribed <- msg

		_ = conn.WriteJSON(map[string]string{"event": "unrelated", "txHash": hashA.Hex()})
		_ = conn.WriteJSON(map[string]string{"event": "PRECONFIRMED", "txHash": hashA.Hex()})
		_ = conn.WriteJSON(map[string]string{"event": "failed", "txHash": hashA.Hex(), "reason": "reverted"})

		// keep the connection open until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	source := confirm.NewWebsocketSource("ws" + strings.TrimPrefix(srv.URL, "http"))

	ctx, cancel := context.WithCancel(t.Context())
	events, err := source.Subscribe(ctx, account)
	require.NoError(t, err)

	msg := <-subscribed
	assert.Equal(t, "subscribe", msg["type"])
	assert.Equal(t, strings.ToLower(account.Hex()), msg["address"])

	first := <-events
	assert.Equal(t, confirm.StagePreconfirmed, first.Kind)
	assert.Equal(t, hashA, first.TxHash)

	second := <-events
	assert.Equal(t, confirm.StageFailed, second.Kind)
	assert.Equal(t, "reverted", second.Reason)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}

func TestWebsocketSourceDialError(t *testing.T) {
	_, err := confirm.NewWebsocketSource("ws://127.0.0.1:1/events").Subscribe(t.Context(), account)
	assert.Error(t, err)
}
