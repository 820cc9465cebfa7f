package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/api/router"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/wallet/delegate"
)

const testChainID = 8453

// Config returns the engine config used by test servers: in-memory delegate store, cheap KDF
// and the given node.
func Config(nodeURL string) config.Engine {
	cfg := config.DefaultEngineConfigFromEnv()

	cfg.Chain.ChainID = testChainID
	cfg.Chain.RPCURL = nodeURL
	cfg.Chain.RegistryFile = ""
	cfg.Delegate.StoreDriver = api.StoreDriverMemory
	cfg.Delegate.Password = "test"
	cfg.Delegate.LightKDF = true
	cfg.Confirm.PushURL = ""
	cfg.Confirm.PollInterval = 10 * time.Millisecond
	cfg.Confirm.Timeout = time.Second
	cfg.Relay.Sponsored.APIKey = ""
	cfg.Relay.Self.PrivateKey = ""
	cfg.Wallet.PrivateKey = ""
	cfg.Echo.EnableLoggerMiddleware = false

	return cfg
}

// WithTestServer runs closure against a fully wired server backed by a fake node.
func WithTestServer(t *testing.T, closure func(s *api.Server, n *FakeNode)) {
	t.Helper()

	n := NewFakeNode(t, testChainID)
	WithTestServerConfigurable(t, Config(n.Server.URL), n, closure)
}

func WithTestServerConfigurable(t *testing.T, cfg config.Engine, n *FakeNode, closure func(s *api.Server, n *FakeNode)) {
	t.Helper()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	s, err := api.InitNewServerWithNode(t.Context(), cfg, n.Client, delegate.NewMemoryStore())
	if err != nil {
		t.Fatalf("failed to init test server: %v", err)
	}

	router.Init(s)

	closure(s, n)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		t.Fatalf("failed to shutdown test server: %v", errs)
	}
}

// PerformRequest runs a request against the server's echo instance. body is JSON encoded unless
// it is nil.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body interface{}, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var payload string
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		payload = string(b)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseAndValidate decodes a JSON response into v.
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
