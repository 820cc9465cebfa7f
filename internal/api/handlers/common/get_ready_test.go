package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/test"
)

func TestGetReadyReadiness(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "GET", "/-/ready", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		require.Equal(t, "Ready.", res.Body.String())
	})
}

func TestGetReadyReadinessBroken(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		// forcefully remove an initialized component to check if ready state works
		s.Engine = nil

		res := test.PerformRequest(t, s, "GET", "/-/ready", nil, nil)
		require.Equal(t, 521, res.Result().StatusCode)
		require.Equal(t, "Not ready.", res.Body.String())
	})
}

func TestGetReadyNodeDownNotReady(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, n *test.FakeNode) {
		n.SetDown(true)

		res := test.PerformRequest(t, s, "GET", "/-/ready", nil, nil)
		require.Equal(t, 521, res.Result().StatusCode)
		require.Equal(t, "Not ready.", res.Body.String())
	})
}

func TestGetHealthy(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		require.Equal(t, "Healthy.", res.Body.String())
	})
}

func TestGetHealthyLocked(t *testing.T) {
	n := test.NewFakeNode(t, 8453)
	cfg := test.Config(n.Server.URL)
	cfg.Delegate.Password = ""

	test.WithTestServerConfigurable(t, cfg, n, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
		require.Equal(t, 521, res.Result().StatusCode)
		require.Equal(t, "Delegate locked.", res.Body.String())
	})
}

func TestGetMetrics(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server, _ *test.FakeNode) {
		res := test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}
