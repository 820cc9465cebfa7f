package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/metrics"
)

func TestObserveRelay(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	m.ObserveRelay("sponsored", time.Second, true, nil)
	m.ObserveRelay("sponsored", time.Second, false, nil)
	m.ObserveRelay("sponsored", time.Second, true, errors.New("boom"))

	count, err := testutil.GatherAndCount(m.Registry, "trader_relay_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(m.Registry, "trader_relay_authorizations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilServiceIsNoop(t *testing.T) {
	var m *metrics.Service

	assert.NotPanics(t, func() {
		m.ObserveRelay("self", time.Second, false, nil)
		m.ObserveTransition("confirmed", "poll")
		m.ObserveResolution("confirmed", "poll", time.Second)
		m.ObserveSetup(true, nil)
	})
}
