package config_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/config"
)

func TestValidateDefaults(t *testing.T) {
	require.NoError(t, config.DefaultEngineConfigFromEnv().Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Engine)
		want   string
	}{
		{"zero poll interval", func(cfg *config.Engine) { cfg.Confirm.PollInterval = 0 }, "confirm.poll_interval"},
		{"negative poll interval", func(cfg *config.Engine) { cfg.Confirm.PollInterval = -1 }, "confirm.poll_interval"},
		{"zero confirm timeout", func(cfg *config.Engine) { cfg.Confirm.Timeout = 0 }, "confirm.timeout"},
		{"zero relay wait", func(cfg *config.Engine) { cfg.Relay.WaitTimeout = 0 }, "relay.wait_timeout"},
		{"no entry point", func(cfg *config.Engine) { cfg.Contracts.EntryPoint = common.Address{} }, "contracts.entry_point"},
		{"no rpc url", func(cfg *config.Engine) { cfg.Chain.RPCURL = "" }, "chain.rpc_url"},
		{"no chain id", func(cfg *config.Engine) { cfg.Chain.ChainID = 0 }, "chain.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultEngineConfigFromEnv()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPollIntervalFromEnvIsValidated(t *testing.T) {
	t.Setenv("TRADER_CONFIRM_POLL_INTERVAL", "0s")

	err := config.DefaultEngineConfigFromEnv().Validate()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
