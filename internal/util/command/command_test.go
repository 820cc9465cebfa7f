package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/test"
	"github/chapool/go-trader/internal/util/command"
)

func TestWithServer(t *testing.T) {
	n := test.NewFakeNode(t, 8453)
	cfg := test.Config(n.Server.URL)
	cfg.Logger.PrettyPrintConsole = false

	var testError = errors.New("test error")

	resultErr := command.WithServer(t.Context(), cfg, func(ctx context.Context, s *api.Server) error {
		number, err := s.Node.BlockNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(16), number)

		addr, err := s.Delegate.Address(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, addr.Hex())

		return testError
	})

	assert.Equal(t, testError, resultErr)
}

func TestNewSubcommandGroup(t *testing.T) {
	sub := command.NewSubcommandGroup("child")
	group := command.NewSubcommandGroup("parent", sub)

	assert.Equal(t, "parent", group.Use)
	require.Len(t, group.Commands(), 1)
	assert.Equal(t, "child", group.Commands()[0].Use)
}

func TestPromptPasswordKeepsConfigured(t *testing.T) {
	cfg := test.Config("http://127.0.0.1:1")
	cfg.Delegate.Password = "configured"

	require.NoError(t, command.PromptPassword(&cfg))
	assert.Equal(t, "configured", cfg.Delegate.Password)
}

func TestWithServerRejectsInvalidConfig(t *testing.T) {
	n := test.NewFakeNode(t, 8453)
	cfg := test.Config(n.Server.URL)
	cfg.Confirm.PollInterval = 0

	called := false
	err := command.WithServer(t.Context(), cfg, func(context.Context, *api.Server) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.False(t, called)
}
