package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/util"
)

type component struct{}

type holder struct {
	Ready   *component
	Skipped *component `wire:"-"`
	Names   []string
}

func TestIsStructInitialized(t *testing.T) {
	h := &holder{Ready: &component{}, Names: []string{"a"}}
	require.NoError(t, util.IsStructInitialized(h))

	h.Ready = nil
	err := util.IsStructInitialized(h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ready")

	assert.Error(t, util.IsStructInitialized(42))
}
