//go:build wireinject

package api

import (
	"context"

	"github.com/google/wire"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/metrics"
	"github/chapool/go-trader/internal/wallet/delegate"
	"github/chapool/go-trader/internal/wallet/node"
)

// serviceSet provides everything above the node client and the delegate store.
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewKeystore,
	NewDelegateManager,
	NewEncoder,
	NewChainRegistry,
	NewRelayer,
	NewRelayService,
	NewEventSource,
	NewTracker,
	NewLocalWallet,
	NewSetupService,
	NewPositions,
	NewEngine,
	metrics.New,
)

// InitNewServer dials the configured RPC node, opens the delegate store and builds the engine on top.
func InitNewServer(
	_ context.Context,
	_ config.Engine,
) (*Server, error) {
	wire.Build(serviceSet, NewNode, NewDelegateStore)
	return new(Server), nil
}

// InitNewServerWithNode builds the engine around an existing node client and delegate store.
func InitNewServerWithNode(
	_ context.Context,
	_ config.Engine,
	_ *node.Client,
	_ delegate.Store,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
