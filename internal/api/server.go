package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/metrics"
	"github/chapool/go-trader/internal/trade"
	"github/chapool/go-trader/internal/trade/confirm"
	"github/chapool/go-trader/internal/trade/encoder"
	"github/chapool/go-trader/internal/trade/positions"
	"github/chapool/go-trader/internal/trade/relay"
	"github/chapool/go-trader/internal/trade/setup"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/chain"
	"github/chapool/go-trader/internal/wallet/delegate"
	"github/chapool/go-trader/internal/wallet/node"
)

type Router struct {
	Routes        []*echo.Route
	Root          *echo.Group
	Management    *echo.Group
	APIV1Trade    *echo.Group
	APIV1Trades   *echo.Group
	APIV1Delegate *echo.Group
}

// Server holds the trading engine and everything it depends on. All fields except Echo and
// Router are built by wire from providers.go; a new component needs a field here, a provider
// and an entry in the wire.Build set of wire.go. Fields tagged `wire:"-"` are set by router.Init.
type Server struct {
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config    config.Engine
	Node      *node.Client
	Store     delegate.Store
	Delegate  *delegate.Manager
	Encoder   *encoder.Encoder
	Chains    *chain.Registry
	Relay     *relay.Service
	Tracker   *confirm.Tracker
	Setup     *setup.Service
	Positions *positions.Service
	Engine    *trade.Engine
	Metrics   *metrics.Service
}

// newServerWithComponents is the wire provider for Server.
func newServerWithComponents(
	cfg config.Engine,
	nodeClient *node.Client,
	store delegate.Store,
	manager *delegate.Manager,
	enc *encoder.Encoder,
	chains *chain.Registry,
	relays *relay.Service,
	tracker *confirm.Tracker,
	setupService *setup.Service,
	positionsService *positions.Service,
	engine *trade.Engine,
	m *metrics.Service,
) *Server {
	return &Server{
		Config:    cfg,
		Node:      nodeClient,
		Store:     store,
		Delegate:  manager,
		Encoder:   enc,
		Chains:    chains,
		Relay:     relays,
		Tracker:   tracker,
		Setup:     setupService,
		Positions: positionsService,
		Engine:    engine,
		Metrics:   m,
	}
}

// Ready reports whether every component is set.
func (s *Server) Ready() bool {
	if err := util.IsStructInitialized(s); err != nil {
		log.Debug().Err(err).Msg("Trading server is missing components")
		return false
	}

	return true
}

// Start serves the HTTP API until Shutdown. It fails fast if a component is missing.
func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("trading server is not fully initialized")
	}

	log.Info().Str("address", s.Config.Echo.ListenAddress).Int64("chain_id", s.Config.Chain.ChainID).Msg("Starting trading API")

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("echo server stopped: %w", err)
	}

	return nil
}

// Shutdown stops the HTTP API first so no new trade starts, then cancels the pending
// confirmation session and releases the store and node connections.
func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Stopping trading server")

	steps := []struct {
		name string
		run  func() error
	}{
		{"http api", func() error {
			if s.Echo == nil {
				return nil
			}
			if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}},
		{"confirmation tracker", func() error {
			if s.Tracker != nil {
				s.Tracker.Cancel()
			}
			return nil
		}},
		{"delegate store", func() error {
			if s.Store == nil {
				return nil
			}
			return s.Store.Close()
		}},
		{"node client", func() error {
			if s.Node != nil {
				s.Node.Close()
			}
			return nil
		}},
	}

	var errs []error
	for _, step := range steps {
		log.Debug().Str("component", step.name).Msg("Stopping")
		if err := step.run(); err != nil {
			log.Error().Err(err).Str("component", step.name).Msg("Failed to stop component")
			errs = append(errs, err)
		}
	}

	return errs
}
