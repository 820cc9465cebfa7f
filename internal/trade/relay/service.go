package relay

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/util"
)

var (
	ErrUnknownProvider = errors.New("unknown relay provider")
	ErrNotConfigured   = errors.New("relay provider is not configured")
	ErrNoProvider      = errors.New("no relay provider selected")
)

// backendProvider is a Provider driving one Backend through the shared Relayer.
type backendProvider struct {
	name    string
	relayer *Relayer
	backend Backend
}

// NewProvider returns a Provider named name relaying through backend.
//
//nolint:ireturn
func NewProvider(name string, relayer *Relayer, backend Backend) Provider {
	return &backendProvider{name: name, relayer: relayer, backend: backend}
}

func (p *backendProvider) Name() string {
	return p.name
}

func (p *backendProvider) IsConfigured() bool {
	return p.backend != nil && p.backend.IsConfigured()
}

func (p *backendProvider) RelayTrade(ctx context.Context, params TradeParams) (*Result, error) {
	if !p.IsConfigured() {
		return nil, errors.Wrap(ErrNotConfigured, p.name)
	}

	return p.relayer.Relay(ctx, p.name, p.backend, params)
}

func (p *backendProvider) Status() ProviderStatus {
	return ProviderStatus{Name: p.name, Configured: p.IsConfigured()}
}

// Service is the registry of relay providers with one current provider.
type Service struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	current   string
}

func NewService() *Service {
	return &Service{providers: make(map[string]Provider)}
}

// Register adds p. The first configured provider becomes current.
func (s *Service) Register(p Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[p.Name()]; ok {
		return errors.Errorf("relay provider %q already registered", p.Name())
	}

	s.providers[p.Name()] = p
	s.order = append(s.order, p.Name())

	if s.current == "" && p.IsConfigured() {
		s.current = p.Name()
	}

	return nil
}

// Use switches to the named provider if it is configured.
func (s *Service) Use(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.providers[name]
	if !ok {
		return errors.Wrap(ErrUnknownProvider, name)
	}
	if !p.IsConfigured() {
		return errors.Wrap(ErrNotConfigured, name)
	}

	if s.current != name {
		util.LogFromContext(ctx).Info().Str("from", s.current).Str("to", name).Msg("Switched relay provider")
	}
	s.current = name

	return nil
}

//nolint:ireturn
func (s *Service) Current() (Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == "" {
		return nil, ErrNoProvider
	}

	return s.providers[s.current], nil
}

// RelayTrade relays through the current provider.
func (s *Service) RelayTrade(ctx context.Context, params TradeParams) (*Result, error) {
	p, err := s.Current()
	if err != nil {
		return nil, err
	}

	return p.RelayTrade(ctx, params)
}

// Providers lists registered providers in registration order.
func (s *Service) Providers() []ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(s.order))
	for _, name := range s.order {
		status := s.providers[name].Status()
		status.Current = name == s.current
		statuses = append(statuses, status)
	}

	return statuses
}
