package delegate

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-trader/internal/wallet/keystore"
)

type setupKey struct {
	trader   common.Address
	delegate common.Address
}

// MemoryStore is a process local Store.
type MemoryStore struct {
	mu        sync.RWMutex
	keystore  *keystore.KeystoreJSON
	address   common.Address
	delegated map[common.Address]bool
	setup     map[setupKey]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		delegated: make(map[common.Address]bool),
		setup:     make(map[setupKey]bool),
	}
}

func (s *MemoryStore) LoadKeystore(_ context.Context) (*keystore.KeystoreJSON, common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.keystore == nil {
		return nil, common.Address{}, ErrNotFound
	}

	ks := *s.keystore
	return &ks, s.address, nil
}

func (s *MemoryStore) SaveKeystore(_ context.Context, address common.Address, ks *keystore.KeystoreJSON) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *ks
	s.keystore = &stored
	s.address = address

	return nil
}

func (s *MemoryStore) IsDelegated(_ context.Context, delegate common.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.delegated[delegate], nil
}

func (s *MemoryStore) SetDelegated(_ context.Context, delegate common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delegated[delegate] = true
	return nil
}

func (s *MemoryStore) IsSetupComplete(_ context.Context, trader, delegate common.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.setup[setupKey{trader: trader, delegate: delegate}], nil
}

func (s *MemoryStore) SetSetupComplete(_ context.Context, trader, delegate common.Address, complete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup[setupKey{trader: trader, delegate: delegate}] = complete
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keystore = nil
	s.address = common.Address{}
	s.delegated = make(map[common.Address]bool)
	s.setup = make(map[setupKey]bool)

	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
