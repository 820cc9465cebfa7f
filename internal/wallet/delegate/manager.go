package delegate

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/util"
	"github/chapool/go-trader/internal/wallet/keystore"
)

// ErrLocked is returned by operations that need the in-memory key before Unlock.
var ErrLocked = errors.New("delegate key is locked")

// Manager owns the single delegate key of this installation.
// The seed never leaves the encrypted keystore, only the derived key is held in memory.
type Manager struct {
	store    Store
	keystore keystore.Service

	mu  sync.RWMutex
	key *Key
}

func NewManager(store Store, keystoreService keystore.Service) *Manager {
	return &Manager{
		store:    store,
		keystore: keystoreService,
	}
}

// Unlock loads the delegate key, creating and persisting a new one on first use.
// The same password always yields the same delegate address.
func (m *Manager) Unlock(ctx context.Context, password string) (common.Address, error) {
	log := util.LogFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key != nil {
		return m.key.Address(), nil
	}

	ks, stored, err := m.store.LoadKeystore(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		key, err := m.create(ctx, password)
		if err != nil {
			return common.Address{}, err
		}
		m.key = key

		log.Info().Str("delegate", key.Address().Hex()).Msg("Created new delegate key")

		return key.Address(), nil
	case err != nil:
		return common.Address{}, errors.Wrap(err, "failed to load delegate keystore")
	}

	seed, err := m.keystore.Decrypt(ctx, ks, password)
	if err != nil {
		return common.Address{}, err
	}
	defer clear(seed)

	key, err := DeriveKey(seed, DerivationPath)
	if err != nil {
		return common.Address{}, err
	}

	if key.Address() != stored {
		key.Zero()
		return common.Address{}, errors.Errorf("derived delegate %s does not match stored %s", key.Address().Hex(), stored.Hex())
	}

	m.key = key

	log.Debug().Str("delegate", key.Address().Hex()).Msg("Unlocked delegate key")

	return key.Address(), nil
}

func (m *Manager) create(ctx context.Context, password string) (*Key, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	key, err := DeriveKey(seed, DerivationPath)
	if err != nil {
		return nil, err
	}

	ks, err := m.keystore.Encrypt(ctx, seed, password)
	if err != nil {
		key.Zero()
		return nil, err
	}
	ks.Address = key.Address().Hex()

	if err := m.store.SaveKeystore(ctx, key.Address(), ks); err != nil {
		key.Zero()
		return nil, errors.Wrap(err, "failed to save delegate keystore")
	}

	return key, nil
}

// Lease returns the unlocked delegate key. The key is not zeroed by Logout before release
// is called, release may be called more than once.
func (m *Manager) Lease() (*Key, func(), error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.key == nil {
		return nil, nil, ErrLocked
	}

	key := m.key
	key.leases.Add(1)

	var once sync.Once

	return key, func() { once.Do(key.leases.Done) }, nil
}

func (m *Manager) IsUnlocked() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.key != nil
}

// Address returns the delegate address, reading it from the store while locked.
func (m *Manager) Address(ctx context.Context) (common.Address, error) {
	m.mu.RLock()
	key := m.key
	m.mu.RUnlock()

	if key != nil {
		return key.Address(), nil
	}

	_, stored, err := m.store.LoadKeystore(ctx)
	if err != nil {
		return common.Address{}, err
	}

	return stored, nil
}

// IsDelegated reports whether the chain authorization of the delegate account has executed.
func (m *Manager) IsDelegated(ctx context.Context) (bool, error) {
	addr, err := m.Address(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return m.store.IsDelegated(ctx, addr)
}

func (m *Manager) MarkDelegated(ctx context.Context) error {
	addr, err := m.Address(ctx)
	if err != nil {
		return err
	}

	return m.store.SetDelegated(ctx, addr)
}

func (m *Manager) IsSetupComplete(ctx context.Context, trader common.Address) (bool, error) {
	addr, err := m.Address(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return m.store.IsSetupComplete(ctx, trader, addr)
}

// SetSetupComplete persists whether trader finished the one-time setup for this delegate.
// Reconciliation against chain state may reset it to false.
func (m *Manager) SetSetupComplete(ctx context.Context, trader common.Address, complete bool) error {
	addr, err := m.Address(ctx)
	if err != nil {
		return err
	}

	return m.store.SetSetupComplete(ctx, trader, addr, complete)
}

// Logout detaches the key and deletes all persisted delegate state. The detached key is
// zeroed once every lease is released; Logout waits for that until ctx ends.
// The next Unlock creates a different delegate.
func (m *Manager) Logout(ctx context.Context) error {
	log := util.LogFromContext(ctx)

	m.mu.Lock()
	key := m.key
	m.key = nil
	clearErr := m.store.Clear(ctx)
	m.mu.Unlock()

	if key != nil {
		zeroed := make(chan struct{})
		go func() {
			key.leases.Wait()
			key.Zero()
			close(zeroed)
		}()

		select {
		case <-zeroed:
		case <-ctx.Done():
			log.Warn().Msg("Delegate key still in use, it is zeroed once signing finishes")
		}
	}

	if clearErr != nil {
		return errors.Wrap(clearErr, "failed to clear delegate store")
	}

	log.Info().Msg("Delegate key removed")

	return nil
}
