package delegate

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/wallet/keystore"
)

// ErrNotFound is returned when no delegate keystore has been created yet.
var ErrNotFound = errors.New("delegate keystore not found")

// Store persists the encrypted delegate key and the flags derived from on-chain actions.
// The delegated flag is only ever set, the single exception is Clear on logout. The setup flag
// follows chain state on reconciliation.
type Store interface {
	// LoadKeystore returns the stored keystore and the delegate address it belongs to.
	LoadKeystore(ctx context.Context) (*keystore.KeystoreJSON, common.Address, error)
	SaveKeystore(ctx context.Context, address common.Address, ks *keystore.KeystoreJSON) error

	// IsDelegated reports whether the one-time chain authorization for delegate was executed.
	IsDelegated(ctx context.Context, delegate common.Address) (bool, error)
	SetDelegated(ctx context.Context, delegate common.Address) error

	IsSetupComplete(ctx context.Context, trader, delegate common.Address) (bool, error)
	SetSetupComplete(ctx context.Context, trader, delegate common.Address, complete bool) error

	// Clear removes the keystore and all flags.
	Clear(ctx context.Context) error
	Close() error
}
