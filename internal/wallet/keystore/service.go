package keystore

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/util"
)

// Service encrypts and decrypts secrets in Ethereum keystore v3 format
type Service interface {
	// Encrypt encrypts secret with password
	Encrypt(ctx context.Context, secret []byte, password string) (*KeystoreJSON, error)

	// Decrypt decrypts the secret, returns ErrInvalidPassword on a MAC mismatch
	Decrypt(ctx context.Context, keystore *KeystoreJSON, password string) ([]byte, error)
}

type service struct {
	params *ScryptParams
}

// NewService creates a new KeystoreService, nil params means DefaultScryptParams
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(params *ScryptParams) Service {
	if params == nil {
		params = DefaultScryptParams()
	}

	return &service{
		params: params,
	}
}

// Encrypt encrypts secret with password
func (s *service) Encrypt(ctx context.Context, secret []byte, password string) (*KeystoreJSON, error) {
	log := util.LogFromContext(ctx)

	if len(secret) == 0 {
		return nil, errors.New("secret is empty")
	}

	keystoreJSON, err := seal(secret, password, *s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt secret")
		return nil, errors.Wrap(err, "failed to encrypt secret")
	}

	return keystoreJSON, nil
}

// Decrypt decrypts the secret
func (s *service) Decrypt(ctx context.Context, keystore *KeystoreJSON, password string) ([]byte, error) {
	log := util.LogFromContext(ctx)

	if keystore == nil {
		return nil, errors.New("keystore is nil")
	}

	secret, err := open(keystore, password)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to decrypt secret")
		return nil, errors.Wrap(err, "failed to decrypt secret")
	}

	return secret, nil
}
