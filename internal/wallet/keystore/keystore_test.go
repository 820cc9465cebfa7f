package keystore_test

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-trader/internal/wallet/keystore"
)

func TestEncryptDecrypt(t *testing.T) {
	ctx := t.Context()
	svc := keystore.NewService(keystore.LightScryptParams())
	secret := bytes.Repeat([]byte{0x42}, 64)

	ks, err := svc.Encrypt(ctx, secret, "correct horse")
	require.NoError(t, err)

	assert.Equal(t, 3, ks.Version)
	assert.NotEmpty(t, ks.ID)
	assert.Equal(t, "scrypt", ks.Crypto.KDF)
	assert.Equal(t, "aes-128-ctr", ks.Crypto.Cipher)
	assert.Equal(t, 4096, ks.Crypto.KDFParams.N)

	plain, err := svc.Decrypt(ctx, ks, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, secret, plain)

	_, err = svc.Decrypt(ctx, ks, "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, keystore.ErrInvalidPassword))
}

func TestEncryptRejectsEmptySecret(t *testing.T) {
	_, err := keystore.NewService(keystore.LightScryptParams()).Encrypt(t.Context(), nil, "pw")
	assert.Error(t, err)
}

func TestDecryptRejectsCorruptKeystore(t *testing.T) {
	ctx := t.Context()
	svc := keystore.NewService(keystore.LightScryptParams())

	ks, err := svc.Encrypt(ctx, []byte("seed"), "pw")
	require.NoError(t, err)

	tooShort := *ks
	tooShort.Crypto.KDFParams.DKLen = 8
	_, err = svc.Decrypt(ctx, &tooShort, "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, keystore.ErrInvalidPassword))

	badHex := *ks
	badHex.Crypto.MAC = "zz"
	_, err = svc.Decrypt(ctx, &badHex, "pw")
	require.Error(t, err)

	tampered := *ks
	tampered.Crypto.Ciphertext = "00" + ks.Crypto.Ciphertext[2:]
	if tampered.Crypto.Ciphertext == ks.Crypto.Ciphertext {
		tampered.Crypto.Ciphertext = "11" + ks.Crypto.Ciphertext[2:]
	}
	_, err = svc.Decrypt(ctx, &tampered, "pw")
	assert.True(t, errors.Is(err, keystore.ErrInvalidPassword))
}
