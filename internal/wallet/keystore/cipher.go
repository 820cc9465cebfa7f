package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	keystoreVersion = 3
	kdfScrypt       = "scrypt"
	cipherAESCTR    = "aes-128-ctr"

	saltLength = 32
	ivLength   = aes.BlockSize
	// scrypt output is split into the AES key and the MAC key
	minDKLen = 32
)

// derivedKeys is the scrypt output split into its AES-128 and MAC halves.
type derivedKeys struct {
	enc []byte
	mac []byte
}

func derive(password string, salt []byte, p ScryptParams) (*derivedKeys, error) {
	if p.DKLen < minDKLen || p.N <= 1 || p.R <= 0 || p.P <= 0 {
		return nil, errors.Errorf("invalid scrypt parameters n=%d r=%d p=%d dklen=%d", p.N, p.R, p.P, p.DKLen)
	}

	dk, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	return &derivedKeys{enc: dk[:16], mac: dk[16:32]}, nil
}

// checksum is the v3 MAC: keccak256(macKey ‖ ciphertext).
func (k *derivedKeys) checksum(ciphertext []byte) []byte {
	return crypto.Keccak256(k.mac, ciphertext)
}

// xorCTR runs AES-128-CTR over in. Encryption and decryption are the same operation.
func (k *derivedKeys) xorCTR(iv, in []byte) ([]byte, error) {
	if len(iv) != ivLength {
		return nil, errors.Errorf("iv must be %d bytes, got %d", ivLength, len(iv))
	}

	block, err := aes.NewCipher(k.enc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)

	return out, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "failed to read randomness")
	}

	return b, nil
}

// seal encrypts secret into a fresh keystore with a random salt and iv.
func seal(secret []byte, password string, p ScryptParams) (*KeystoreJSON, error) {
	salt, err := randomBytes(saltLength)
	if err != nil {
		return nil, err
	}

	iv, err := randomBytes(ivLength)
	if err != nil {
		return nil, err
	}

	keys, err := derive(password, salt, p)
	if err != nil {
		return nil, err
	}

	ciphertext, err := keys.xorCTR(iv, secret)
	if err != nil {
		return nil, err
	}

	ks := &KeystoreJSON{
		Version: keystoreVersion,
		ID:      uuid.NewString(),
		Crypto: CryptoJSON{
			Cipher:       cipherAESCTR,
			CipherParams: CipherParams{IV: hex.EncodeToString(iv)},
			Ciphertext:   hex.EncodeToString(ciphertext),
			KDF:          kdfScrypt,
			KDFParams:    KDFParams{ScryptParams: p, Salt: hex.EncodeToString(salt)},
			MAC:          hex.EncodeToString(keys.checksum(ciphertext)),
		},
	}

	return ks, nil
}

// open verifies the MAC and decrypts the secret of ks.
func open(ks *KeystoreJSON, password string) ([]byte, error) {
	if ks.Version != keystoreVersion {
		return nil, errors.Errorf("unsupported keystore version %d", ks.Version)
	}
	if ks.Crypto.KDF != kdfScrypt || ks.Crypto.Cipher != cipherAESCTR {
		return nil, errors.Errorf("unsupported keystore: kdf=%s cipher=%s", ks.Crypto.KDF, ks.Crypto.Cipher)
	}

	fields := map[string]string{
		"salt":       ks.Crypto.KDFParams.Salt,
		"iv":         ks.Crypto.CipherParams.IV,
		"ciphertext": ks.Crypto.Ciphertext,
		"mac":        ks.Crypto.MAC,
	}
	raw := make(map[string][]byte, len(fields))
	for name, value := range fields {
		b, err := hex.DecodeString(value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", name)
		}
		raw[name] = b
	}

	keys, err := derive(password, raw["salt"], ks.Crypto.KDFParams.ScryptParams)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare(keys.checksum(raw["ciphertext"]), raw["mac"]) != 1 {
		return nil, ErrInvalidPassword
	}

	return keys.xorCTR(raw["iv"], raw["ciphertext"])
}
