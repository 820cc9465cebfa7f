package delegate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

// DerivationPath is the BIP44 path of the delegate key below the installation seed.
const DerivationPath = "m/44'/60'/0'/0/0"

// NewSeed returns a fresh random BIP32 seed.
func NewSeed() ([]byte, error) {
	seed, err := bip32.NewSeed()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate seed")
	}

	return seed, nil
}

// DeriveKey derives the delegate key from seed at path
// WARNING: Caller must Zero the key after use
func DeriveKey(seed []byte, path string) (*Key, error) {
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	derivedKey, err := deriveKeyFromPath(masterKey, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key from path")
	}

	return KeyFromBytes(derivedKey.Key)
}

// deriveKeyFromPath derives a key from BIP44 path
func deriveKeyFromPath(masterKey *bip32.Key, path string) (*bip32.Key, error) {
	indices, err := parseBIP44Path(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse BIP44 path")
	}

	key := masterKey
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key, nil
}

// parseBIP44Path parses a BIP44 path string into indices
// Example: "m/44'/60'/0'/0/0" -> [2147483692, 2147483708, 2147483648, 0, 0]
func parseBIP44Path(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, fmt.Errorf("invalid BIP44 path: %s", path)
	}

	indices := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		offset := uint32(0)
		if strings.HasSuffix(part, "'") {
			offset = bip32.FirstHardenedChild
			part = strings.TrimSuffix(part, "'")
		}

		index, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid path segment: %s", part)
		}

		indices = append(indices, uint32(index)+offset)
	}

	return indices, nil
}
