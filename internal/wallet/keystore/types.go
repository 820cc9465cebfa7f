package keystore

import "github.com/pkg/errors"

// ErrInvalidPassword is returned when the keystore MAC does not match.
var ErrInvalidPassword = errors.New("invalid password: MAC mismatch")

// ScryptParams are the scrypt cost parameters. They are stored as-is in the kdfparams section.
type ScryptParams struct {
	DKLen int `json:"dklen"`
	N     int `json:"n"`
	R     int `json:"r"`
	P     int `json:"p"`
}

// DefaultScryptParams are geth's "standard" parameters (N=2^18).
func DefaultScryptParams() *ScryptParams {
	return &ScryptParams{DKLen: minDKLen, N: 1 << 18, R: 8, P: 1}
}

// LightScryptParams trades KDF strength for speed (geth's "light" parameters).
func LightScryptParams() *ScryptParams {
	return &ScryptParams{DKLen: minDKLen, N: 1 << 12, R: 8, P: 6}
}

type KDFParams struct {
	ScryptParams
	Salt string `json:"salt"`
}

type CipherParams struct {
	IV string `json:"iv"`
}

// CryptoJSON is the crypto section of a v3 keystore, all byte fields hex encoded.
type CryptoJSON struct {
	Cipher       string       `json:"cipher"`
	CipherParams CipherParams `json:"cipherparams"`
	Ciphertext   string       `json:"ciphertext"`
	KDF          string       `json:"kdf"`
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"`
}

// KeystoreJSON is a Web3 Secret Storage v3 document. The delegate store persists it verbatim.
//
//nolint:revive
type KeystoreJSON struct {
	Version int        `json:"version"`
	ID      string     `json:"id"`
	Address string     `json:"address,omitempty"`
	Crypto  CryptoJSON `json:"crypto"`
}
