// Package security protects the embedded Google service-account credentials
// used by the company registry. Credentials are stored scrypt+AES-GCM
// encrypted inside the binary and decrypted only on demand.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// EncryptionConfig defines the key-derivation and cipher parameters.
type EncryptionConfig struct {
	SCryptN      int // CPU/memory cost
	SCryptR      int // block size
	SCryptP      int // parallelization
	SCryptKeyLen int // 32 for AES-256
	NonceSize    int // 12 for GCM
}

// DefaultEncryptionConfig returns the production parameters.
func DefaultEncryptionConfig() *EncryptionConfig {
	return &EncryptionConfig{
		SCryptN:      32768,
		SCryptR:      8,
		SCryptP:      1,
		SCryptKeyLen: 32,
		NonceSize:    12,
	}
}

// EncryptedPayload is the serialized encrypted credential blob.
type EncryptedPayload struct {
	Version    uint8  `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// payloadVersion is the only format currently understood.
const payloadVersion = 1

// ErrWrongPassphrase is returned when GCM authentication fails.
var ErrWrongPassphrase = errors.New("credential decryption failed: wrong passphrase or corrupted payload")

// Encrypt seals plaintext under a passphrase. Used by the build tooling that
// embeds the credentials; the running service only decrypts.
func Encrypt(cfg *EncryptionConfig, plaintext, passphrase []byte) (*EncryptedPayload, error) {
	if cfg == nil {
		cfg = DefaultEncryptionConfig()
	}
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := newGCM(cfg, passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return &EncryptedPayload{
		Version:    payloadVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Decrypt opens a payload with the passphrase.
func Decrypt(cfg *EncryptionConfig, payload *EncryptedPayload, passphrase []byte) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultEncryptionConfig()
	}
	if payload == nil {
		return nil, errors.New("nil payload")
	}
	if payload.Version != payloadVersion {
		return nil, fmt.Errorf("unsupported payload version %d", payload.Version)
	}
	gcm, err := newGCM(cfg, passphrase, payload.Salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, payload.Nonce, payload.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

func newGCM(cfg *EncryptionConfig, passphrase, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(passphrase, salt, cfg.SCryptN, cfg.SCryptR, cfg.SCryptP, cfg.SCryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init failed: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, cfg.NonceSize)
	if err != nil {
		return nil, fmt.Errorf("GCM init failed: %w", err)
	}
	return gcm, nil
}
