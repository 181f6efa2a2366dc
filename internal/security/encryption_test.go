package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncryptDecryptRoundTrip seals and opens a payload with the same
// passphrase.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte(`{"type":"service_account","project_id":"mnav-pulse"}`)
	passphrase := []byte("correct horse battery staple")

	payload, err := Encrypt(nil, plaintext, passphrase)
	require.NoError(t, err)
	assert.Equal(t, uint8(payloadVersion), payload.Version)
	assert.Len(t, payload.Salt, 32)
	assert.Len(t, payload.Nonce, DefaultEncryptionConfig().NonceSize)
	assert.NotEqual(t, plaintext, payload.Ciphertext)

	opened, err := Decrypt(nil, payload, passphrase)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

// TestDecryptWrongPassphrase must fail authentication, not return garbage.
func TestDecryptWrongPassphrase(t *testing.T) {
	payload, err := Encrypt(nil, []byte("secret"), []byte("right"))
	require.NoError(t, err)

	_, err = Decrypt(nil, payload, []byte("wrong"))
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

// TestDecryptTamperedCiphertext verifies GCM integrity protection.
func TestDecryptTamperedCiphertext(t *testing.T) {
	payload, err := Encrypt(nil, []byte("secret"), []byte("pass"))
	require.NoError(t, err)
	payload.Ciphertext[0] ^= 0xFF

	_, err = Decrypt(nil, payload, []byte("pass"))
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

// TestDecryptUnsupportedVersion rejects unknown payload formats.
func TestDecryptUnsupportedVersion(t *testing.T) {
	payload, err := Encrypt(nil, []byte("secret"), []byte("pass"))
	require.NoError(t, err)
	payload.Version = 9

	_, err = Decrypt(nil, payload, []byte("pass"))
	assert.ErrorContains(t, err, "unsupported payload version")
}

// TestSaltUniqueness ensures each encryption derives a fresh salt and nonce.
func TestSaltUniqueness(t *testing.T) {
	a, err := Encrypt(nil, []byte("x"), []byte("p"))
	require.NoError(t, err)
	b, err := Encrypt(nil, []byte("x"), []byte("p"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}
