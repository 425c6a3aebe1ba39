package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := "ya29.a0AfH6SMBx-access-token"

	ciphertext, err := Encrypt([]byte(plaintext), testKey)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, plaintext)

	decrypted, err := Decrypt(ciphertext, testKey)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	a, err := Encrypt([]byte("same input"), testKey)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same input"), testKey)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "a fresh nonce per call means no repeated ciphertext")
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	ciphertext, err := Encrypt([]byte("secret"), testKey)
	require.NoError(t, err)

	tampered := []byte(ciphertext)
	tampered[len(tampered)-1] ^= 'x'

	_, err = Decrypt(string(tampered), testKey)
	assert.Error(t, err)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	ciphertext, err := Encrypt([]byte("secret"), testKey)
	require.NoError(t, err)

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	_, err = Decrypt(ciphertext, otherKey)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := Decrypt("not base64 at all!!!", testKey)
	assert.Error(t, err)
}
