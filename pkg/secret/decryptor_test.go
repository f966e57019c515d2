package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seal(t *testing.T, key []byte, plaintext string) string {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(gcm.Seal(nonce, nonce, []byte(plaintext), nil))
}

func TestAesGcmDecryptor_RoundTrip(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	d, err := NewAesGcmDecryptor(key)
	require.NoError(t, err)

	plain, err := d.Decrypt(seal(t, key, "s3cret-api-token"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret-api-token", plain)
}

func TestAesGcmDecryptor_Failures(t *testing.T) {
	key := make([]byte, 32)
	d, err := NewAesGcmDecryptor(key)
	require.NoError(t, err)

	_, err = d.Decrypt("%%% not base64 %%%")
	assert.Error(t, err)

	_, err = d.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorContains(t, err, "truncated")

	otherKey := make([]byte, 32)
	otherKey[0] = 1
	_, err = d.Decrypt(seal(t, otherKey, "s3cret"))
	assert.ErrorContains(t, err, "unable to decrypt")

	_, err = NewAesGcmDecryptor(make([]byte, 16))
	assert.Error(t, err)
}
