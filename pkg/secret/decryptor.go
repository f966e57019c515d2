package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
)

// Decryptor recovers a stored service credential.
type Decryptor interface {
	Decrypt(ciphertext string) (string, error)
}

// AesGcmDecryptor decrypts credentials sealed with AES-256-GCM, stored as
// base64(nonce || ciphertext).
type AesGcmDecryptor struct {
	key []byte
}

func NewAesGcmDecryptor(key []byte) (*AesGcmDecryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("credential key must be 32 bytes, got %d", len(key))
	}
	return &AesGcmDecryptor{key: key}, nil
}

func (d *AesGcmDecryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("credential is not valid base64: %w", err)
	}

	block, err := aes.NewCipher(d.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("credential ciphertext is truncated")
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("unable to decrypt credential: %w", err)
	}
	return string(plain), nil
}
