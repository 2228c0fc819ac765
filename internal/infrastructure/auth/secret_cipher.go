package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"github.com/you/rentauthsvc/domain"
)

// AESCipher implements domain.SecretCipher with AES-256-GCM. TOTP secrets
// are stored encrypted so a database dump alone cannot mint valid codes.
type AESCipher struct {
	gcm cipher.AEAD
}

// NewAESCipher creates a cipher from a 32 byte key. Shorter keys would
// silently select AES-128/192, so they are rejected outright.
func NewAESCipher(key string) (domain.SecretCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("encryption key must be exactly 32 bytes")
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESCipher{gcm: gcm}, nil
}

// Encrypt implements domain.SecretCipher. The nonce is prepended to the
// ciphertext and the whole blob is base64 encoded for text-column storage.
func (c *AESCipher) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt implements domain.SecretCipher
func (c *AESCipher) Decrypt(ciphertext string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, err
	}
	if len(raw) < c.gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:c.gcm.NonceSize()], raw[c.gcm.NonceSize():]
	return c.gcm.Open(nil, nonce, sealed, nil)
}
