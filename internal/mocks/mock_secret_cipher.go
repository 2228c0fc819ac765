package mocks

import (
	"encoding/base64"

	"github.com/you/rentauthsvc/domain"
)

// MockSecretCipher implements domain.SecretCipher interface for testing.
// The default behavior is plain base64, reversible and deterministic.
type MockSecretCipher struct {
	EncryptFunc func(plaintext []byte) (string, error)
	DecryptFunc func(ciphertext string) ([]byte, error)
}

// NewMockSecretCipher creates a new MockSecretCipher with default behaviors
func NewMockSecretCipher() *MockSecretCipher {
	return &MockSecretCipher{}
}

// Encrypt encodes the plaintext
func (m *MockSecretCipher) Encrypt(plaintext []byte) (string, error) {
	if m.EncryptFunc != nil {
		return m.EncryptFunc(plaintext)
	}
	return base64.StdEncoding.EncodeToString(plaintext), nil
}

// Decrypt decodes the ciphertext
func (m *MockSecretCipher) Decrypt(ciphertext string) ([]byte, error) {
	if m.DecryptFunc != nil {
		return m.DecryptFunc(ciphertext)
	}
	return base64.StdEncoding.DecodeString(ciphertext)
}

// Compile-time interface compliance verification
var _ domain.SecretCipher = (*MockSecretCipher)(nil)
