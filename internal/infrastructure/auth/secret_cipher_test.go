package auth

import (
	"strings"
	"testing"
)

const testCipherKey = "0123456789abcdef0123456789abcdef"

func TestAESCipher_RoundTrip(t *testing.T) {
	c, err := NewAESCipher(testCipherKey)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	plaintext := []byte("totp secret bytes")
	encrypted, err := c.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if strings.Contains(encrypted, string(plaintext)) {
		t.Error("ciphertext leaks plaintext")
	}

	decrypted, err := c.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("round trip mismatch: %q", decrypted)
	}
}

func TestAESCipher_NonDeterministic(t *testing.T) {
	c, err := NewAESCipher(testCipherKey)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	a, _ := c.Encrypt([]byte("same"))
	b, _ := c.Encrypt([]byte("same"))
	if a == b {
		t.Error("encrypting twice must produce different ciphertexts")
	}
}

func TestAESCipher_RejectsTampering(t *testing.T) {
	c, err := NewAESCipher(testCipherKey)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	if _, err := c.Decrypt("not base64 %%%"); err == nil {
		t.Error("expected error for invalid encoding")
	}
	if _, err := c.Decrypt("c2hvcnQ="); err == nil {
		t.Error("expected error for truncated blob")
	}

	encrypted, _ := c.Encrypt([]byte("payload"))
	tampered := encrypted[:len(encrypted)-4] + "AAA="
	if _, err := c.Decrypt(tampered); err == nil {
		t.Error("expected GCM to reject a tampered blob")
	}
}

func TestNewAESCipher_RejectsBadKey(t *testing.T) {
	// Only a 32 byte key gives AES-256; shorter AES key sizes are refused
	// rather than silently downgrading.
	for _, key := range []string{
		"",
		"too-short",
		"0123456789abcdef",         // 16 bytes
		"0123456789abcdef01234567", // 24 bytes
		testCipherKey + "x",        // 33 bytes
	} {
		if _, err := NewAESCipher(key); err == nil {
			t.Errorf("key of %d bytes: expected error", len(key))
		}
	}
}
