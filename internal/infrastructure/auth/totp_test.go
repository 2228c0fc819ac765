package auth

import (
	"strings"
	"testing"
	"time"
)

// Reference vectors from RFC 6238, appendix B (SHA-1 rows, truncated from 8
// to 6 digits).
func TestTOTP_ReferenceVectors(t *testing.T) {
	secret := []byte("12345678901234567890")
	m := NewTOTPManager(TOTPConfig{Issuer: "RentPay", Skew: 0})

	tests := []struct {
		unix int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
		{20000000000, "353130"},
	}

	for _, tt := range tests {
		ok, err := m.VerifyCode(secret, tt.code, time.Unix(tt.unix, 0))
		if err != nil {
			t.Fatalf("t=%d: %v", tt.unix, err)
		}
		if !ok {
			t.Errorf("t=%d: expected code %s accepted", tt.unix, tt.code)
		}
	}
}

func TestTOTPManager_VerifyCode_Skew(t *testing.T) {
	secret := []byte("12345678901234567890")
	m := NewTOTPManager(TOTPConfig{Issuer: "RentPay", Skew: 1})

	// 59s is inside the first step; its code must still verify one step later.
	if ok, _ := m.VerifyCode(secret, "287082", time.Unix(89, 0)); !ok {
		t.Error("expected previous-step code within skew")
	}
	// Two steps later it is out of the window.
	if ok, _ := m.VerifyCode(secret, "287082", time.Unix(149, 0)); ok {
		t.Error("expected code two steps old to be rejected")
	}
}

func TestTOTPManager_VerifyCode_Malformed(t *testing.T) {
	secret := []byte("12345678901234567890")
	m := NewTOTPManager(TOTPConfig{Issuer: "RentPay"})
	now := time.Unix(59, 0)

	for _, code := range []string{"", "12345", "1234567", "28708a", "287 82"} {
		if ok, err := m.VerifyCode(secret, code, now); ok || err != nil {
			t.Errorf("code %q: expected clean rejection, got %v %v", code, ok, err)
		}
	}

	if _, err := m.VerifyCode(nil, "287082", now); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestTOTPManager_GenerateSecret(t *testing.T) {
	m := NewTOTPManager(TOTPConfig{Issuer: "RentPay"})

	raw, encoded, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(raw) != totpSecretBytes {
		t.Errorf("expected %d secret bytes, got %d", totpSecretBytes, len(raw))
	}
	if strings.Contains(encoded, "=") {
		t.Error("provisioning secret must be unpadded base32")
	}

	_, other, _ := m.GenerateSecret()
	if encoded == other {
		t.Error("secrets must be unique")
	}
}

func TestTOTPManager_ProvisionURI(t *testing.T) {
	m := NewTOTPManager(TOTPConfig{Issuer: "RentPay"})
	uri := m.ProvisionURI("JBSWY3DPEHPK3PXP", "tenant@example.com")

	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Errorf("unexpected scheme in %s", uri)
	}
	for _, part := range []string{"secret=JBSWY3DPEHPK3PXP", "issuer=RentPay", "period=30", "digits=6", "algorithm=SHA1"} {
		if !strings.Contains(uri, part) {
			t.Errorf("expected %s in %s", part, uri)
		}
	}
}
