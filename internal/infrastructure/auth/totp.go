package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// totpSecretBytes is 20 bytes = 160 bits of entropy, the RFC 4226
// recommendation and the minimum this service accepts.
const totpSecretBytes = 20

// TOTPConfig controls code generation. Skew is the number of adjacent
// time steps accepted on either side of now; 1 tolerates ~±30s of clock
// drift. Widening it grows the replay window and is a security regression.
type TOTPConfig struct {
	Issuer string
	Period int
	Digits int
	Skew   int
}

// TOTPManager generates provisioning material and verifies codes per
// RFC 6238 (HMAC-SHA1, the algorithm authenticator apps implement).
type TOTPManager struct {
	config TOTPConfig
}

func NewTOTPManager(cfg TOTPConfig) *TOTPManager {
	if cfg.Period <= 0 {
		cfg.Period = 30
	}
	if cfg.Digits <= 0 {
		cfg.Digits = 6
	}
	if cfg.Skew < 0 {
		cfg.Skew = 1
	}
	return &TOTPManager{config: cfg}
}

// GenerateSecret returns a fresh random secret and its base32 form for
// provisioning.
func (m *TOTPManager) GenerateSecret() ([]byte, string, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", err
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return raw, enc.EncodeToString(raw), nil
}

// ProvisionURI builds the otpauth:// URI a QR generator renders for
// authenticator apps.
func (m *TOTPManager) ProvisionURI(secretBase32, account string) string {
	issuer := m.config.Issuer
	label := url.PathEscape(issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", secretBase32)
	v.Set("issuer", issuer)
	v.Set("period", strconv.Itoa(m.config.Period))
	v.Set("digits", strconv.Itoa(m.config.Digits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// VerifyCode checks code against the current window and Skew adjacent
// windows on each side, in constant time per candidate.
func (m *TOTPManager) VerifyCode(secret []byte, code string, now time.Time) (bool, error) {
	if len(code) != m.config.Digits || !isNumeric(code) {
		return false, nil
	}
	if len(secret) == 0 {
		return false, errors.New("empty totp secret")
	}

	baseCounter := now.Unix() / int64(m.config.Period)
	for step := -m.config.Skew; step <= m.config.Skew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		generated := hotpCode(secret, counter, m.config.Digits)
		if subtle.ConstantTimeCompare([]byte(generated), []byte(code)) == 1 {
			return true, nil
		}
	}

	return false, nil
}

func hotpCode(secret []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
