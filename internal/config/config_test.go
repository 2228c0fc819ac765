package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
app:
  port: 8080
  gin_mode: test
  secure_cookies: true
database:
  dsn: "host=localhost user=auth dbname=auth"
redis:
  addr: "localhost:6379"
  db: 1
jwt:
  access_secret: file-access-secret
  refresh_secret: file-refresh-secret
  issuer: rentauthsvc
  access_ttl: 15m
  refresh_ttl: 168h
  mfa_pending_ttl: 5m
lockout:
  max_attempts: 5
  cooldown: 30m
mfa:
  issuer: RentPay
  encryption_key: 0123456789abcdef0123456789abcdef
  backup_code_count: 10
stellar:
  challenge_ttl: 5m
password:
  bcrypt_cost: "12"
  reset_token_ttl: 1h
smtp:
  host: smtp.example.com
  port: 587
  username: mailer
  from: noreply@example.com
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFrom(t *testing.T) {
	cfg, err := LoadFrom(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "test", cfg.GinMode)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 5*time.Minute, cfg.MfaPendingTTL)
	assert.Equal(t, 5, cfg.LockoutMaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.LockoutCooldown)
	assert.Equal(t, "RentPay", cfg.MFAIssuer)
	assert.Equal(t, 10, cfg.MFABackupCodeCount)
	assert.Equal(t, 5*time.Minute, cfg.ChallengeTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, "file-access-secret", cfg.JWTAccessSecret)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
}

func TestLoadFrom_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "env-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "env-refresh-secret")
	t.Setenv("DATABASE_DSN", "host=prod")
	t.Setenv("BCRYPT_COST", "10")

	cfg, err := LoadFrom(writeTestConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-access-secret", cfg.JWTAccessSecret)
	assert.Equal(t, "env-refresh-secret", cfg.JWTRefreshSecret)
	assert.Equal(t, "host=prod", cfg.DSN)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadFrom_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		broken := strings.Replace(testConfigYAML, "access_ttl: 15m", "access_ttl: fifteen", 1)
		_, err := LoadFrom(writeTestConfig(t, broken))
		assert.Error(t, err)
	})
}
