package domain

import "time"

// User represents a credential record. A wallet-only account has an empty
// PasswordHash and authenticates through the Stellar challenge flow.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	WalletAddress     string
	FirstName         string
	LastName          string
	Role              string
	IsActive          bool
	EmailVerified     bool
	VerificationToken string
	ResetTokenHash    string
	ResetTokenExpires *time.Time
	FailedAttempts    int
	LockedUntil       *time.Time
	RefreshTokenHash  string
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MfaDeviceType distinguishes TOTP devices from backup-code batches.
type MfaDeviceType string

const (
	MfaDeviceTotp       MfaDeviceType = "totp"
	MfaDeviceBackupCode MfaDeviceType = "backup_code"
)

// MfaDeviceStatus is the lifecycle state of an MFA device.
type MfaDeviceStatus string

const (
	MfaDeviceActive   MfaDeviceStatus = "active"
	MfaDeviceDisabled MfaDeviceStatus = "disabled"
)

// MfaDevice holds either an encrypted TOTP secret or a batch of hashed
// single-use backup codes. At most one TOTP device is active per user.
type MfaDevice struct {
	ID               string
	UserID           string
	Type             MfaDeviceType
	Status           MfaDeviceStatus
	DeviceName       string
	SecretEncrypted  string
	BackupCodeHashes []string
	LastUsedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Challenge is an ephemeral, single-use wallet login challenge. ID is the
// hex-encoded SHA-256 of the payload the client signs.
type Challenge struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Nonce         string    `json:"nonce"`
	Payload       string    `json:"payload"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ChallengeResponse is returned to the caller of the challenge endpoint.
type ChallengeResponse struct {
	Challenge string
	ExpiresAt time.Time
}

// TokenKind tags a JWT so access, refresh and mfa-pending tokens are never
// interchangeable.
type TokenKind string

const (
	TokenKindAccess     TokenKind = "access"
	TokenKindRefresh    TokenKind = "refresh"
	TokenKindMfaPending TokenKind = "mfa_required"
)

// TokenClaims represents decoded JWT claims.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	Kind      TokenKind
	IssuedAt  int64
	ExpiresAt int64
}

// AuthResult represents an authentication outcome. When MfaRequired is set,
// only MfaToken is populated and the caller must complete the MFA step.
type AuthResult struct {
	User         *User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	MfaRequired  bool
	MfaToken     string
}

// MfaEnrollment is returned on MFA enable: the shared secret for QR
// provisioning plus the one-time backup code batch, shown exactly once.
type MfaEnrollment struct {
	Secret          string
	ProvisioningURI string
	BackupCodes     []string
}
