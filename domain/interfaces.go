package domain

import (
	"context"
	"time"
)

// UserRepository defines credential data access operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByWalletAddress(ctx context.Context, address string) (*User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, user *User) error
	// SetRefreshHash overwrites the stored refresh-token hash unconditionally
	// (login, logout). An empty hash revokes the active session.
	SetRefreshHash(ctx context.Context, userID, hash string) error
	// SwapRefreshHash replaces the stored refresh-token hash only if it still
	// equals oldHash. Returns false when a concurrent rotation won the race.
	SwapRefreshHash(ctx context.Context, userID, oldHash, newHash string) (bool, error)
}

// MfaDeviceRepository defines MFA device data access operations.
type MfaDeviceRepository interface {
	Create(ctx context.Context, device *MfaDevice) error
	FindActive(ctx context.Context, userID string, deviceType MfaDeviceType) (*MfaDevice, error)
	Update(ctx context.Context, device *MfaDevice) error
	DisableAll(ctx context.Context, userID string) error
}

// ChallengeStore defines the single-use wallet challenge store. Consume must
// atomically fetch and delete so a challenge can never be redeemed twice,
// even by concurrent verification attempts.
type ChallengeStore interface {
	Put(ctx context.Context, challenge *Challenge, ttl time.Duration) error
	Consume(ctx context.Context, id string) (*Challenge, error)
}

// PasswordService defines the adaptive one-way hash used for passwords,
// stored refresh tokens and backup codes.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService issues and verifies kind-tagged signed tokens. Verify fails
// closed: wrong kind, bad signature and expiry all map to ErrTokenInvalid.
type TokenService interface {
	Issue(userID, email, role string, kind TokenKind) (string, error)
	Verify(token string, kind TokenKind) (*TokenClaims, error)
	AccessTTL() time.Duration
}

// MfaService defines second-factor operations.
type MfaService interface {
	Enable(ctx context.Context, userID, accountName, deviceName string) (*MfaEnrollment, error)
	IsEnabled(ctx context.Context, userID string) (bool, error)
	VerifyTotp(ctx context.Context, userID, code string) (bool, error)
	VerifyBackupCode(ctx context.Context, userID, code string) (bool, error)
	// VerifyCode accepts either a TOTP code or an unused backup code.
	VerifyCode(ctx context.Context, userID, code string) (bool, error)
	RegenerateBackupCodes(ctx context.Context, userID string) ([]string, error)
	Disable(ctx context.Context, userID, code string) error
}

// AuthService defines the top-level authentication orchestration.
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName, role string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	CompleteMfaLogin(ctx context.Context, mfaToken, code string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ValidateUser(ctx context.Context, userID string) (*User, error)
}

// StellarAuthService defines the wallet challenge-response flow.
type StellarAuthService interface {
	GenerateChallenge(ctx context.Context, walletAddress string) (*ChallengeResponse, error)
	VerifySignature(ctx context.Context, walletAddress, challenge, signature string) (*AuthResult, error)
}

// Mailer delivers auth-related emails. Failures are logged, never fatal to
// the auth decision.
type Mailer interface {
	SendVerificationEmail(to, token string) error
	SendPasswordResetEmail(to, token string) error
}

// Clock is an injectable time source so expiry and lockout logic is testable.
type Clock interface {
	Now() time.Time
}

// SecretCipher encrypts TOTP secrets at rest.
type SecretCipher interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}
