package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/you/rentauthsvc/domain"
)

// AuthServiceImpl implements domain.AuthService: the state machine composing
// credential checks, lockout, MFA and token issuance.
type AuthServiceImpl struct {
	userRepo      domain.UserRepository
	passwordSvc   domain.PasswordService
	tokenSvc      domain.TokenService
	mfaSvc        domain.MfaService
	mailer        domain.Mailer
	lockout       *LockoutPolicy
	clock         domain.Clock
	resetTokenTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	mfaSvc domain.MfaService,
	mailer domain.Mailer,
	lockout *LockoutPolicy,
	clock domain.Clock,
	resetTokenTTL time.Duration,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		passwordSvc:   passwordSvc,
		tokenSvc:      tokenSvc,
		mfaSvc:        mfaSvc,
		mailer:        mailer,
		lockout:       lockout,
		clock:         clock,
		resetTokenTTL: resetTokenTTL,
	}
}

// Register implements domain.AuthService. Registration implies login: tokens
// are issued immediately, with the email still unverified.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, firstName, lastName, role string) (*domain.AuthResult, error) {
	email = strings.ToLower(email)

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verificationToken, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	if role == "" {
		role = "user"
	}

	user := &domain.User{
		Email:             email,
		PasswordHash:      hashedPassword,
		FirstName:         firstName,
		LastName:          lastName,
		Role:              role,
		IsActive:          true,
		EmailVerified:     false,
		VerificationToken: verificationToken,
		FailedAttempts:    0,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Best effort: a mail outage must not fail registration.
	if err := s.mailer.SendVerificationEmail(user.Email, verificationToken); err != nil {
		log.Printf("auth: verification email for %s failed: %v", user.ID, err)
	}

	return s.issueTokens(ctx, user)
}

// Login implements domain.AuthService. When the user has an active TOTP
// device, a correct password yields only an mfa-pending token; access and
// refresh tokens require CompleteMfaLogin.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	wasLocked := user.LockedUntil != nil
	if remaining, locked := s.lockout.CheckLocked(user); locked {
		return nil, &domain.AccountLockedError{RetryAfter: remaining}
	}
	if wasLocked {
		// Lock elapsed; persist the lazy clear.
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to clear lockout: %w", err)
		}
	}

	// A wallet-only account has no password to check.
	if user.PasswordHash == "" || !s.passwordSvc.Verify(user.PasswordHash, password) {
		s.lockout.RecordFailure(user)
		// Persist before denying so attempt counts survive a crash.
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}
		return nil, domain.ErrInvalidCredentials
	}

	s.lockout.RecordSuccess(user)
	now := s.clock.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login success: %w", err)
	}

	mfaEnabled, err := s.mfaSvc.IsEnabled(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check mfa state: %w", err)
	}
	if mfaEnabled {
		mfaToken, err := s.tokenSvc.Issue(user.ID, user.Email, user.Role, domain.TokenKindMfaPending)
		if err != nil {
			return nil, fmt.Errorf("failed to issue mfa token: %w", err)
		}
		return &domain.AuthResult{
			User:        user,
			MfaRequired: true,
			MfaToken:    mfaToken,
		}, nil
	}

	return s.issueTokens(ctx, user)
}

// CompleteMfaLogin implements domain.AuthService
func (s *AuthServiceImpl) CompleteMfaLogin(ctx context.Context, mfaToken, code string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.Verify(mfaToken, domain.TokenKindMfaPending)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	ok, err := s.mfaSvc.VerifyCode(ctx, user.ID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to verify mfa code: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidMfaCode
	}

	return s.issueTokens(ctx, user)
}

// Refresh implements domain.AuthService. Rotation is serialized per user by
// the SwapRefreshHash compare-and-swap: of two concurrent refreshes with the
// same token, exactly one succeeds and the other gets ErrTokenInvalid.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.Verify(refreshToken, domain.TokenKindRefresh)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	if user.RefreshTokenHash == "" {
		return nil, domain.ErrTokenInvalid
	}

	if !s.passwordSvc.Verify(user.RefreshTokenHash, refreshFingerprint(refreshToken)) {
		return nil, domain.ErrTokenInvalid
	}

	accessToken, err := s.tokenSvc.Issue(user.ID, user.Email, user.Role, domain.TokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	newRefreshToken, err := s.tokenSvc.Issue(user.ID, user.Email, user.Role, domain.TokenKindRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	newHash, err := s.passwordSvc.Hash(refreshFingerprint(newRefreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	swapped, err := s.userRepo.SwapRefreshHash(ctx, user.ID, user.RefreshTokenHash, newHash)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !swapped {
		// A concurrent refresh won the race; this token is spent.
		return nil, domain.ErrTokenInvalid
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.tokenSvc.AccessTTL().Seconds()),
	}, nil
}

// Logout implements domain.AuthService. Clearing the stored hash revokes the
// active refresh token.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID string) error {
	return s.userRepo.SetRefreshHash(ctx, userID, "")
}

// ForgotPassword implements domain.AuthService. The outcome is identical
// whether or not the email exists, so accounts cannot be enumerated.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Printf("auth: password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up email: %w", err)
	}

	resetToken, err := generateSecureToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expires := s.clock.Now().Add(s.resetTokenTTL)
	user.ResetTokenHash = hashToken(resetToken)
	user.ResetTokenExpires = &expires
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, resetToken); err != nil {
		log.Printf("auth: reset email for %s failed: %v", user.ID, err)
	}
	return nil
}

// ResetPassword implements domain.AuthService. A successful reset is proof
// of ownership, so it clears any lockout penalty as well.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.userRepo.FindByResetTokenHash(ctx, hashToken(token))
	if err != nil {
		return domain.ErrTokenInvalid
	}
	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(s.clock.Now()) {
		return domain.ErrTokenInvalid
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hashedPassword
	user.ResetTokenHash = ""
	user.ResetTokenExpires = nil
	user.FailedAttempts = 0
	user.LockedUntil = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to save new password: %w", err)
	}
	return nil
}

// VerifyEmail implements domain.AuthService
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenInvalid
	}
	user, err := s.userRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		return domain.ErrTokenInvalid
	}

	user.EmailVerified = true
	user.VerificationToken = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// ValidateUser implements domain.AuthService
func (s *AuthServiceImpl) ValidateUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	return user, nil
}

func (s *AuthServiceImpl) issueTokens(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	return issueSessionTokens(ctx, s.userRepo, s.passwordSvc, s.tokenSvc, user)
}

// issueSessionTokens mints an access/refresh pair and persists the refresh
// hash as the single active session for the user. Shared by the password and
// wallet login flows.
func issueSessionTokens(ctx context.Context, userRepo domain.UserRepository, passwordSvc domain.PasswordService, tokenSvc domain.TokenService, user *domain.User) (*domain.AuthResult, error) {
	accessToken, err := tokenSvc.Issue(user.ID, user.Email, user.Role, domain.TokenKindAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := tokenSvc.Issue(user.ID, user.Email, user.Role, domain.TokenKindRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	refreshHash, err := passwordSvc.Hash(refreshFingerprint(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}
	if err := userRepo.SetRefreshHash(ctx, user.ID, refreshHash); err != nil {
		return nil, fmt.Errorf("failed to store refresh hash: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(tokenSvc.AccessTTL().Seconds()),
	}, nil
}

// refreshFingerprint reduces a JWT to a fixed-size digest before bcrypt,
// which rejects inputs over 72 bytes.
func refreshFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// hashToken is the fast one-way hash for reset tokens: the token itself is
// already 256 bits of entropy, so an adaptive hash buys nothing here.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateSecureToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
