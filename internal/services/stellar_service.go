package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/stellar/go/keypair"

	"github.com/you/rentauthsvc/domain"
)

// stellarAddressPattern is the shape of an ed25519 public-key strkey: 'G'
// followed by 55 base32 characters. Checked before any stateful work.
var stellarAddressPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)

// StellarAuthServiceImpl implements domain.StellarAuthService: single-use,
// time-bounded wallet challenges verified against ed25519 signatures.
type StellarAuthServiceImpl struct {
	userRepo     domain.UserRepository
	store        domain.ChallengeStore
	passwordSvc  domain.PasswordService
	tokenSvc     domain.TokenService
	clock        domain.Clock
	challengeTTL time.Duration
}

// NewStellarAuthService creates a new Stellar auth service
func NewStellarAuthService(
	userRepo domain.UserRepository,
	store domain.ChallengeStore,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	clock domain.Clock,
	challengeTTL time.Duration,
) domain.StellarAuthService {
	return &StellarAuthServiceImpl{
		userRepo:     userRepo,
		store:        store,
		passwordSvc:  passwordSvc,
		tokenSvc:     tokenSvc,
		clock:        clock,
		challengeTTL: challengeTTL,
	}
}

// GenerateChallenge implements domain.StellarAuthService
func (s *StellarAuthServiceImpl) GenerateChallenge(ctx context.Context, walletAddress string) (*domain.ChallengeResponse, error) {
	if err := validateStellarAddress(walletAddress); err != nil {
		return nil, err
	}

	nonce := uuid.NewString()
	expiresAt := s.clock.Now().Add(s.challengeTTL)
	payload := buildChallengePayload(walletAddress, nonce, expiresAt)

	challenge := &domain.Challenge{
		ID:            challengeID(payload),
		WalletAddress: walletAddress,
		Nonce:         nonce,
		Payload:       payload,
		ExpiresAt:     expiresAt,
	}

	if err := s.store.Put(ctx, challenge, s.challengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return &domain.ChallengeResponse{
		Challenge: payload,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifySignature implements domain.StellarAuthService. The challenge is
// consumed on the first verification attempt that reaches it, pass or fail;
// a retry always needs a fresh challenge. Unknown, expired, consumed and
// badly signed challenges are indistinguishable to the caller.
func (s *StellarAuthServiceImpl) VerifySignature(ctx context.Context, walletAddress, challenge, signature string) (*domain.AuthResult, error) {
	if err := validateStellarAddress(walletAddress); err != nil {
		return nil, err
	}

	stored, err := s.store.Consume(ctx, challengeID(challenge))
	if err != nil {
		return nil, domain.ErrInvalidChallenge
	}

	if stored.WalletAddress != walletAddress {
		return nil, domain.ErrInvalidChallenge
	}
	if stored.ExpiresAt.Before(s.clock.Now()) {
		return nil, domain.ErrInvalidChallenge
	}

	kp, err := keypair.ParseAddress(walletAddress)
	if err != nil {
		return nil, domain.ErrInvalidChallenge
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return nil, domain.ErrInvalidChallenge
	}
	if err := kp.Verify([]byte(challenge), sig); err != nil {
		return nil, domain.ErrInvalidChallenge
	}

	user, err := s.findOrCreateWalletUser(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	now := s.clock.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to stamp wallet login: %w", err)
	}

	return issueSessionTokens(ctx, s.userRepo, s.passwordSvc, s.tokenSvc, user)
}

// findOrCreateWalletUser provisions a wallet-only credential (no password
// hash) on first login.
func (s *StellarAuthServiceImpl) findOrCreateWalletUser(ctx context.Context, walletAddress string) (*domain.User, error) {
	user, err := s.userRepo.FindByWalletAddress(ctx, walletAddress)
	if err == nil {
		return user, nil
	}
	if err != domain.ErrUserNotFound {
		return nil, fmt.Errorf("failed to look up wallet user: %w", err)
	}

	user = &domain.User{
		WalletAddress: walletAddress,
		Role:          "user",
		IsActive:      true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create wallet user: %w", err)
	}
	return user, nil
}

func validateStellarAddress(address string) error {
	if !stellarAddressPattern.MatchString(address) {
		return domain.ErrMalformedWalletAddress
	}
	// The regex covers shape; ParseAddress also checks the strkey checksum.
	if _, err := keypair.ParseAddress(address); err != nil {
		return domain.ErrMalformedWalletAddress
	}
	return nil
}

func buildChallengePayload(address, nonce string, expiresAt time.Time) string {
	return fmt.Sprintf("rentpay-auth:%s:%s:%d", address, nonce, expiresAt.Unix())
}

func challengeID(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
