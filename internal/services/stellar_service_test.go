package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stellar/go/keypair"

	"github.com/you/rentauthsvc/domain"
	"github.com/you/rentauthsvc/internal/mocks"
)

func newTestStellarService(userRepo *mocks.MockUserRepository, store *mocks.MockChallengeStore, clock *mocks.FakeClock) domain.StellarAuthService {
	return NewStellarAuthService(
		userRepo,
		store,
		mocks.NewMockPasswordService(),
		mocks.NewMockTokenService(),
		clock,
		5*time.Minute,
	)
}

func signChallenge(t *testing.T, kp *keypair.Full, challenge string) string {
	t.Helper()
	sig, err := kp.Sign([]byte(challenge))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return base64.StdEncoding.EncodeToString(sig)
}

// corruptLastChar keeps the strkey shape but guarantees a checksum failure.
func corruptLastChar(address string) string {
	last := address[len(address)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	return address[:len(address)-1] + string(replacement)
}

func TestStellarAuthServiceImpl_GenerateChallenge(t *testing.T) {
	kp := keypair.MustRandom()
	clock := testClock()
	store := mocks.NewMockChallengeStore()

	svc := newTestStellarService(mocks.NewMockUserRepository(), store, clock)
	resp, err := svc.GenerateChallenge(context.Background(), kp.Address())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Challenge == "" {
		t.Error("expected a challenge payload")
	}
	if !resp.ExpiresAt.Equal(clock.Now().Add(5 * time.Minute)) {
		t.Errorf("unexpected expiry %v", resp.ExpiresAt)
	}

	t.Run("malformed address", func(t *testing.T) {
		for _, addr := range []string{
			"",
			"not-an-address",
			"XBADPREFIXAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
			kp.Address()[:40],
			// Right shape, broken checksum.
			corruptLastChar(kp.Address()),
		} {
			if _, err := svc.GenerateChallenge(context.Background(), addr); !errors.Is(err, domain.ErrMalformedWalletAddress) {
				t.Errorf("address %q: expected ErrMalformedWalletAddress, got %v", addr, err)
			}
		}
	})
}

func TestStellarAuthServiceImpl_VerifySignature(t *testing.T) {
	kp := keypair.MustRandom()
	ctx := context.Background()

	setup := func(t *testing.T) (domain.StellarAuthService, *mocks.MockUserRepository, *mocks.FakeClock, string) {
		clock := testClock()
		store := mocks.NewMockChallengeStore()
		userRepo := mocks.NewMockUserRepository()
		svc := newTestStellarService(userRepo, store, clock)

		resp, err := svc.GenerateChallenge(ctx, kp.Address())
		if err != nil {
			t.Fatalf("challenge: %v", err)
		}
		return svc, userRepo, clock, resp.Challenge
	}

	t.Run("first login provisions a wallet-only account", func(t *testing.T) {
		svc, userRepo, _, challenge := setup(t)

		var created *domain.User
		userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
			user.ID = "wallet-user-1"
			created = user
			return nil
		}

		result, err := svc.VerifySignature(ctx, kp.Address(), challenge, signChallenge(t, kp, challenge))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil {
			t.Fatal("expected a user to be provisioned")
		}
		if created.WalletAddress != kp.Address() {
			t.Errorf("expected wallet address stored, got %q", created.WalletAddress)
		}
		if created.PasswordHash != "" {
			t.Error("wallet-only account must have no password hash")
		}
		if created.Role != "user" {
			t.Errorf("expected role user, got %s", created.Role)
		}
		if result.AccessToken == "" || result.RefreshToken == "" {
			t.Error("expected a full token pair")
		}
	})

	t.Run("existing wallet account is reused", func(t *testing.T) {
		svc, userRepo, clock, challenge := setup(t)

		existing := &domain.User{ID: "wallet-user-1", WalletAddress: kp.Address(), Role: "user", IsActive: true}
		userRepo.FindByWalletAddressFunc = func(ctx context.Context, address string) (*domain.User, error) {
			return existing, nil
		}
		userRepo.CreateFunc = func(ctx context.Context, user *domain.User) error {
			t.Error("must not create a second account for a known wallet")
			return nil
		}

		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, signChallenge(t, kp, challenge)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if existing.LastLoginAt == nil || !existing.LastLoginAt.Equal(clock.Now()) {
			t.Error("expected last login stamped")
		}
	})

	t.Run("challenge is single use", func(t *testing.T) {
		svc, _, _, challenge := setup(t)
		sig := signChallenge(t, kp, challenge)

		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, sig); err != nil {
			t.Fatalf("first verify: %v", err)
		}
		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, sig); !errors.Is(err, domain.ErrInvalidChallenge) {
			t.Fatalf("replay: expected ErrInvalidChallenge, got %v", err)
		}
	})

	t.Run("failed attempt still consumes the challenge", func(t *testing.T) {
		svc, _, _, challenge := setup(t)
		other := keypair.MustRandom()

		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, signChallenge(t, other, challenge)); !errors.Is(err, domain.ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge for wrong signer, got %v", err)
		}
		// A correct retry needs a fresh challenge.
		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, signChallenge(t, kp, challenge)); !errors.Is(err, domain.ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge after consumption, got %v", err)
		}
	})

	t.Run("expired challenge", func(t *testing.T) {
		svc, _, clock, challenge := setup(t)
		clock.Advance(6 * time.Minute)

		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, signChallenge(t, kp, challenge)); !errors.Is(err, domain.ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge for expired challenge, got %v", err)
		}
	})

	t.Run("address mismatch", func(t *testing.T) {
		svc, _, _, challenge := setup(t)
		other := keypair.MustRandom()

		if _, err := svc.VerifySignature(ctx, other.Address(), challenge, signChallenge(t, other, challenge)); !errors.Is(err, domain.ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge for address mismatch, got %v", err)
		}
	})

	t.Run("garbage signature encoding", func(t *testing.T) {
		svc, _, _, challenge := setup(t)

		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, "%%%not-base64%%%"); !errors.Is(err, domain.ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge for bad encoding, got %v", err)
		}
	})

	t.Run("unknown challenge", func(t *testing.T) {
		svc, _, _, _ := setup(t)

		if _, err := svc.VerifySignature(ctx, kp.Address(), "never-issued", signChallenge(t, kp, "never-issued")); !errors.Is(err, domain.ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge, got %v", err)
		}
	})

	t.Run("inactive wallet account", func(t *testing.T) {
		svc, userRepo, _, challenge := setup(t)
		userRepo.FindByWalletAddressFunc = func(ctx context.Context, address string) (*domain.User, error) {
			return &domain.User{ID: "wallet-user-1", WalletAddress: kp.Address(), IsActive: false}, nil
		}

		if _, err := svc.VerifySignature(ctx, kp.Address(), challenge, signChallenge(t, kp, challenge)); !errors.Is(err, domain.ErrAccountInactive) {
			t.Fatalf("expected ErrAccountInactive, got %v", err)
		}
	})
}
