package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/rentauthsvc/domain"
	"github.com/you/rentauthsvc/internal/mocks"
)

type stubStellarService struct {
	generateFunc func(ctx context.Context, walletAddress string) (*domain.ChallengeResponse, error)
	verifyFunc   func(ctx context.Context, walletAddress, challenge, signature string) (*domain.AuthResult, error)
}

func (s *stubStellarService) GenerateChallenge(ctx context.Context, walletAddress string) (*domain.ChallengeResponse, error) {
	return s.generateFunc(ctx, walletAddress)
}

func (s *stubStellarService) VerifySignature(ctx context.Context, walletAddress, challenge, signature string) (*domain.AuthResult, error) {
	return s.verifyFunc(ctx, walletAddress, challenge, signature)
}

func newStellarTestRouter(svc domain.StellarAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authH := NewAuthHandlers(mocks.NewMockAuthService(), 3600, false)
	h := NewStellarHandlers(svc, authH.SetRefreshCookie)

	r := gin.New()
	r.POST("/auth/stellar/challenge", h.Challenge)
	r.POST("/auth/stellar/verify", h.Verify)
	return r
}

func TestStellarHandlers_Challenge(t *testing.T) {
	t.Run("issues a challenge", func(t *testing.T) {
		svc := &stubStellarService{
			generateFunc: func(ctx context.Context, walletAddress string) (*domain.ChallengeResponse, error) {
				return &domain.ChallengeResponse{
					Challenge: "rentpay-auth:" + walletAddress + ":nonce:1750000000",
					ExpiresAt: time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
				}, nil
			},
		}
		w := doJSON(newStellarTestRouter(svc), http.MethodPost, "/auth/stellar/challenge", `{"wallet_address":"GVALID"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "rentpay-auth:GVALID") {
			t.Errorf("expected challenge payload, got %s", w.Body.String())
		}
	})

	t.Run("malformed address", func(t *testing.T) {
		svc := &stubStellarService{
			generateFunc: func(ctx context.Context, walletAddress string) (*domain.ChallengeResponse, error) {
				return nil, domain.ErrMalformedWalletAddress
			},
		}
		w := doJSON(newStellarTestRouter(svc), http.MethodPost, "/auth/stellar/challenge", `{"wallet_address":"bogus"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestStellarHandlers_Verify(t *testing.T) {
	t.Run("success issues a session with the shared cookie", func(t *testing.T) {
		svc := &stubStellarService{
			verifyFunc: func(ctx context.Context, walletAddress, challenge, signature string) (*domain.AuthResult, error) {
				return &domain.AuthResult{
					User:         &domain.User{ID: "wallet-user-1", WalletAddress: walletAddress, Role: "user"},
					AccessToken:  "wallet-access",
					RefreshToken: "wallet-refresh",
					ExpiresIn:    900,
				}, nil
			},
		}
		w := doJSON(newStellarTestRouter(svc), http.MethodPost, "/auth/stellar/verify",
			`{"wallet_address":"GVALID","challenge":"payload","signature":"c2ln"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		cookie := refreshCookieFrom(t, w)
		if cookie == nil || cookie.Value != "wallet-refresh" {
			t.Error("expected the refresh cookie from the wallet flow")
		}
		if cookie != nil && cookie.Path != "/auth" {
			t.Errorf("wallet cookie must share the auth scope, got %q", cookie.Path)
		}
		if !strings.Contains(w.Body.String(), "wallet-access") {
			t.Error("expected the access token in the body")
		}
	})

	t.Run("invalid challenge", func(t *testing.T) {
		svc := &stubStellarService{
			verifyFunc: func(ctx context.Context, walletAddress, challenge, signature string) (*domain.AuthResult, error) {
				return nil, domain.ErrInvalidChallenge
			},
		}
		w := doJSON(newStellarTestRouter(svc), http.MethodPost, "/auth/stellar/verify",
			`{"wallet_address":"GVALID","challenge":"payload","signature":"c2ln"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := &stubStellarService{}
		w := doJSON(newStellarTestRouter(svc), http.MethodPost, "/auth/stellar/verify", `{"wallet_address":"GVALID"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
