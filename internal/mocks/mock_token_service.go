package mocks

import (
	"strings"
	"time"

	"github.com/you/rentauthsvc/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens encode their claims as "kind|userID|email|role" so Verify
// can round-trip them without signing.
type MockTokenService struct {
	IssueFunc     func(userID, email, role string, kind domain.TokenKind) (string, error)
	VerifyFunc    func(token string, kind domain.TokenKind) (*domain.TokenClaims, error)
	AccessTTLFunc func() time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Issue issues a token of the given kind
func (m *MockTokenService) Issue(userID, email, role string, kind domain.TokenKind) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(userID, email, role, kind)
	}
	return strings.Join([]string{string(kind), userID, email, role}, "|"), nil
}

// Verify verifies a token of the expected kind
func (m *MockTokenService) Verify(token string, kind domain.TokenKind) (*domain.TokenClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token, kind)
	}
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != string(kind) {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{
		UserID: parts[1],
		Email:  parts[2],
		Role:   parts[3],
		Kind:   domain.TokenKind(parts[0]),
	}, nil
}

// AccessTTL reports the configured access token lifetime
func (m *MockTokenService) AccessTTL() time.Duration {
	if m.AccessTTLFunc != nil {
		return m.AccessTTLFunc()
	}
	return 15 * time.Minute
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
