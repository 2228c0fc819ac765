package mocks

import (
	"context"

	"github.com/you/rentauthsvc/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	RegisterFunc         func(ctx context.Context, email, password, firstName, lastName, role string) (*domain.AuthResult, error)
	LoginFunc            func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	CompleteMfaLoginFunc func(ctx context.Context, mfaToken, code string) (*domain.AuthResult, error)
	RefreshFunc          func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	LogoutFunc           func(ctx context.Context, userID string) error
	ForgotPasswordFunc   func(ctx context.Context, email string) error
	ResetPasswordFunc    func(ctx context.Context, token, newPassword string) error
	VerifyEmailFunc      func(ctx context.Context, token string) error
	ValidateUserFunc     func(ctx context.Context, userID string) (*domain.User, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func defaultAuthResult() *domain.AuthResult {
	return &domain.AuthResult{
		User:         &domain.User{ID: "user-1", Email: "test@example.com", Role: "user", IsActive: true},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
	}
}

// Register registers a new user
func (m *MockAuthService) Register(ctx context.Context, email, password, firstName, lastName, role string) (*domain.AuthResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, firstName, lastName, role)
	}
	return defaultAuthResult(), nil
}

// Login performs the first authentication step
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return defaultAuthResult(), nil
}

// CompleteMfaLogin performs the second authentication step
func (m *MockAuthService) CompleteMfaLogin(ctx context.Context, mfaToken, code string) (*domain.AuthResult, error) {
	if m.CompleteMfaLoginFunc != nil {
		return m.CompleteMfaLoginFunc(ctx, mfaToken, code)
	}
	return defaultAuthResult(), nil
}

// Refresh rotates the refresh token
func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return defaultAuthResult(), nil
}

// Logout revokes the active session
func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	return nil
}

// ForgotPassword starts a password reset
func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

// ResetPassword completes a password reset
func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, newPassword)
	}
	return nil
}

// VerifyEmail marks an email verified
func (m *MockAuthService) VerifyEmail(ctx context.Context, token string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil
}

// ValidateUser loads an active user by ID
func (m *MockAuthService) ValidateUser(ctx context.Context, userID string) (*domain.User, error) {
	if m.ValidateUserFunc != nil {
		return m.ValidateUserFunc(ctx, userID)
	}
	return &domain.User{ID: userID, Email: "test@example.com", Role: "user", IsActive: true}, nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
