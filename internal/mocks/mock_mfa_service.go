package mocks

import (
	"context"

	"github.com/you/rentauthsvc/domain"
)

// MockMfaService implements domain.MfaService interface for testing
type MockMfaService struct {
	EnableFunc                func(ctx context.Context, userID, accountName, deviceName string) (*domain.MfaEnrollment, error)
	IsEnabledFunc             func(ctx context.Context, userID string) (bool, error)
	VerifyTotpFunc            func(ctx context.Context, userID, code string) (bool, error)
	VerifyBackupCodeFunc      func(ctx context.Context, userID, code string) (bool, error)
	VerifyCodeFunc            func(ctx context.Context, userID, code string) (bool, error)
	RegenerateBackupCodesFunc func(ctx context.Context, userID string) ([]string, error)
	DisableFunc               func(ctx context.Context, userID, code string) error
}

// NewMockMfaService creates a new MockMfaService with default behaviors
func NewMockMfaService() *MockMfaService {
	return &MockMfaService{}
}

// Enable starts TOTP enrollment
func (m *MockMfaService) Enable(ctx context.Context, userID, accountName, deviceName string) (*domain.MfaEnrollment, error) {
	if m.EnableFunc != nil {
		return m.EnableFunc(ctx, userID, accountName, deviceName)
	}
	return &domain.MfaEnrollment{
		Secret:          "JBSWY3DPEHPK3PXP",
		ProvisioningURI: "otpauth://totp/test",
		BackupCodes:     []string{"AAAAA-AAAAA"},
	}, nil
}

// IsEnabled reports whether MFA is enabled
func (m *MockMfaService) IsEnabled(ctx context.Context, userID string) (bool, error) {
	if m.IsEnabledFunc != nil {
		return m.IsEnabledFunc(ctx, userID)
	}
	// Default behavior: MFA off
	return false, nil
}

// VerifyTotp checks a TOTP code
func (m *MockMfaService) VerifyTotp(ctx context.Context, userID, code string) (bool, error) {
	if m.VerifyTotpFunc != nil {
		return m.VerifyTotpFunc(ctx, userID, code)
	}
	return false, nil
}

// VerifyBackupCode checks and consumes a backup code
func (m *MockMfaService) VerifyBackupCode(ctx context.Context, userID, code string) (bool, error) {
	if m.VerifyBackupCodeFunc != nil {
		return m.VerifyBackupCodeFunc(ctx, userID, code)
	}
	return false, nil
}

// VerifyCode accepts a TOTP or backup code
func (m *MockMfaService) VerifyCode(ctx context.Context, userID, code string) (bool, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, userID, code)
	}
	return false, nil
}

// RegenerateBackupCodes replaces all backup codes
func (m *MockMfaService) RegenerateBackupCodes(ctx context.Context, userID string) ([]string, error) {
	if m.RegenerateBackupCodesFunc != nil {
		return m.RegenerateBackupCodesFunc(ctx, userID)
	}
	return []string{"BBBBB-BBBBB"}, nil
}

// Disable turns MFA off
func (m *MockMfaService) Disable(ctx context.Context, userID, code string) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, userID, code)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.MfaService = (*MockMfaService)(nil)
