package mocks

import (
	"context"

	"github.com/you/rentauthsvc/domain"
)

// MockMfaDeviceRepository implements domain.MfaDeviceRepository interface for testing
type MockMfaDeviceRepository struct {
	CreateFunc     func(ctx context.Context, device *domain.MfaDevice) error
	FindActiveFunc func(ctx context.Context, userID string, deviceType domain.MfaDeviceType) (*domain.MfaDevice, error)
	UpdateFunc     func(ctx context.Context, device *domain.MfaDevice) error
	DisableAllFunc func(ctx context.Context, userID string) error
}

// NewMockMfaDeviceRepository creates a new MockMfaDeviceRepository with default behaviors
func NewMockMfaDeviceRepository() *MockMfaDeviceRepository {
	return &MockMfaDeviceRepository{}
}

// Create creates a new MFA device
func (m *MockMfaDeviceRepository) Create(ctx context.Context, device *domain.MfaDevice) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, device)
	}
	// Default behavior: success
	return nil
}

// FindActive finds the active device of a type for a user
func (m *MockMfaDeviceRepository) FindActive(ctx context.Context, userID string, deviceType domain.MfaDeviceType) (*domain.MfaDevice, error) {
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx, userID, deviceType)
	}
	// Default behavior: MFA not enabled
	return nil, domain.ErrMfaNotEnabled
}

// Update updates an existing MFA device
func (m *MockMfaDeviceRepository) Update(ctx context.Context, device *domain.MfaDevice) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, device)
	}
	// Default behavior: success
	return nil
}

// DisableAll disables every device for a user
func (m *MockMfaDeviceRepository) DisableAll(ctx context.Context, userID string) error {
	if m.DisableAllFunc != nil {
		return m.DisableAllFunc(ctx, userID)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.MfaDeviceRepository = (*MockMfaDeviceRepository)(nil)
