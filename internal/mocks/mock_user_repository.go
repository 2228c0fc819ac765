package mocks

import (
	"context"

	"github.com/you/rentauthsvc/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc                  func(ctx context.Context, user *domain.User) error
	FindByEmailFunc             func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc                func(ctx context.Context, id string) (*domain.User, error)
	FindByWalletAddressFunc     func(ctx context.Context, address string) (*domain.User, error)
	FindByResetTokenHashFunc    func(ctx context.Context, hash string) (*domain.User, error)
	FindByVerificationTokenFunc func(ctx context.Context, token string) (*domain.User, error)
	UpdateFunc                  func(ctx context.Context, user *domain.User) error
	SetRefreshHashFunc          func(ctx context.Context, userID, hash string) error
	SwapRefreshHashFunc         func(ctx context.Context, userID, oldHash, newHash string) (bool, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success
	if user.ID == "" {
		user.ID = "user-1"
	}
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByWalletAddress finds a user by Stellar wallet address
func (m *MockUserRepository) FindByWalletAddress(ctx context.Context, address string) (*domain.User, error) {
	if m.FindByWalletAddressFunc != nil {
		return m.FindByWalletAddressFunc(ctx, address)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByResetTokenHash finds a user by hashed reset token
func (m *MockUserRepository) FindByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	if m.FindByResetTokenHashFunc != nil {
		return m.FindByResetTokenHashFunc(ctx, hash)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByVerificationToken finds a user by email verification token
func (m *MockUserRepository) FindByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if m.FindByVerificationTokenFunc != nil {
		return m.FindByVerificationTokenFunc(ctx, token)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// Update updates an existing user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

// SetRefreshHash overwrites the stored refresh-token hash
func (m *MockUserRepository) SetRefreshHash(ctx context.Context, userID, hash string) error {
	if m.SetRefreshHashFunc != nil {
		return m.SetRefreshHashFunc(ctx, userID, hash)
	}
	// Default behavior: success
	return nil
}

// SwapRefreshHash conditionally replaces the stored refresh-token hash
func (m *MockUserRepository) SwapRefreshHash(ctx context.Context, userID, oldHash, newHash string) (bool, error) {
	if m.SwapRefreshHashFunc != nil {
		return m.SwapRefreshHashFunc(ctx, userID, oldHash, newHash)
	}
	// Default behavior: swap succeeds
	return true, nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
