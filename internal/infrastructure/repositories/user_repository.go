package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/rentauthsvc/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for a credential record. Email and
// WalletAddress are pointers so wallet-only and password-only accounts can
// coexist under partial-null unique indexes.
type DBUser struct {
	ID                string     `gorm:"primaryKey;size:36"`
	Email             *string    `gorm:"uniqueIndex;size:255"`
	PasswordHash      string     `gorm:"column:password"`
	WalletAddress     *string    `gorm:"uniqueIndex;size:56"`
	FirstName         string     `gorm:"size:128"`
	LastName          string     `gorm:"size:128"`
	Role              string     `gorm:"index;size:64"`
	IsActive          bool       `gorm:"index"`
	EmailVerified     bool
	VerificationToken string     `gorm:"index;size:128"`
	ResetTokenHash    string     `gorm:"index;size:128"`
	ResetTokenExpires *time.Time
	FailedAttempts    int
	LockedUntil       *time.Time
	RefreshTokenHash  string
	LastLoginAt       *time.Time
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time `gorm:"index"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return err
	}
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByEmail implements domain.UserRepository. Lookup is case-insensitive.
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(email))
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByWalletAddress implements domain.UserRepository
func (r *UserRepositoryImpl) FindByWalletAddress(ctx context.Context, address string) (*domain.User, error) {
	return r.findOne(ctx, "wallet_address = ?", address)
}

// FindByResetTokenHash implements domain.UserRepository
func (r *UserRepositoryImpl) FindByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	return r.findOne(ctx, "reset_token_hash = ?", hash)
}

// FindByVerificationToken implements domain.UserRepository
func (r *UserRepositoryImpl) FindByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, "verification_token = ?", token)
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbUser).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	return r.db.WithContext(ctx).Save(dbUser).Error
}

// SetRefreshHash implements domain.UserRepository
func (r *UserRepositoryImpl) SetRefreshHash(ctx context.Context, userID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&DBUser{}).
		Where("id = ?", userID).
		Update("refresh_token_hash", hash).Error
}

// SwapRefreshHash implements domain.UserRepository. The conditional UPDATE is
// the compare-and-swap that serializes concurrent refresh rotations: only the
// request whose oldHash still matches the stored value succeeds.
func (r *UserRepositoryImpl) SwapRefreshHash(ctx context.Context, userID, oldHash, newHash string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&DBUser{}).
		Where("id = ? AND refresh_token_hash = ?", userID, oldHash).
		Update("refresh_token_hash", newHash)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	dbUser := &DBUser{
		ID:                user.ID,
		PasswordHash:      user.PasswordHash,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Role:              user.Role,
		IsActive:          user.IsActive,
		EmailVerified:     user.EmailVerified,
		VerificationToken: user.VerificationToken,
		ResetTokenHash:    user.ResetTokenHash,
		ResetTokenExpires: user.ResetTokenExpires,
		FailedAttempts:    user.FailedAttempts,
		LockedUntil:       user.LockedUntil,
		RefreshTokenHash:  user.RefreshTokenHash,
		LastLoginAt:       user.LastLoginAt,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
	if user.Email != "" {
		email := strings.ToLower(user.Email)
		dbUser.Email = &email
	}
	if user.WalletAddress != "" {
		addr := user.WalletAddress
		dbUser.WalletAddress = &addr
	}
	return dbUser
}

func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	user := &domain.User{
		ID:                dbUser.ID,
		PasswordHash:      dbUser.PasswordHash,
		FirstName:         dbUser.FirstName,
		LastName:          dbUser.LastName,
		Role:              dbUser.Role,
		IsActive:          dbUser.IsActive,
		EmailVerified:     dbUser.EmailVerified,
		VerificationToken: dbUser.VerificationToken,
		ResetTokenHash:    dbUser.ResetTokenHash,
		ResetTokenExpires: dbUser.ResetTokenExpires,
		FailedAttempts:    dbUser.FailedAttempts,
		LockedUntil:       dbUser.LockedUntil,
		RefreshTokenHash:  dbUser.RefreshTokenHash,
		LastLoginAt:       dbUser.LastLoginAt,
		CreatedAt:         dbUser.CreatedAt,
		UpdatedAt:         dbUser.UpdatedAt,
	}
	if dbUser.Email != nil {
		user.Email = *dbUser.Email
	}
	if dbUser.WalletAddress != nil {
		user.WalletAddress = *dbUser.WalletAddress
	}
	return user
}
