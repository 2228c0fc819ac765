package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/rentauthsvc/domain"
)

// MfaDeviceRepositoryImpl implements domain.MfaDeviceRepository using GORM
type MfaDeviceRepositoryImpl struct {
	db *gorm.DB
}

// DBMfaDevice represents the database model for an MFA device. BackupCodes
// is a JSON array of bcrypt hashes; a consumed code is removed from it.
type DBMfaDevice struct {
	ID          string `gorm:"primaryKey;size:36"`
	UserID      string `gorm:"index;size:36"`
	Type        string `gorm:"index;size:16"`
	Status      string `gorm:"index;size:16"`
	DeviceName  string `gorm:"size:128"`
	SecretKey   string `gorm:"size:512"`
	BackupCodes string `gorm:"type:text"`
	LastUsedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (DBMfaDevice) TableName() string {
	return "mfa_devices"
}

// NewMfaDeviceRepository creates a new MFA device repository
func NewMfaDeviceRepository(db *gorm.DB) domain.MfaDeviceRepository {
	return &MfaDeviceRepositoryImpl{db: db}
}

// Create implements domain.MfaDeviceRepository
func (r *MfaDeviceRepositoryImpl) Create(ctx context.Context, device *domain.MfaDevice) error {
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	dbDevice, err := r.domainToDB(device)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(dbDevice).Error
}

// FindActive implements domain.MfaDeviceRepository
func (r *MfaDeviceRepositoryImpl) FindActive(ctx context.Context, userID string, deviceType domain.MfaDeviceType) (*domain.MfaDevice, error) {
	var dbDevice DBMfaDevice
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND status = ?", userID, string(deviceType), string(domain.MfaDeviceActive)).
		First(&dbDevice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrMfaNotEnabled
		}
		return nil, err
	}
	return r.dbToDomain(&dbDevice)
}

// Update implements domain.MfaDeviceRepository
func (r *MfaDeviceRepositoryImpl) Update(ctx context.Context, device *domain.MfaDevice) error {
	dbDevice, err := r.domainToDB(device)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(dbDevice).Error
}

// DisableAll implements domain.MfaDeviceRepository. Devices are never
// deleted, only flipped to disabled, preserving the historical record.
func (r *MfaDeviceRepositoryImpl) DisableAll(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&DBMfaDevice{}).
		Where("user_id = ? AND status = ?", userID, string(domain.MfaDeviceActive)).
		Update("status", string(domain.MfaDeviceDisabled)).Error
}

func (r *MfaDeviceRepositoryImpl) domainToDB(device *domain.MfaDevice) (*DBMfaDevice, error) {
	codes := ""
	if device.BackupCodeHashes != nil {
		raw, err := json.Marshal(device.BackupCodeHashes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal backup codes: %w", err)
		}
		codes = string(raw)
	}
	return &DBMfaDevice{
		ID:          device.ID,
		UserID:      device.UserID,
		Type:        string(device.Type),
		Status:      string(device.Status),
		DeviceName:  device.DeviceName,
		SecretKey:   device.SecretEncrypted,
		BackupCodes: codes,
		LastUsedAt:  device.LastUsedAt,
		CreatedAt:   device.CreatedAt,
		UpdatedAt:   device.UpdatedAt,
	}, nil
}

func (r *MfaDeviceRepositoryImpl) dbToDomain(dbDevice *DBMfaDevice) (*domain.MfaDevice, error) {
	var codes []string
	if dbDevice.BackupCodes != "" {
		if err := json.Unmarshal([]byte(dbDevice.BackupCodes), &codes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal backup codes: %w", err)
		}
	}
	return &domain.MfaDevice{
		ID:               dbDevice.ID,
		UserID:           dbDevice.UserID,
		Type:             domain.MfaDeviceType(dbDevice.Type),
		Status:           domain.MfaDeviceStatus(dbDevice.Status),
		DeviceName:       dbDevice.DeviceName,
		SecretEncrypted:  dbDevice.SecretKey,
		BackupCodeHashes: codes,
		LastUsedAt:       dbDevice.LastUsedAt,
		CreatedAt:        dbDevice.CreatedAt,
		UpdatedAt:        dbDevice.UpdatedAt,
	}, nil
}
