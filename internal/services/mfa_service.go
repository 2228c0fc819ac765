package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/you/rentauthsvc/domain"
	"github.com/you/rentauthsvc/internal/infrastructure/auth"
)

// backupCodeAlphabet avoids characters people misread when transcribing
// (0/O, 1/I/L, U/V).
const backupCodeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

const backupCodeHalf = 5

// MfaServiceImpl implements domain.MfaService: TOTP devices with encrypted
// secrets plus single-use hashed backup codes.
type MfaServiceImpl struct {
	deviceRepo  domain.MfaDeviceRepository
	passwordSvc domain.PasswordService
	cipher      domain.SecretCipher
	totp        *auth.TOTPManager
	clock       domain.Clock
	codeCount   int
}

// NewMfaService creates a new MFA service
func NewMfaService(
	deviceRepo domain.MfaDeviceRepository,
	passwordSvc domain.PasswordService,
	cipher domain.SecretCipher,
	totp *auth.TOTPManager,
	clock domain.Clock,
	codeCount int,
) domain.MfaService {
	if codeCount < 8 {
		codeCount = 10
	}
	return &MfaServiceImpl{
		deviceRepo:  deviceRepo,
		passwordSvc: passwordSvc,
		cipher:      cipher,
		totp:        totp,
		clock:       clock,
		codeCount:   codeCount,
	}
}

// Enable implements domain.MfaService. The secret and backup codes are
// returned exactly once; only the encrypted secret and the code hashes are
// stored.
func (s *MfaServiceImpl) Enable(ctx context.Context, userID, accountName, deviceName string) (*domain.MfaEnrollment, error) {
	if _, err := s.deviceRepo.FindActive(ctx, userID, domain.MfaDeviceTotp); err == nil {
		return nil, domain.ErrMfaAlreadyEnabled
	} else if !errors.Is(err, domain.ErrMfaNotEnabled) {
		return nil, fmt.Errorf("failed to check existing device: %w", err)
	}

	secret, secretBase32, err := s.totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	encrypted, err := s.cipher.Encrypt(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt totp secret: %w", err)
	}

	// The backup codes go in first. MFA is enforced by the active TOTP
	// device, so a failure past this point leaves the account unguarded
	// rather than locked behind a secret the user never received.
	codes, err := s.storeBackupCodes(ctx, userID)
	if err != nil {
		return nil, err
	}

	device := &domain.MfaDevice{
		UserID:          userID,
		Type:            domain.MfaDeviceTotp,
		Status:          domain.MfaDeviceActive,
		DeviceName:      deviceName,
		SecretEncrypted: encrypted,
	}
	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to store totp device: %w", err)
	}

	return &domain.MfaEnrollment{
		Secret:          secretBase32,
		ProvisioningURI: s.totp.ProvisionURI(secretBase32, accountName),
		BackupCodes:     codes,
	}, nil
}

// IsEnabled implements domain.MfaService
func (s *MfaServiceImpl) IsEnabled(ctx context.Context, userID string) (bool, error) {
	_, err := s.deviceRepo.FindActive(ctx, userID, domain.MfaDeviceTotp)
	if err != nil {
		if errors.Is(err, domain.ErrMfaNotEnabled) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// VerifyTotp implements domain.MfaService. The code is checked against the
// current step and one adjacent step on each side.
func (s *MfaServiceImpl) VerifyTotp(ctx context.Context, userID, code string) (bool, error) {
	device, err := s.deviceRepo.FindActive(ctx, userID, domain.MfaDeviceTotp)
	if err != nil {
		if errors.Is(err, domain.ErrMfaNotEnabled) {
			return false, nil
		}
		return false, err
	}

	secret, err := s.cipher.Decrypt(device.SecretEncrypted)
	if err != nil {
		return false, fmt.Errorf("failed to decrypt totp secret: %w", err)
	}

	ok, err := s.totp.VerifyCode(secret, strings.TrimSpace(code), s.clock.Now())
	if err != nil || !ok {
		return false, err
	}

	now := s.clock.Now()
	device.LastUsedAt = &now
	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return false, fmt.Errorf("failed to stamp totp device: %w", err)
	}
	return true, nil
}

// VerifyBackupCode implements domain.MfaService. A matching hash is removed
// before the result is reported, so a code can never be redeemed twice.
func (s *MfaServiceImpl) VerifyBackupCode(ctx context.Context, userID, code string) (bool, error) {
	device, err := s.deviceRepo.FindActive(ctx, userID, domain.MfaDeviceBackupCode)
	if err != nil {
		if errors.Is(err, domain.ErrMfaNotEnabled) {
			return false, nil
		}
		return false, err
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	for i, hash := range device.BackupCodeHashes {
		if s.passwordSvc.Verify(hash, normalized) {
			device.BackupCodeHashes = append(device.BackupCodeHashes[:i], device.BackupCodeHashes[i+1:]...)
			now := s.clock.Now()
			device.LastUsedAt = &now
			if err := s.deviceRepo.Update(ctx, device); err != nil {
				return false, fmt.Errorf("failed to consume backup code: %w", err)
			}
			return true, nil
		}
	}
	return false, nil
}

// VerifyCode implements domain.MfaService
func (s *MfaServiceImpl) VerifyCode(ctx context.Context, userID, code string) (bool, error) {
	ok, err := s.VerifyTotp(ctx, userID, code)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return s.VerifyBackupCode(ctx, userID, code)
}

// RegenerateBackupCodes implements domain.MfaService. The previous batch is
// invalidated in a single write.
func (s *MfaServiceImpl) RegenerateBackupCodes(ctx context.Context, userID string) ([]string, error) {
	if enabled, err := s.IsEnabled(ctx, userID); err != nil {
		return nil, err
	} else if !enabled {
		return nil, domain.ErrMfaNotEnabled
	}
	return s.storeBackupCodes(ctx, userID)
}

// Disable implements domain.MfaService. A valid current code is required so
// a stolen session cannot silently strip account protection.
func (s *MfaServiceImpl) Disable(ctx context.Context, userID, code string) error {
	if enabled, err := s.IsEnabled(ctx, userID); err != nil {
		return err
	} else if !enabled {
		return domain.ErrMfaNotEnabled
	}

	ok, err := s.VerifyCode(ctx, userID, code)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidMfaCode
	}

	return s.deviceRepo.DisableAll(ctx, userID)
}

// storeBackupCodes generates a fresh batch, hashes each code, and writes the
// batch over any existing one.
func (s *MfaServiceImpl) storeBackupCodes(ctx context.Context, userID string) ([]string, error) {
	codes := make([]string, s.codeCount)
	hashes := make([]string, s.codeCount)
	for i := range codes {
		code, err := generateBackupCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}
		hash, err := s.passwordSvc.Hash(code)
		if err != nil {
			return nil, fmt.Errorf("failed to hash backup code: %w", err)
		}
		codes[i] = code
		hashes[i] = hash
	}

	device, err := s.deviceRepo.FindActive(ctx, userID, domain.MfaDeviceBackupCode)
	if err != nil {
		if !errors.Is(err, domain.ErrMfaNotEnabled) {
			return nil, err
		}
		device = &domain.MfaDevice{
			UserID:           userID,
			Type:             domain.MfaDeviceBackupCode,
			Status:           domain.MfaDeviceActive,
			BackupCodeHashes: hashes,
		}
		if err := s.deviceRepo.Create(ctx, device); err != nil {
			return nil, fmt.Errorf("failed to store backup codes: %w", err)
		}
		return codes, nil
	}

	device.BackupCodeHashes = hashes
	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to replace backup codes: %w", err)
	}
	return codes, nil
}

func generateBackupCode() (string, error) {
	var b strings.Builder
	for i := 0; i < backupCodeHalf*2; i++ {
		if i == backupCodeHalf {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(backupCodeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(backupCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
