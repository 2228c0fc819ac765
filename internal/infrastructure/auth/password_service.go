package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/you/rentauthsvc/domain"
)

// PasswordServiceImpl implements domain.PasswordService with bcrypt. The same
// adaptive hash covers passwords, stored refresh tokens and backup codes so a
// credential-store leak never yields fast-crackable material.
type PasswordServiceImpl struct {
	cost int
}

// NewPasswordService creates a new password service with the given bcrypt
// cost factor. Costs outside bcrypt's valid range fall back to the default.
func NewPasswordService(cost int) domain.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordServiceImpl{cost: cost}
}

// Hash implements domain.PasswordService
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService
func (p *PasswordServiceImpl) Verify(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
