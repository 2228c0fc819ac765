package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/rentauthsvc/domain"
)

// JWTServiceImpl implements domain.TokenService. Access and refresh tokens
// are signed with independent secrets so a leaked access-signing key cannot
// mint refresh tokens. MFA-pending tokens share the access secret; the kind
// claim alone keeps them off resource endpoints.
type JWTServiceImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	mfaPendingTTL time.Duration
	clock         domain.Clock
}

// NewJWTService creates a new JWT service.
func NewJWTService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL, mfaPendingTTL time.Duration, clock domain.Clock) domain.TokenService {
	return &JWTServiceImpl{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		mfaPendingTTL: mfaPendingTTL,
		clock:         clock,
	}
}

// generateJTI creates a unique JWT ID
func (j *JWTServiceImpl) generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func (j *JWTServiceImpl) secretFor(kind domain.TokenKind) []byte {
	if kind == domain.TokenKindRefresh {
		return j.refreshSecret
	}
	return j.accessSecret
}

func (j *JWTServiceImpl) ttlFor(kind domain.TokenKind) time.Duration {
	switch kind {
	case domain.TokenKindRefresh:
		return j.refreshTTL
	case domain.TokenKindMfaPending:
		return j.mfaPendingTTL
	default:
		return j.accessTTL
	}
}

// AccessTTL implements domain.TokenService
func (j *JWTServiceImpl) AccessTTL() time.Duration {
	return j.accessTTL
}

// Issue implements domain.TokenService
func (j *JWTServiceImpl) Issue(userID, email, role string, kind domain.TokenKind) (string, error) {
	now := j.clock.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"type":  string(kind),
		"iss":   j.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(j.ttlFor(kind)).Unix(),
		"jti":   j.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretFor(kind))
}

// Verify implements domain.TokenService. Every failure mode collapses to
// domain.ErrTokenInvalid so callers cannot distinguish wrong-kind, expired
// and forged tokens.
func (j *JWTServiceImpl) Verify(tokenString string, kind domain.TokenKind) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return j.secretFor(kind), nil
	}, jwt.WithTimeFunc(j.clock.Now))

	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != string(kind) {
		return nil, domain.ErrTokenInvalid
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, domain.ErrTokenInvalid
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	if time.Unix(int64(exp), 0).Before(j.clock.Now()) {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.TokenClaims{
		UserID:    sub,
		Email:     email,
		Role:      role,
		Kind:      domain.TokenKind(tokenType),
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}, nil
}
