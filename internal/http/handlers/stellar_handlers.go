package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/rentauthsvc/domain"
)

// StellarHandlers handles wallet challenge-response authentication
type StellarHandlers struct {
	stellarSvc    domain.StellarAuthService
	setAuthCookie func(c *gin.Context, refreshToken string)
}

// NewStellarHandlers creates new Stellar handlers. setAuthCookie lets the
// wallet flow share the auth handlers' refresh cookie settings.
func NewStellarHandlers(stellarSvc domain.StellarAuthService, setAuthCookie func(c *gin.Context, refreshToken string)) *StellarHandlers {
	return &StellarHandlers{stellarSvc: stellarSvc, setAuthCookie: setAuthCookie}
}

// ChallengeRequest asks for a signing challenge for a wallet
type ChallengeRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// VerifyChallengeRequest carries back the signed challenge
type VerifyChallengeRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Challenge     string `json:"challenge" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
}

// Challenge issues a single-use signing challenge for the wallet
func (h *StellarHandlers) Challenge(c *gin.Context) {
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.stellarSvc.GenerateChallenge(c.Request.Context(), req.WalletAddress)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"challenge":  resp.Challenge,
			"expires_at": resp.ExpiresAt,
		},
	})
}

// Verify checks the wallet's signature over the challenge and logs the
// wallet in, provisioning an account on first use.
func (h *StellarHandlers) Verify(c *gin.Context) {
	var req VerifyChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.stellarSvc.VerifySignature(c.Request.Context(), req.WalletAddress, req.Challenge, req.Signature)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.setAuthCookie != nil {
		h.setAuthCookie(c, result.RefreshToken)
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
			"user":         toUserResponse(result.User),
		},
	})
}

func (h *StellarHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedWalletAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Stellar wallet address"})
	case errors.Is(err, domain.ErrInvalidChallenge):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired challenge"})
	case errors.Is(err, domain.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account has been deactivated"})
	default:
		log.Printf("stellar handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
