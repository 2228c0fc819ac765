package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/rentauthsvc/domain"
)

// MfaHandlers handles MFA enrollment and management. All routes require an
// authenticated access token.
type MfaHandlers struct {
	mfaSvc domain.MfaService
}

func NewMfaHandlers(mfaSvc domain.MfaService) *MfaHandlers {
	return &MfaHandlers{mfaSvc: mfaSvc}
}

// EnableMfaRequest represents MFA enrollment
type EnableMfaRequest struct {
	DeviceName string `json:"device_name,omitempty"`
}

// MfaCodeRequest carries a TOTP or backup code
type MfaCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// Enable starts TOTP enrollment. The secret and backup codes appear in this
// response only; they are never retrievable again.
func (h *MfaHandlers) Enable(c *gin.Context) {
	var req EnableMfaRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deviceName := req.DeviceName
	if deviceName == "" {
		deviceName = "Authenticator app"
	}

	userID := c.GetString("user_id")
	accountName := c.GetString("user_email")
	if accountName == "" {
		accountName = userID
	}

	enrollment, err := h.mfaSvc.Enable(c.Request.Context(), userID, accountName, deviceName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"secret":           enrollment.Secret,
			"provisioning_uri": enrollment.ProvisioningURI,
			"backup_codes":     enrollment.BackupCodes,
		},
	})
}

// Verify checks a TOTP or backup code for the authenticated user
func (h *MfaHandlers) Verify(c *gin.Context) {
	var req MfaCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	ok, err := h.mfaSvc.VerifyCode(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid MFA code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"valid": true}})
}

// Disable turns MFA off. A valid current code is required so a stolen access
// token alone cannot weaken the account.
func (h *MfaHandlers) Disable(c *gin.Context) {
	var req MfaCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if err := h.mfaSvc.Disable(c.Request.Context(), userID, req.Code); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "MFA disabled"}})
}

// RegenerateBackupCodes replaces every outstanding backup code with a fresh
// set, returned once.
func (h *MfaHandlers) RegenerateBackupCodes(c *gin.Context) {
	userID := c.GetString("user_id")
	codes, err := h.mfaSvc.RegenerateBackupCodes(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"backup_codes": codes}})
}

// Status reports whether MFA is enabled for the authenticated user
func (h *MfaHandlers) Status(c *gin.Context) {
	userID := c.GetString("user_id")
	enabled, err := h.mfaSvc.IsEnabled(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"enabled": enabled}})
}

func (h *MfaHandlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMfaAlreadyEnabled):
		c.JSON(http.StatusConflict, gin.H{"error": "MFA is already enabled"})
	case errors.Is(err, domain.ErrMfaNotEnabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": "MFA is not enabled"})
	case errors.Is(err, domain.ErrInvalidMfaCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid MFA code"})
	default:
		log.Printf("mfa handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
