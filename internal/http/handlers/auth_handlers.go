package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/rentauthsvc/domain"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token,
// scoped to the auth path.
const refreshCookieName = "refresh_token"

const resetRequestedMessage = "If an account exists with this email, you will receive a password reset link"

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc       domain.AuthService
	cookiePath    string
	cookieMaxAge  int
	secureCookies bool
}

// NewAuthHandlers creates new auth handlers. cookieMaxAge is the refresh
// token lifetime in seconds.
func NewAuthHandlers(authSvc domain.AuthService, cookieMaxAge int, secureCookies bool) *AuthHandlers {
	return &AuthHandlers{
		authSvc:       authSvc,
		cookiePath:    "/auth",
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CompleteMfaLoginRequest represents the second step of an MFA login
type CompleteMfaLoginRequest struct {
	MfaToken string `json:"mfa_token" binding:"required"`
	MfaCode  string `json:"mfa_code" binding:"required"`
}

// RefreshRequest is the body fallback for clients that do not use cookies
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents reset completion
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// userResponse is the allow-list serialization of a credential record.
// Secret-bearing fields are structurally absent, not filtered by name.
type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

func toUserResponse(user *domain.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		WalletAddress: user.WalletAddress,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{
		"data": h.tokenBody(result),
	})
}

// Login handles the first step of authentication. When MFA is enabled the
// response carries only an mfa_token.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if result.MfaRequired {
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"mfa_required": true,
				"mfa_token":    result.MfaToken,
				"user":         toUserResponse(result.User),
			},
		})
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"data": h.tokenBody(result)})
}

// CompleteMfaLogin handles the second step of an MFA login
func (h *AuthHandlers) CompleteMfaLogin(c *gin.Context) {
	var req CompleteMfaLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.CompleteMfaLogin(c.Request.Context(), req.MfaToken, req.MfaCode)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"data": h.tokenBody(result)})
}

// Refresh rotates the refresh token. The cookie wins; the body is a
// fallback for non-cookie clients.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token not provided"})
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
		},
	})
}

// Logout revokes the active refresh token and clears the cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := h.authSvc.Logout(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out successfully"}})
}

// ForgotPassword always answers with the same message so account existence
// cannot be enumerated.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": resetRequestedMessage}})
}

// ResetPassword completes a password reset
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password has been reset successfully. Please log in with your new password"}})
}

// VerifyEmail marks the credential's email verified
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if err := h.authSvc.VerifyEmail(c.Request.Context(), token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Email verified successfully"}})
}

// Me returns the authenticated user's profile
func (h *AuthHandlers) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	user, err := h.authSvc.ValidateUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toUserResponse(user)})
}

func (h *AuthHandlers) tokenBody(result *domain.AuthResult) gin.H {
	// The refresh token travels only in the cookie.
	return gin.H{
		"access_token": result.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   result.ExpiresIn,
		"user":         toUserResponse(result.User),
	}
}

// SetRefreshCookie is shared with the wallet login flow so both entry points
// issue identical cookies.
func (h *AuthHandlers) SetRefreshCookie(c *gin.Context, refreshToken string) {
	h.setRefreshCookie(c, refreshToken)
}

func (h *AuthHandlers) setRefreshCookie(c *gin.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, refreshToken, h.cookieMaxAge, h.cookiePath, "", h.secureCookies, true)
}

func (h *AuthHandlers) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, h.cookiePath, "", h.secureCookies, true)
}

// respondError maps domain errors to client-facing statuses. Anything
// unexpected is logged with context and returned opaque.
func (h *AuthHandlers) respondError(c *gin.Context, err error) {
	if locked, ok := domain.IsAccountLocked(err); ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":       locked.Error(),
			"retry_after": int(locked.RetryAfter.Seconds()),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, domain.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account has been deactivated"})
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, domain.ErrInvalidMfaCode):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid MFA code"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	default:
		log.Printf("auth handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
