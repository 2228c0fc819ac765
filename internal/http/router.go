package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/rentauthsvc/internal/http/handlers"
	"github.com/you/rentauthsvc/internal/http/middleware"
)

// BuildRouter wires routes to handlers. Credential-guessing endpoints sit
// behind the rate limiter; everything under the protected group requires a
// kind=access token.
func BuildRouter(
	ah *handlers.AuthHandlers,
	mh *handlers.MfaHandlers,
	sh *handlers.StellarHandlers,
	jwtmw gin.HandlerFunc,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", limiter.Limit(), ah.Register)
	auth.POST("/login", limiter.Limit(), ah.Login)
	auth.POST("/login/mfa", limiter.Limit(), ah.CompleteMfaLogin)
	auth.POST("/refresh", ah.Refresh)
	auth.POST("/forgot-password", limiter.Limit(), ah.ForgotPassword)
	auth.POST("/reset-password", limiter.Limit(), ah.ResetPassword)
	auth.GET("/verify-email", ah.VerifyEmail)

	wallet := auth.Group("/stellar")
	wallet.POST("/challenge", limiter.Limit(), sh.Challenge)
	wallet.POST("/verify", limiter.Limit(), sh.Verify)

	v := r.Group("/").Use(jwtmw)
	v.GET("/auth/me", ah.Me)
	v.POST("/auth/logout", ah.Logout)

	mfa := r.Group("/auth/mfa").Use(jwtmw)
	mfa.GET("/status", mh.Status)
	mfa.POST("/enable", mh.Enable)
	mfa.POST("/verify", limiter.Limit(), mh.Verify)
	mfa.POST("/disable", mh.Disable)
	mfa.POST("/backup-codes", mh.RegenerateBackupCodes)

	return r
}
