package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/rentauthsvc/internal/config"
	httpx "github.com/you/rentauthsvc/internal/http"
	"github.com/you/rentauthsvc/internal/http/handlers"
	"github.com/you/rentauthsvc/internal/http/middleware"
	"github.com/you/rentauthsvc/internal/infrastructure/auth"
	"github.com/you/rentauthsvc/internal/infrastructure/database"
	"github.com/you/rentauthsvc/internal/infrastructure/notifications"
	"github.com/you/rentauthsvc/internal/infrastructure/repositories"
	"github.com/you/rentauthsvc/internal/services"
)

// Credential-stuffing budget for the sensitive auth endpoints.
const (
	rateLimitRequests = 10
	rateLimitWindow   = time.Minute
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	gdb, err := database.Open(cfg.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(context.Background()); err != nil {
		return err
	}

	clock := auth.NewSystemClock()
	passwordSvc := auth.NewPasswordService(cfg.BcryptCost)
	tokenSvc := auth.NewJWTService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer,
		cfg.AccessTTL, cfg.RefreshTTL, cfg.MfaPendingTTL, clock)
	cipher, err := auth.NewAESCipher(cfg.MFAEncryptionKey)
	if err != nil {
		return err
	}
	totp := auth.NewTOTPManager(auth.TOTPConfig{Issuer: cfg.MFAIssuer})
	mailer := notifications.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	userRepo := repositories.NewUserRepository(gdb)
	deviceRepo := repositories.NewMfaDeviceRepository(gdb)
	challengeStore := repositories.NewChallengeStore(rdb.Client)

	lockout := services.NewLockoutPolicy(cfg.LockoutMaxAttempts, cfg.LockoutCooldown, clock)
	mfaSvc := services.NewMfaService(deviceRepo, passwordSvc, cipher, totp, clock, cfg.MFABackupCodeCount)
	authSvc := services.NewAuthService(userRepo, passwordSvc, tokenSvc, mfaSvc, mailer, lockout, clock, cfg.ResetTokenTTL)
	stellarSvc := services.NewStellarAuthService(userRepo, challengeStore, passwordSvc, tokenSvc, clock, cfg.ChallengeTTL)

	authH := handlers.NewAuthHandlers(authSvc, int(cfg.RefreshTTL.Seconds()), cfg.SecureCookies)
	mfaH := handlers.NewMfaHandlers(mfaSvc)
	stellarH := handlers.NewStellarHandlers(stellarSvc, authH.SetRefreshCookie)

	limiter := middleware.NewRateLimiter(rateLimitRequests, rateLimitWindow, clock)
	r := httpx.BuildRouter(authH, mfaH, stellarH, middleware.AuthMiddleware(tokenSvc), limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
