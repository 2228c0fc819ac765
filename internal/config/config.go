package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port          int    `yaml:"port"`
	GinMode       string `yaml:"gin_mode"`
	SecureCookies bool   `yaml:"secure_cookies"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
	MfaPendingTTL string `yaml:"mfa_pending_ttl"`
}

type LockoutConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Cooldown    string `yaml:"cooldown"`
}

type MFAConfig struct {
	Issuer          string `yaml:"issuer"`
	EncryptionKey   string `yaml:"encryption_key"`
	BackupCodeCount int    `yaml:"backup_code_count"`
}

type StellarConfig struct {
	ChallengeTTL string `yaml:"challenge_ttl"`
}

type PasswordConfig struct {
	BcryptCost    string `yaml:"bcrypt_cost"`
	ResetTokenTTL string `yaml:"reset_token_ttl"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Lockout  LockoutConfig  `yaml:"lockout"`
	MFA      MFAConfig      `yaml:"mfa"`
	Stellar  StellarConfig  `yaml:"stellar"`
	Password PasswordConfig `yaml:"password"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

type Config struct {
	Port          string
	GinMode       string
	SecureCookies bool

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTIssuer        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	MfaPendingTTL    time.Duration

	LockoutMaxAttempts int
	LockoutCooldown    time.Duration

	MFAIssuer          string
	MFAEncryptionKey   string
	MFABackupCodeCount int

	ChallengeTTL time.Duration

	BcryptCost    int
	ResetTokenTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml and applies environment overrides for
// secrets so they never need to live in the file.
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := time.ParseDuration(configFile.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	mfaTTL, err := time.ParseDuration(configFile.JWT.MfaPendingTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid MFA pending TTL: %w", err)
	}

	cooldown, err := time.ParseDuration(configFile.Lockout.Cooldown)
	if err != nil {
		return nil, fmt.Errorf("invalid lockout cooldown: %w", err)
	}

	challengeTTL, err := time.ParseDuration(configFile.Stellar.ChallengeTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid challenge TTL: %w", err)
	}

	resetTTL, err := time.ParseDuration(configFile.Password.ResetTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid reset token TTL: %w", err)
	}

	bcryptCost := atoi(env("BCRYPT_COST", configFile.Password.BcryptCost))
	if bcryptCost == 0 {
		bcryptCost = 12
	}

	return &Config{
		Port:          fmt.Sprintf("%d", configFile.App.Port),
		GinMode:       configFile.App.GinMode,
		SecureCookies: configFile.App.SecureCookies,

		DSN: env("DATABASE_DSN", configFile.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		JWTAccessSecret:  env("JWT_ACCESS_SECRET", configFile.JWT.AccessSecret),
		JWTRefreshSecret: env("JWT_REFRESH_SECRET", configFile.JWT.RefreshSecret),
		JWTIssuer:        configFile.JWT.Issuer,
		AccessTTL:        accTTL,
		RefreshTTL:       refTTL,
		MfaPendingTTL:    mfaTTL,

		LockoutMaxAttempts: configFile.Lockout.MaxAttempts,
		LockoutCooldown:    cooldown,

		MFAIssuer:          configFile.MFA.Issuer,
		MFAEncryptionKey:   env("MFA_ENCRYPTION_KEY", configFile.MFA.EncryptionKey),
		MFABackupCodeCount: configFile.MFA.BackupCodeCount,

		ChallengeTTL: challengeTTL,

		BcryptCost:    bcryptCost,
		ResetTokenTTL: resetTTL,

		SMTPHost:     env("SMTP_HOST", configFile.SMTP.Host),
		SMTPPort:     configFile.SMTP.Port,
		SMTPUsername: env("SMTP_USERNAME", configFile.SMTP.Username),
		SMTPPassword: env("SMTP_PASSWORD", configFile.SMTP.Password),
		SMTPFrom:     configFile.SMTP.From,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func atoi(s string) int {
	var i int
	fmt.Sscanf(s, "%d", &i)
	return i
}
