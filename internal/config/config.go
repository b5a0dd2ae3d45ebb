// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// TokenSecret is the shared HMAC secret that signs and verifies every token.
	// Required; at least 32 bytes. Read once at startup and never rotated at runtime.
	TokenSecret string `mapstructure:"TOKEN_SECRET"`
	// TokenIssuer is the iss claim stamped on every token.
	TokenIssuer string `mapstructure:"TOKEN_ISSUER"`
	// AccessTTLRaw is the access token lifetime (e.g. "30m").
	AccessTTLRaw string `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTTLRaw is the refresh token lifetime (e.g. "168h").
	RefreshTTLRaw string `mapstructure:"REFRESH_TOKEN_TTL"`
	// MailTokenTTLRaw is the mail-verification token lifetime (e.g. "24h").
	MailTokenTTLRaw string `mapstructure:"MAIL_TOKEN_TTL"`
	// OTPTTLMinutes is the one-time code lifetime in minutes.
	OTPTTLMinutes int `mapstructure:"OTP_TTL_MINUTES"`
	// OTPDigits is the number of digits in generated one-time codes.
	OTPDigits int `mapstructure:"OTP_DIGITS"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SweepIntervalRaw is how often expired sessions and codes are purged (e.g. "10m"). Empty disables the sweeper.
	SweepIntervalRaw string `mapstructure:"SWEEP_INTERVAL"`

	// SMTPHost, SMTPPort, SMTPUser, SMTPPass, SMTPFrom configure outbound mail for one-time codes.
	// Empty SMTPHost disables mail delivery (codes are still issued; the skipped send is logged).
	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	// SMSAPIKey is the API key for the SMS gateway used for phone one-time codes.
	SMSAPIKey string `mapstructure:"SMS_API_KEY"`
	// SMSBaseURL is the SMS gateway base URL.
	SMSBaseURL string `mapstructure:"SMS_BASE_URL"`
	// SMSSender is the optional sender ID for the SMS gateway.
	SMSSender string `mapstructure:"SMS_SENDER"`

	// OTLPEndpoint is the OTLP collector endpoint for telemetry (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("TOKEN_SECRET", "")
	v.SetDefault("TOKEN_ISSUER", "biblio-auth")
	v.SetDefault("ACCESS_TOKEN_TTL", "30m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h") // 7d
	v.SetDefault("MAIL_TOKEN_TTL", "24h")
	v.SetDefault("OTP_TTL_MINUTES", 10)
	v.SetDefault("OTP_DIGITS", 6)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SWEEP_INTERVAL", "10m")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	if len(cfg.TokenSecret) < 32 {
		return nil, errors.New("config: TOKEN_SECRET must be set and at least 32 bytes")
	}
	if cfg.OTPTTLMinutes <= 0 {
		return nil, errors.New("config: OTP_TTL_MINUTES must be positive")
	}
	if cfg.OTPDigits < 4 || cfg.OTPDigits > 10 {
		return nil, errors.New("config: OTP_DIGITS must be between 4 and 10")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses ACCESS_TOKEN_TTL as a time.Duration. Returns 30m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTTLRaw)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// RefreshTTL parses REFRESH_TOKEN_TTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.RefreshTTLRaw)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// MailTokenTTL parses MAIL_TOKEN_TTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) MailTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.MailTokenTTLRaw)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// OTPTTL returns the one-time code lifetime.
func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}

// SweepInterval parses SWEEP_INTERVAL as a time.Duration. Returns 0 (sweeper disabled) if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	if c.SweepIntervalRaw == "" {
		return 0
	}
	d, err := time.ParseDuration(c.SweepIntervalRaw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
