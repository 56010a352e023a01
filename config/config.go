// Package config loads the verifact service configuration from the
// environment and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/verifact"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const minSecretBytes = 32

// Config holds process configuration.
type Config struct {
	// HTTPAddr is the listen address (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// BasePath prefixes every API route (default /api/v1.0).
	BasePath string `mapstructure:"BASE_PATH"`
	// Env is the deployment environment. "production" forbids the log notifier.
	Env string `mapstructure:"APP_ENV"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`
	// CookieSecure adds the Secure attribute to the jwt cookie.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`

	OTPTTL         time.Duration `mapstructure:"OTP_TTL"`
	OTPDigits      int           `mapstructure:"OTP_DIGITS"`
	OTPMaxAttempts int           `mapstructure:"OTP_MAX_ATTEMPTS"`

	// RateLimitEnabled turns on the Redis fixed-window throttles; requires REDIS_ADDR.
	RateLimitEnabled bool          `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitMax     int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow  time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	// RedisAddr is optional; without it OTPs are kept in process memory.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// DatabaseURL is the Postgres DSN. Empty selects the in-memory user store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Notifier is "smtp" or "log".
	Notifier     string `mapstructure:"NOTIFIER"`
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	AuditEnabled   bool   `mapstructure:"AUDIT_ENABLED"`
}

// Load reads .env from the working directory if present, then the
// environment. Env vars override .env.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit .env path. A missing file is ignored.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // ignore missing file
	}

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("BASE_PATH", "/api/v1.0")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("OTP_TTL", "15m")
	v.SetDefault("OTP_DIGITS", 6)
	v.SetDefault("OTP_MAX_ATTEMPTS", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_MAX", 5)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("NOTIFIER", "log")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("AUDIT_ENABLED", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if !strings.HasPrefix(c.BasePath, "/") || (len(c.BasePath) > 1 && strings.HasSuffix(c.BasePath, "/")) {
		return errors.New("config: BASE_PATH must start with / and must not end with /")
	}
	if len(c.JWTSecret) < minSecretBytes {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", minSecretBytes)
	}
	if c.JWTTTL <= 0 {
		return errors.New("config: JWT_TTL must be > 0")
	}
	if c.OTPTTL <= 0 {
		return errors.New("config: OTP_TTL must be > 0")
	}

	switch c.Notifier {
	case "log":
		if c.IsProduction() {
			return errors.New("config: NOTIFIER=log must not be used when APP_ENV=production")
		}
	case "smtp":
		if c.SMTPHost == "" || c.SMTPFrom == "" {
			return errors.New("config: NOTIFIER=smtp requires SMTP_HOST and SMTP_FROM")
		}
	default:
		return errors.New("config: NOTIFIER must be smtp or log")
	}

	if c.RateLimitEnabled {
		if c.RedisAddr == "" {
			return errors.New("config: RATE_LIMIT_ENABLED requires REDIS_ADDR")
		}
		if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
			return errors.New("config: RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be > 0")
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Level returns the parsed LOG_LEVEL, or info when unparsable.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// ToEngineConfig maps process settings onto the engine configuration.
func (c *Config) ToEngineConfig() verifact.Config {
	cfg := verifact.DefaultConfig()

	cfg.JWT.Secret = []byte(c.JWTSecret)
	cfg.JWT.Issuer = c.JWTIssuer
	cfg.JWT.TTL = c.JWTTTL

	cfg.OTP.TTL = c.OTPTTL
	cfg.OTP.Digits = c.OTPDigits
	cfg.OTP.MaxAttempts = c.OTPMaxAttempts

	cfg.RateLimit.Enabled = c.RateLimitEnabled
	if c.RateLimitMax > 0 {
		cfg.RateLimit.MaxLoginAttempts = c.RateLimitMax
		cfg.RateLimit.MaxOTPSends = c.RateLimitMax
		cfg.RateLimit.MaxOTPConfirms = 2 * c.RateLimitMax
	}
	if c.RateLimitWindow > 0 {
		cfg.RateLimit.LoginCooldown = c.RateLimitWindow
		cfg.RateLimit.OTPWindow = c.RateLimitWindow
	}

	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = c.MetricsEnabled
	cfg.Audit.Enabled = c.AuditEnabled

	return cfg
}
