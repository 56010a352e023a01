package verifact

import (
	"errors"
	"time"
)

// Config is the Engine configuration. Start from [DefaultConfig] and
// override fields; the zero value does not validate.
type Config struct {
	JWT       JWTConfig
	OTP       OTPConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Account   AccountConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures token issuance. TTL is also the cookie Max-Age the
// HTTP layer uses.
type JWTConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	KeyID         string
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig configures one-time codes for both verify-email and
// reset-password.
type OTPConfig struct {
	TTL    time.Duration
	Digits int
	// MaxAttempts caps wrong guesses per issued code. 0 means unlimited.
	MaxAttempts int
	RedisPrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id parameters for new hashes. Existing bcrypt
// hashes still verify and are upgraded on the next successful login.
type PasswordConfig struct {
	Memory         uint32
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig configures the optional Redis fixed-window throttles.
// They are inert without a Redis client.
type RateLimitConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
	MaxOTPSends      int
	MaxOTPConfirms   int
	OTPWindow        time.Duration
}

// AccountConfig configures registration.
type AccountConfig struct {
	DefaultAuthorities []string
	SendWelcome        bool
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a configuration that validates once JWT.Secret is
// set.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			TTL:           24 * time.Hour,
			SigningMethod: "hs256",
		},
		OTP: OTPConfig{
			TTL:         15 * time.Minute,
			Digits:      6,
			MaxAttempts: 0,
			RedisPrefix: "otp",
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:          false,
			EnableIPThrottle: true,
			MaxLoginAttempts: 5,
			LoginCooldown:    15 * time.Minute,
			MaxOTPSends:      5,
			MaxOTPConfirms:   10,
			OTPWindow:        15 * time.Minute,
		},
		Account: AccountConfig{
			DefaultAuthorities: []string{"ROLE_USER"},
			SendWelcome:        true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	out.Account.DefaultAuthorities = append([]string(nil), cfg.Account.DefaultAuthorities...)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.TTL <= 0 {
		return errors.New("JWT TTL must be > 0")
	}
	switch c.JWT.SigningMethod {
	case "hs256":
		if len(c.JWT.Secret) < 32 {
			return errors.New("hs256 requires a Secret of at least 32 bytes")
		}
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 || len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires PrivateKey and PublicKey")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}

	// OTP
	if c.OTP.TTL <= 0 {
		return errors.New("OTP TTL must be > 0")
	}
	if c.OTP.TTL > 24*time.Hour {
		return errors.New("OTP TTL must be <= 24h")
	}
	if c.OTP.Digits < 6 || c.OTP.Digits > 10 {
		return errors.New("OTP Digits must be between 6 and 10")
	}
	if c.OTP.MaxAttempts < 0 {
		return errors.New("OTP MaxAttempts must be >= 0")
	}

	// Rate limits
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxLoginAttempts <= 0 || c.RateLimit.LoginCooldown <= 0 {
			return errors.New("RateLimit login budget and cooldown must be > 0 when enabled")
		}
		if c.RateLimit.OTPWindow <= 0 {
			return errors.New("RateLimit OTPWindow must be > 0 when enabled")
		}
		if c.RateLimit.MaxOTPSends < 0 || c.RateLimit.MaxOTPConfirms < 0 {
			return errors.New("RateLimit OTP budgets must be >= 0")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
