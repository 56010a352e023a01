package security

import "time"

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Report is a flattened, log-friendly view of the settings that matter
// when reviewing a deployment.
type Report struct {
	SigningAlgorithm    string
	TokenTTL            time.Duration
	OTPTTL              time.Duration
	OTPDigits           int
	OTPAttemptCapActive bool
	Argon2              PasswordReport
	HashUpgradeOnLogin  bool
	RateLimitingActive  bool
	IPThrottleActive    bool
	AuditActive         bool
	// Warnings lists weak settings. Empty means nothing stood out.
	Warnings []string
}

type ReportInput struct {
	SigningAlgorithm   string
	TokenTTL           time.Duration
	OTPTTL             time.Duration
	OTPDigits          int
	OTPMaxAttempts     int
	Password           PasswordReport
	HashUpgradeOnLogin bool
	RateLimitEnabled   bool
	RedisAvailable     bool
	EnableIPThrottle   bool
	MaxLoginAttempts   int
	LoginCooldown      time.Duration
	AuditEnabled       bool
}

const (
	maxRecommendedTokenTTL = 7 * 24 * time.Hour
	maxRecommendedOTPTTL   = time.Hour
	minRecommendedMemory   = 19 * 1024
)

func BuildReport(input ReportInput) Report {
	rateLimiting := input.RateLimitEnabled &&
		input.RedisAvailable &&
		input.MaxLoginAttempts > 0 &&
		input.LoginCooldown > 0

	r := Report{
		SigningAlgorithm:    input.SigningAlgorithm,
		TokenTTL:            input.TokenTTL,
		OTPTTL:              input.OTPTTL,
		OTPDigits:           input.OTPDigits,
		OTPAttemptCapActive: input.OTPMaxAttempts > 0,
		Argon2:              input.Password,
		HashUpgradeOnLogin:  input.HashUpgradeOnLogin,
		RateLimitingActive:  rateLimiting,
		IPThrottleActive:    rateLimiting && input.EnableIPThrottle,
		AuditActive:         input.AuditEnabled,
	}

	if input.TokenTTL > maxRecommendedTokenTTL {
		r.Warnings = append(r.Warnings, "token lifetime exceeds 7 days")
	}
	if input.OTPTTL > maxRecommendedOTPTTL {
		r.Warnings = append(r.Warnings, "one-time codes live longer than 1 hour")
	}
	if !r.RateLimitingActive && !r.OTPAttemptCapActive {
		r.Warnings = append(r.Warnings, "no throttling or attempt cap on codes and logins")
	}
	if input.Password.Memory < minRecommendedMemory {
		r.Warnings = append(r.Warnings, "argon2 memory below 19 MiB")
	}

	return r
}
