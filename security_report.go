package verifact

import internalsecurity "github.com/MrEthical07/verifact/internal/security"

// SecurityReport summarizes the engine's effective security settings.
type SecurityReport = internalsecurity.Report

// SecurityReport returns the posture of the built engine. Rate limiting is
// reported active only when a Redis client backs it.
func (e *Engine) SecurityReport() SecurityReport {
	c := e.config
	return internalsecurity.BuildReport(internalsecurity.ReportInput{
		SigningAlgorithm: c.JWT.SigningMethod,
		TokenTTL:         c.JWT.TTL,
		OTPTTL:           c.OTP.TTL,
		OTPDigits:        c.OTP.Digits,
		OTPMaxAttempts:   c.OTP.MaxAttempts,
		Password: internalsecurity.PasswordReport{
			Memory:      c.Password.Memory,
			Time:        c.Password.Time,
			Parallelism: c.Password.Parallelism,
			SaltLength:  c.Password.SaltLength,
			KeyLength:   c.Password.KeyLength,
		},
		HashUpgradeOnLogin: c.Password.UpgradeOnLogin,
		RateLimitEnabled:   c.RateLimit.Enabled,
		RedisAvailable:     e.loginLimiter != nil,
		EnableIPThrottle:   c.RateLimit.EnableIPThrottle,
		MaxLoginAttempts:   c.RateLimit.MaxLoginAttempts,
		LoginCooldown:      c.RateLimit.LoginCooldown,
		AuditEnabled:       c.Audit.Enabled,
	})
}
