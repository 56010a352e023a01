package security

import (
	"testing"
	"time"
)

func baseInput() ReportInput {
	return ReportInput{
		SigningAlgorithm:   "hs256",
		TokenTTL:           24 * time.Hour,
		OTPTTL:             15 * time.Minute,
		OTPDigits:          6,
		Password:           PasswordReport{Memory: 65536, Time: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		HashUpgradeOnLogin: true,
		RateLimitEnabled:   true,
		RedisAvailable:     true,
		EnableIPThrottle:   true,
		MaxLoginAttempts:   5,
		LoginCooldown:      15 * time.Minute,
	}
}

func TestBuildReportHardened(t *testing.T) {
	r := BuildReport(baseInput())
	if !r.RateLimitingActive || !r.IPThrottleActive {
		t.Fatalf("rate limiting should be active: %+v", r)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestBuildReportRateLimitNeedsRedis(t *testing.T) {
	in := baseInput()
	in.RedisAvailable = false
	r := BuildReport(in)
	if r.RateLimitingActive || r.IPThrottleActive {
		t.Fatal("rate limiting cannot be active without redis")
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", r.Warnings)
	}
}

func TestBuildReportWarnings(t *testing.T) {
	in := baseInput()
	in.TokenTTL = 30 * 24 * time.Hour
	in.OTPTTL = 2 * time.Hour
	in.Password.Memory = 8192
	in.OTPMaxAttempts = 3
	r := BuildReport(in)
	if !r.OTPAttemptCapActive {
		t.Fatal("attempt cap should be active")
	}
	if len(r.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", r.Warnings)
	}
}
