package verifact

import "testing"

func TestSecurityReport(t *testing.T) {
	env := newTestEnv(t, nil)
	r := env.engine.SecurityReport()
	if r.SigningAlgorithm != "hs256" || r.TokenTTL != testConfig().JWT.TTL {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.RateLimitingActive || r.OTPAttemptCapActive {
		t.Fatalf("hardening should be off by default: %+v", r)
	}
	if len(r.Warnings) != 2 {
		t.Fatalf("expected throttling and argon2 warnings, got %v", r.Warnings)
	}

	mr, client := newTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	cfg.OTP.MaxAttempts = 3
	hardened := newTestEnv(t, func(b *Builder) {
		b.WithConfig(cfg).WithRedis(client)
	})
	r = hardened.engine.SecurityReport()
	if !r.RateLimitingActive || !r.IPThrottleActive || !r.OTPAttemptCapActive {
		t.Fatalf("expected hardening active: %+v", r)
	}
}
