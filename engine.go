package verifact

import (
	"context"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/verifact/internal/audit"
	internalflows "github.com/MrEthical07/verifact/internal/flows"
	"github.com/MrEthical07/verifact/internal/limiters"
	"github.com/MrEthical07/verifact/internal/rate"
	"github.com/MrEthical07/verifact/internal/stores"
	"github.com/MrEthical07/verifact/jwt"
	"github.com/MrEthical07/verifact/password"
	"github.com/sirupsen/logrus"
)

// Engine runs login, per-request token authentication, email verification
// and password reset. It is safe for concurrent use once built.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	passwords    *password.Verifier
	credentials  *credentialVerifier
	otp          *stores.OTPStore
	loginLimiter *rate.Limiter
	otpLimiter   *limiters.OTPLimiter
	users        UserStore
	notifier     Notifier
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	logger       logrus.FieldLogger
	clock        func() time.Time
	flows        internalflows.Service
}

// Close flushes the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// TokenTTL is the lifetime of issued tokens.
func (e *Engine) TokenTTL() time.Duration {
	return e.config.JWT.TTL
}

// OTPTTL is the lifetime of issued one-time codes.
func (e *Engine) OTPTTL() time.Duration {
	return e.config.OTP.TTL
}

// Login checks email and password and issues a token. Errors are
// ErrBadCredentials, ErrAccountDisabled, ErrRateLimited or ErrUnavailable.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	res, err := e.flows.Login(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Identity: Identity{
			Subject:     res.Subject,
			Authorities: res.Authorities,
		},
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	}, nil
}

// Authenticate verifies token and re-reads the account it names. Errors are
// ErrInvalidSignature, ErrTokenExpired, ErrUserNotFound, ErrAccountDisabled
// or ErrUnavailable; callers at the request edge treat all of them as
// anonymous.
func (e *Engine) Authenticate(ctx context.Context, token string) (Identity, error) {
	id, err := e.flows.Authenticate(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Subject: id.Subject, Authorities: id.Authorities}, nil
}

// SendVerificationOTP emails a verify-email code to subject, which must be
// an authenticated identity. Verified accounts get a code too. Returns
// ErrDeliveryFailure when the notifier fails.
func (e *Engine) SendVerificationOTP(ctx context.Context, subject string) error {
	return e.flows.SendVerificationOTP(ctx, normalizeEmail(subject))
}

// ConfirmVerification consumes code and marks subject's email verified. A
// verified account accepts any call as a no-op.
func (e *Engine) ConfirmVerification(ctx context.Context, subject, code string) error {
	return e.flows.ConfirmVerification(ctx, normalizeEmail(subject), strings.TrimSpace(code))
}

// SendResetOTP emails a reset-password code. Unknown emails succeed
// silently.
func (e *Engine) SendResetOTP(ctx context.Context, email string) error {
	return e.flows.SendResetOTP(ctx, normalizeEmail(email))
}

// ResetPassword consumes code and replaces the password. Tokens issued
// before the reset remain valid until they expire.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return e.flows.ResetPassword(ctx, normalizeEmail(email), strings.TrimSpace(code), newPassword)
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

func (e *Engine) metricInc(id int) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(MetricID(id))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
