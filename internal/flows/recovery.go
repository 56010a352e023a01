package flows

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	PurposeVerifyEmail   = "verify-email"
	PurposeResetPassword = "reset-password"
)

// RecoveryUser is the flow-local account view used by OTP flows.
type RecoveryUser struct {
	Email         string
	Name          string
	EmailVerified bool
}

// RecoveryNotice is what the flow hands to the notifier.
type RecoveryNotice struct {
	Purpose string
	To      string
	Name    string
	Code    string
	TTL     time.Duration
}

type RecoveryMetrics struct {
	OTPSent          int
	OTPSendFailure   int
	OTPConsumed      int
	OTPRejected      int
	OTPRateLimited   int
	EmailVerified    int
	PasswordReset    int
	ResetUnknownMask int
}

type RecoveryEvents struct {
	VerificationRequest string
	VerificationConfirm string
	ResetRequest        string
	ResetConfirm        string
}

type RecoveryErrors struct {
	EngineNotReady  error
	Validation      error
	UserNotFound    error
	RateLimited     error
	DeliveryFailure error
	Unavailable     error
}

// RecoveryDeps captures email verification and password reset dependencies.
type RecoveryDeps struct {
	Now                 func() time.Time
	ClientIPFromContext func(context.Context) string
	OTPTTL              time.Duration

	// Optional; nil disables OTP throttling. Errors must already be mapped
	// to Errors.RateLimited or Errors.Unavailable.
	CheckSendLimiter    func(ctx context.Context, purpose, subject, ip string) error
	CheckConfirmLimiter func(ctx context.Context, purpose, subject, ip string) error

	// GetUser returns Errors.UserNotFound for unknown emails.
	GetUser           func(ctx context.Context, email string) (RecoveryUser, error)
	MarkEmailVerified func(ctx context.Context, email string) error
	// ValidatePassword errors must wrap Errors.Validation.
	ValidatePassword func(string) error
	// UpdatePassword hashes and stores newPassword.
	UpdatePassword func(ctx context.Context, email, newPassword string) error
	ResetLoginRate func(ctx context.Context, email, ip string) error
	GenerateOTP    func(ctx context.Context, subject, purpose string, now time.Time) (string, error)
	VerifyOTP      func(ctx context.Context, subject, purpose, code string, now time.Time) error
	MapOTPError    func(error) error
	Notify         func(ctx context.Context, notice RecoveryNotice) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Warn      func(string, ...any)

	Metrics RecoveryMetrics
	Events  RecoveryEvents
	Errors  RecoveryErrors
}

func normalizeRecoveryDeps(deps *RecoveryDeps) bool {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = noIP
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.MapOTPError == nil {
		deps.MapOTPError = func(err error) error { return err }
	}
	if deps.ValidatePassword == nil {
		deps.ValidatePassword = func(string) error { return nil }
	}
	return deps.GetUser != nil &&
		deps.GenerateOTP != nil &&
		deps.VerifyOTP != nil &&
		deps.Notify != nil &&
		deps.MarkEmailVerified != nil &&
		deps.UpdatePassword != nil
}

// RunSendVerificationOTP issues a verify-email code to an authenticated
// subject's own address.
func RunSendVerificationOTP(ctx context.Context, subject string, deps RecoveryDeps) error {
	if !normalizeRecoveryDeps(&deps) {
		return deps.Errors.EngineNotReady
	}
	if strings.TrimSpace(subject) == "" {
		return deps.Errors.Validation
	}

	user, err := deps.GetUser(ctx, subject)
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.VerificationRequest, false, subject, err, nil)
		return err
	}
	return sendOTP(ctx, PurposeVerifyEmail, user, deps.Events.VerificationRequest, deps)
}

// RunConfirmVerification consumes a verify-email code and marks the address
// verified. The code is checked even for verified accounts; any failure
// leaves the account untouched.
func RunConfirmVerification(ctx context.Context, subject, code string, deps RecoveryDeps) error {
	if !normalizeRecoveryDeps(&deps) {
		return deps.Errors.EngineNotReady
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(code) == "" {
		return deps.Errors.Validation
	}

	if _, err := deps.GetUser(ctx, subject); err != nil {
		deps.EmitAudit(ctx, deps.Events.VerificationConfirm, false, subject, err, nil)
		return err
	}

	if err := consumeOTP(ctx, PurposeVerifyEmail, subject, code, deps.Events.VerificationConfirm, deps); err != nil {
		return err
	}

	if err := deps.MarkEmailVerified(ctx, subject); err != nil {
		deps.EmitAudit(ctx, deps.Events.VerificationConfirm, false, subject, err, func() map[string]string {
			return map[string]string{"reason": "store_update_failed"}
		})
		return err
	}

	deps.MetricInc(deps.Metrics.EmailVerified)
	deps.EmitAudit(ctx, deps.Events.VerificationConfirm, true, subject, nil, nil)
	return nil
}

// RunSendResetOTP issues a reset-password code. Unknown emails return nil
// after the same limiter work, so callers cannot tell which emails have accounts.
func RunSendResetOTP(ctx context.Context, email string, deps RecoveryDeps) error {
	if !normalizeRecoveryDeps(&deps) {
		return deps.Errors.EngineNotReady
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return deps.Errors.Validation
	}

	user, err := deps.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, deps.Errors.UserNotFound) {
			if deps.CheckSendLimiter != nil {
				if err := deps.CheckSendLimiter(ctx, PurposeResetPassword, email, deps.ClientIPFromContext(ctx)); err != nil {
					return recoveryLimited(ctx, email, deps.Events.ResetRequest, err, deps)
				}
			}
			deps.MetricInc(deps.Metrics.ResetUnknownMask)
			deps.EmitAudit(ctx, deps.Events.ResetRequest, false, email, err, func() map[string]string {
				return map[string]string{"reason": "unknown_email"}
			})
			return nil
		}
		deps.EmitAudit(ctx, deps.Events.ResetRequest, false, email, err, nil)
		return err
	}

	return sendOTP(ctx, PurposeResetPassword, user, deps.Events.ResetRequest, deps)
}

// RunResetPassword consumes a reset-password code and stores newPassword.
// Tokens issued before the reset stay valid until they expire.
func RunResetPassword(ctx context.Context, email, code, newPassword string, deps RecoveryDeps) error {
	if !normalizeRecoveryDeps(&deps) {
		return deps.Errors.EngineNotReady
	}
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(code) == "" || strings.TrimSpace(newPassword) == "" {
		return deps.Errors.Validation
	}
	// Checked before the code is consumed so a policy miss does not burn it.
	if err := deps.ValidatePassword(newPassword); err != nil {
		return err
	}

	if err := consumeOTP(ctx, PurposeResetPassword, email, code, deps.Events.ResetConfirm, deps); err != nil {
		return err
	}

	if err := deps.UpdatePassword(ctx, email, newPassword); err != nil {
		deps.EmitAudit(ctx, deps.Events.ResetConfirm, false, email, err, func() map[string]string {
			return map[string]string{"reason": "store_update_failed"}
		})
		return err
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, email, deps.ClientIPFromContext(ctx)); err != nil {
			deps.Warn("reset password: clear login counter failed: %v", err)
		}
	}

	deps.MetricInc(deps.Metrics.PasswordReset)
	deps.EmitAudit(ctx, deps.Events.ResetConfirm, true, email, nil, nil)
	return nil
}

func sendOTP(ctx context.Context, purpose string, user RecoveryUser, event string, deps RecoveryDeps) error {
	if deps.CheckSendLimiter != nil {
		if err := deps.CheckSendLimiter(ctx, purpose, user.Email, deps.ClientIPFromContext(ctx)); err != nil {
			return recoveryLimited(ctx, user.Email, event, err, deps)
		}
	}

	code, err := deps.GenerateOTP(ctx, user.Email, purpose, deps.Now())
	if err != nil {
		mapped := deps.MapOTPError(err)
		deps.MetricInc(deps.Metrics.OTPSendFailure)
		deps.EmitAudit(ctx, event, false, user.Email, mapped, nil)
		return mapped
	}

	if err := deps.Notify(ctx, RecoveryNotice{
		Purpose: purpose,
		To:      user.Email,
		Name:    user.Name,
		Code:    code,
		TTL:     deps.OTPTTL,
	}); err != nil {
		deps.MetricInc(deps.Metrics.OTPSendFailure)
		deps.EmitAudit(ctx, event, false, user.Email, deps.Errors.DeliveryFailure, nil)
		deps.Warn("%s: delivery failed: %v", purpose, err)
		return errors.Join(deps.Errors.DeliveryFailure, err)
	}

	deps.MetricInc(deps.Metrics.OTPSent)
	deps.EmitAudit(ctx, event, true, user.Email, nil, nil)
	return nil
}

func consumeOTP(ctx context.Context, purpose, subject, code, event string, deps RecoveryDeps) error {
	if deps.CheckConfirmLimiter != nil {
		if err := deps.CheckConfirmLimiter(ctx, purpose, subject, deps.ClientIPFromContext(ctx)); err != nil {
			return recoveryLimited(ctx, subject, event, err, deps)
		}
	}

	if err := deps.VerifyOTP(ctx, subject, purpose, code, deps.Now()); err != nil {
		mapped := deps.MapOTPError(err)
		deps.MetricInc(deps.Metrics.OTPRejected)
		deps.EmitAudit(ctx, event, false, subject, mapped, nil)
		return mapped
	}

	deps.MetricInc(deps.Metrics.OTPConsumed)
	return nil
}

func recoveryLimited(ctx context.Context, subject, event string, err error, deps RecoveryDeps) error {
	if errors.Is(err, deps.Errors.RateLimited) {
		deps.MetricInc(deps.Metrics.OTPRateLimited)
	}
	deps.EmitAudit(ctx, event, false, subject, err, func() map[string]string {
		return map[string]string{"reason": "limiter"}
	})
	return err
}
