package verifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	internalflows "github.com/MrEthical07/verifact/internal/flows"
	"github.com/MrEthical07/verifact/internal/limiters"
	"github.com/MrEthical07/verifact/internal/rate"
	"github.com/MrEthical07/verifact/internal/stores"
	"github.com/MrEthical07/verifact/jwt"
	"github.com/MrEthical07/verifact/password"
)

func (e *Engine) flowDeps() internalflows.Deps {
	return internalflows.Deps{
		Login:        e.loginFlowDeps(),
		Authenticate: e.authenticateFlowDeps(),
		Recovery:     e.recoveryFlowDeps(),
	}
}

func (e *Engine) loginFlowDeps() internalflows.LoginDeps {
	deps := internalflows.LoginDeps{
		Now:                 e.now,
		ClientIPFromContext: clientIPFromContext,
		VerifyCredentials: func(ctx context.Context, email, plaintext string) (internalflows.LoginUser, bool, error) {
			user, ok, err := e.credentials.Verify(ctx, email, plaintext)
			if err != nil || !ok {
				return internalflows.LoginUser{}, false, err
			}
			return internalflows.LoginUser{
				Email:       user.Email,
				Enabled:     user.Enabled,
				Authorities: user.Authorities,
			}, true, nil
		},
		IssueToken: e.jwtManager.Issue,
		MetricInc:  e.metricInc,
		EmitAudit:  e.emitAudit,
		Warn:       e.logger.Warnf,
		Metrics: internalflows.LoginMetrics{
			LoginSuccess:     int(MetricLoginSuccess),
			LoginFailure:     int(MetricLoginFailure),
			LoginDisabled:    int(MetricLoginDisabled),
			LoginRateLimited: int(MetricLoginRateLimited),
		},
		Events: internalflows.LoginEvents{
			LoginSuccess:     auditEventLoginSuccess,
			LoginFailure:     auditEventLoginFailure,
			LoginRateLimited: auditEventLoginRateLimited,
		},
		Errors: internalflows.LoginErrors{
			EngineNotReady:   ErrEngineNotReady,
			BadCredentials:   ErrBadCredentials,
			AccountDisabled:  ErrAccountDisabled,
			LoginRateLimited: ErrRateLimited,
			Unavailable:      ErrUnavailable,
		},
	}

	if e.loginLimiter != nil {
		deps.CheckLoginRate = func(ctx context.Context, email, ip string) error {
			return mapRateError(e.loginLimiter.CheckLogin(ctx, email, ip))
		}
		deps.IncrementLoginRate = func(ctx context.Context, email, ip string) error {
			return mapRateError(e.loginLimiter.IncrementLogin(ctx, email, ip))
		}
		deps.ResetLoginRate = func(ctx context.Context, email, ip string) error {
			return mapRateError(e.loginLimiter.ResetLogin(ctx, email, ip))
		}
	}

	return deps
}

func (e *Engine) authenticateFlowDeps() internalflows.AuthenticateDeps {
	return internalflows.AuthenticateDeps{
		Now: e.now,
		ExtractSubject: func(token string, now time.Time) (string, error) {
			subject, err := e.jwtManager.ExtractSubject(token, now)
			if err != nil {
				if errors.Is(err, jwt.ErrExpired) {
					return "", ErrTokenExpired
				}
				return "", ErrInvalidSignature
			}
			return subject, nil
		},
		LookupIdentity: func(ctx context.Context, subject string) (internalflows.AuthIdentity, bool, error) {
			user, err := e.getUser(ctx, subject)
			if err != nil {
				return internalflows.AuthIdentity{}, false, err
			}
			return internalflows.AuthIdentity{
				Subject:     user.Email,
				Authorities: append([]string(nil), user.Authorities...),
			}, user.Enabled, nil
		},
		MetricInc: e.metricInc,
		ObserveLatency: func(d time.Duration) {
			e.metrics.Observe(MetricValidateLatency, d)
		},
		Metrics: internalflows.AuthenticateMetrics{
			TokenValid:     int(MetricTokenValid),
			TokenInvalid:   int(MetricTokenInvalid),
			TokenExpired:   int(MetricTokenExpired),
			UnknownSubject: int(MetricTokenUnknownSubject),
		},
		Errors: internalflows.AuthenticateErrors{
			EngineNotReady:   ErrEngineNotReady,
			InvalidSignature: ErrInvalidSignature,
			TokenExpired:     ErrTokenExpired,
			UserNotFound:     ErrUserNotFound,
			AccountDisabled:  ErrAccountDisabled,
		},
	}
}

func (e *Engine) recoveryFlowDeps() internalflows.RecoveryDeps {
	deps := internalflows.RecoveryDeps{
		Now:                 e.now,
		ClientIPFromContext: clientIPFromContext,
		OTPTTL:              e.config.OTP.TTL,
		GetUser: func(ctx context.Context, email string) (internalflows.RecoveryUser, error) {
			user, err := e.getUser(ctx, email)
			if err != nil {
				return internalflows.RecoveryUser{}, err
			}
			return internalflows.RecoveryUser{
				Email:         user.Email,
				Name:          user.Name,
				EmailVerified: user.EmailVerified,
			}, nil
		},
		MarkEmailVerified: func(ctx context.Context, email string) error {
			return mapStoreError(e.users.MarkEmailVerified(ctx, email))
		},
		ValidatePassword: validatePassword,
		UpdatePassword: func(ctx context.Context, email, newPassword string) error {
			hash, err := e.passwords.Hash(newPassword)
			if err != nil {
				if errors.Is(err, password.ErrTooShort) {
					return fmt.Errorf("%w: %v", ErrValidation, err)
				}
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			return mapStoreError(e.users.UpdatePasswordHash(ctx, email, hash))
		},
		GenerateOTP: func(ctx context.Context, subject, purpose string, now time.Time) (string, error) {
			return e.otp.Generate(ctx, subject, stores.Purpose(purpose), now)
		},
		VerifyOTP: func(ctx context.Context, subject, purpose, code string, now time.Time) error {
			return e.otp.Verify(ctx, subject, stores.Purpose(purpose), code, now)
		},
		MapOTPError: mapOTPError,
		Notify: func(ctx context.Context, notice internalflows.RecoveryNotice) error {
			return e.notifier.Notify(ctx, Notification{
				Kind: NotificationKind(notice.Purpose),
				To:   notice.To,
				Name: notice.Name,
				Code: notice.Code,
				TTL:  notice.TTL,
			})
		},
		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,
		Warn:      e.logger.Warnf,
		Metrics: internalflows.RecoveryMetrics{
			OTPSent:          int(MetricOTPSent),
			OTPSendFailure:   int(MetricOTPSendFailure),
			OTPConsumed:      int(MetricOTPConsumed),
			OTPRejected:      int(MetricOTPRejected),
			OTPRateLimited:   int(MetricOTPRateLimited),
			EmailVerified:    int(MetricEmailVerified),
			PasswordReset:    int(MetricPasswordReset),
			ResetUnknownMask: int(MetricResetUnknownEmail),
		},
		Events: internalflows.RecoveryEvents{
			VerificationRequest: auditEventVerificationRequest,
			VerificationConfirm: auditEventVerificationConfirm,
			ResetRequest:        auditEventResetRequest,
			ResetConfirm:        auditEventResetConfirm,
		},
		Errors: internalflows.RecoveryErrors{
			EngineNotReady:  ErrEngineNotReady,
			Validation:      ErrValidation,
			UserNotFound:    ErrUserNotFound,
			RateLimited:     ErrRateLimited,
			DeliveryFailure: ErrDeliveryFailure,
			Unavailable:     ErrUnavailable,
		},
	}

	if e.loginLimiter != nil {
		deps.ResetLoginRate = func(ctx context.Context, email, ip string) error {
			return mapRateError(e.loginLimiter.ResetLogin(ctx, email, ip))
		}
	}
	if e.otpLimiter != nil {
		deps.CheckSendLimiter = func(ctx context.Context, purpose, subject, ip string) error {
			return mapOTPLimiterError(e.otpLimiter.CheckSend(ctx, purpose, subject, ip))
		}
		deps.CheckConfirmLimiter = func(ctx context.Context, purpose, subject, ip string) error {
			return mapOTPLimiterError(e.otpLimiter.CheckConfirm(ctx, purpose, subject, ip))
		}
	}

	return deps
}

// getUser normalizes store errors to ErrUserNotFound or ErrUnavailable.
func (e *Engine) getUser(ctx context.Context, email string) (UserRecord, error) {
	user, err := e.users.GetUserByEmail(ctx, email)
	if err != nil {
		return UserRecord{}, mapStoreError(err)
	}
	return user, nil
}

func validatePassword(p string) error {
	if len(p) < password.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, password.MinLength)
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAccountExists),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func mapOTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stores.ErrOTPNotFound):
		return ErrOTPNotFound
	case errors.Is(err, stores.ErrOTPWrongCode):
		return ErrOTPWrongCode
	case errors.Is(err, stores.ErrOTPExpired):
		return ErrOTPExpired
	case errors.Is(err, stores.ErrOTPAttemptsExceeded):
		return ErrOTPAttemptsExceeded
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func mapRateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func mapOTPLimiterError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, limiters.ErrOTPRateLimited):
		return ErrRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
