package flows

import (
	"context"
	"errors"
	"time"
)

// LoginUser is the flow-local view of an account after a password check.
type LoginUser struct {
	Email       string
	Enabled     bool
	Authorities []string
}

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	Subject     string
	Authorities []string
	Token       string
	ExpiresAt   time.Time
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	LoginDisabled    int
	LoginRateLimited int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess     string
	LoginFailure     string
	LoginRateLimited string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady   error
	BadCredentials   error
	AccountDisabled  error
	LoginRateLimited error
	Unavailable      error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Now                 func() time.Time
	ClientIPFromContext func(context.Context) string

	// Optional; nil disables failed-login throttling.
	CheckLoginRate     func(context.Context, string, string) error
	IncrementLoginRate func(context.Context, string, string) error
	ResetLoginRate     func(context.Context, string, string) error

	// VerifyCredentials reports ok=false for unknown email and wrong password
	// alike. err is reserved for backend failures.
	VerifyCredentials func(ctx context.Context, email, password string) (user LoginUser, ok bool, err error)
	IssueToken        func(subject string, now time.Time) (string, time.Time, error)

	MetricInc func(int)
	EmitAudit AuditFunc
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

func normalizeLoginDeps(deps *LoginDeps) {
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
}

// RunLogin checks credentials, then the disabled flag, then issues a token.
// A disabled account is only reported to callers that know its password.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (*LoginResult, error) {
	normalizeLoginDeps(&deps)
	if deps.VerifyCredentials == nil || deps.IssueToken == nil {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, email, ip); err != nil {
			return nil, loginRateLimited(ctx, email, err, deps)
		}
	}

	user, ok, err := deps.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, email, deps.Errors.Unavailable, func() map[string]string {
			return map[string]string{"reason": "backend_unavailable"}
		})
		deps.Warn("login: credential lookup failed: %v", err)
		return nil, deps.Errors.Unavailable
	}

	if !ok {
		if deps.IncrementLoginRate != nil {
			if err := deps.IncrementLoginRate(ctx, email, ip); err != nil {
				return nil, loginRateLimited(ctx, email, err, deps)
			}
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, email, deps.Errors.BadCredentials, func() map[string]string {
			return map[string]string{"reason": "bad_credentials"}
		})
		return nil, deps.Errors.BadCredentials
	}

	if !user.Enabled {
		deps.MetricInc(deps.Metrics.LoginDisabled)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, email, deps.Errors.AccountDisabled, func() map[string]string {
			return map[string]string{"reason": "account_disabled"}
		})
		return nil, deps.Errors.AccountDisabled
	}

	token, expiresAt, err := deps.IssueToken(user.Email, deps.Now())
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, email, deps.Errors.Unavailable, func() map[string]string {
			return map[string]string{"reason": "token_issue_failed"}
		})
		deps.Warn("login: token issue failed: %v", err)
		return nil, deps.Errors.Unavailable
	}

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, email, ip); err != nil {
			deps.Warn("login: reset rate counter failed: %v", err)
		}
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, user.Email, nil, nil)

	return &LoginResult{
		Subject:     user.Email,
		Authorities: append([]string(nil), user.Authorities...),
		Token:       token,
		ExpiresAt:   expiresAt,
	}, nil
}

func loginRateLimited(ctx context.Context, email string, cause error, deps LoginDeps) error {
	if !errors.Is(cause, deps.Errors.LoginRateLimited) {
		deps.Warn("login: limiter error: %v", cause)
		return deps.Errors.Unavailable
	}
	deps.MetricInc(deps.Metrics.LoginRateLimited)
	deps.EmitAudit(ctx, deps.Events.LoginRateLimited, false, email, deps.Errors.LoginRateLimited, func() map[string]string {
		return map[string]string{"scope": "login"}
	})
	return deps.Errors.LoginRateLimited
}
