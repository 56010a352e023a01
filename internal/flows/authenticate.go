package flows

import (
	"context"
	"errors"
	"time"
)

// AuthIdentity is the live identity resolved for a verified token.
type AuthIdentity struct {
	Subject     string
	Authorities []string
}

// AuthenticateMetrics carries metric IDs needed by the authenticate flow.
type AuthenticateMetrics struct {
	TokenValid     int
	TokenInvalid   int
	TokenExpired   int
	UnknownSubject int
}

// AuthenticateErrors carries host-level sentinel errors.
type AuthenticateErrors struct {
	EngineNotReady   error
	InvalidSignature error
	TokenExpired     error
	UserNotFound     error
	AccountDisabled  error
}

// AuthenticateDeps captures per-request token authentication dependencies.
type AuthenticateDeps struct {
	Now func() time.Time

	// ExtractSubject verifies the token and returns its subject. Errors must
	// already be mapped to Errors.InvalidSignature or Errors.TokenExpired.
	ExtractSubject func(token string, now time.Time) (string, error)

	// LookupIdentity re-reads the account so authorities and the disabled flag
	// are current, not whatever held at issue time.
	LookupIdentity func(ctx context.Context, subject string) (identity AuthIdentity, enabled bool, err error)

	MetricInc      func(int)
	ObserveLatency func(time.Duration)

	Metrics AuthenticateMetrics
	Errors  AuthenticateErrors
}

// RunAuthenticate turns a bearer token into a live identity.
func RunAuthenticate(ctx context.Context, token string, deps AuthenticateDeps) (AuthIdentity, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.ExtractSubject == nil || deps.LookupIdentity == nil {
		return AuthIdentity{}, deps.Errors.EngineNotReady
	}

	start := time.Now()
	subject, err := deps.ExtractSubject(token, deps.Now())
	if deps.ObserveLatency != nil {
		deps.ObserveLatency(time.Since(start))
	}
	if err != nil {
		if errors.Is(err, deps.Errors.TokenExpired) {
			deps.MetricInc(deps.Metrics.TokenExpired)
		} else {
			deps.MetricInc(deps.Metrics.TokenInvalid)
		}
		return AuthIdentity{}, err
	}

	identity, enabled, err := deps.LookupIdentity(ctx, subject)
	if err != nil {
		deps.MetricInc(deps.Metrics.UnknownSubject)
		return AuthIdentity{}, err
	}
	if !enabled {
		deps.MetricInc(deps.Metrics.UnknownSubject)
		return AuthIdentity{}, deps.Errors.AccountDisabled
	}

	deps.MetricInc(deps.Metrics.TokenValid)
	return identity, nil
}
