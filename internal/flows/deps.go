package flows

import "context"

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Login        LoginDeps
	Authenticate AuthenticateDeps
	Recovery     RecoveryDeps
}

// AuditFunc records one audit event. meta is evaluated only when auditing
// is enabled.
type AuditFunc func(ctx context.Context, eventType string, success bool, subject string, err error, meta func() map[string]string)

func noopAudit(context.Context, string, bool, string, error, func() map[string]string) {}

func noopMetric(int) {}

func noIP(context.Context) string { return "" }
