package verifact

import "context"

const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventLoginRateLimited    = "login_rate_limited"
	auditEventVerificationRequest = "email_verification_request"
	auditEventVerificationConfirm = "email_verification_confirm"
	auditEventResetRequest        = "password_reset_request"
	auditEventResetConfirm        = "password_reset_confirm"
	auditEventAccountCreated      = "account_creation_success"
	auditEventAccountDuplicate    = "account_creation_duplicate"
	auditEventAccountFailure      = "account_creation_failure"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subject string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		Type:      eventType,
		Subject:   subject,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		// Only the classification leaves the process, never err.Error().
		event.Reason = KindOf(err).String()
	}

	e.audit.Emit(ctx, event)
}

// AuditDropped reports events dropped because the dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

