package verifact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// Register creates an account with the configured default authorities. The
// new account starts unverified. ErrValidation and ErrAccountExists are the
// caller-facing failures; a failed welcome email is logged only.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (Profile, error) {
	if e == nil || !e.flows.Initialized() {
		return Profile{}, ErrEngineNotReady
	}

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if err := validateRegistration(name, email, req.Password); err != nil {
		e.emitAudit(ctx, auditEventAccountFailure, false, email, err, nil)
		return Profile{}, err
	}

	hash, err := e.passwords.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventAccountFailure, false, email, err, nil)
		return Profile{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	user, err := e.users.CreateUser(ctx, CreateUserInput{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Authorities:  append([]string(nil), e.config.Account.DefaultAuthorities...),
	})
	if err != nil {
		err = mapStoreError(err)
		if errors.Is(err, ErrAccountExists) {
			e.metricInc(int(MetricAccountDuplicate))
			e.emitAudit(ctx, auditEventAccountDuplicate, false, email, err, nil)
			return Profile{}, ErrAccountExists
		}
		e.emitAudit(ctx, auditEventAccountFailure, false, email, err, nil)
		return Profile{}, err
	}

	e.metricInc(int(MetricAccountCreated))
	e.emitAudit(ctx, auditEventAccountCreated, true, user.Email, nil, nil)

	if e.config.Account.SendWelcome {
		if err := e.notifier.Notify(ctx, Notification{
			Kind: NotifyWelcome,
			To:   user.Email,
			Name: user.Name,
		}); err != nil {
			e.logger.WithError(err).WithField("subject", user.Email).Warn("welcome email not delivered")
		}
	}

	return profileFromRecord(user), nil
}

// Profile returns the public view of subject's account.
func (e *Engine) Profile(ctx context.Context, subject string) (Profile, error) {
	if e == nil || !e.flows.Initialized() {
		return Profile{}, ErrEngineNotReady
	}
	user, err := e.getUser(ctx, normalizeEmail(subject))
	if err != nil {
		return Profile{}, err
	}
	return profileFromRecord(user), nil
}

func validateRegistration(name, email, plaintext string) error {
	if name == "" {
		return fmt.Errorf("%w: name should not be empty", ErrValidation)
	}
	if email == "" {
		return fmt.Errorf("%w: email should not be empty", ErrValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: enter valid email address", ErrValidation)
	}
	return validatePassword(plaintext)
}
