package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.VerifyCredentials != nil &&
		s.deps.Authenticate.ExtractSubject != nil &&
		s.deps.Recovery.GenerateOTP != nil
}

func (s Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) Authenticate(ctx context.Context, token string) (AuthIdentity, error) {
	return RunAuthenticate(ctx, token, s.deps.Authenticate)
}

func (s Service) SendVerificationOTP(ctx context.Context, subject string) error {
	return RunSendVerificationOTP(ctx, subject, s.deps.Recovery)
}

func (s Service) ConfirmVerification(ctx context.Context, subject, code string) error {
	return RunConfirmVerification(ctx, subject, code, s.deps.Recovery)
}

func (s Service) SendResetOTP(ctx context.Context, email string) error {
	return RunSendResetOTP(ctx, email, s.deps.Recovery)
}

func (s Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return RunResetPassword(ctx, email, code, newPassword, s.deps.Recovery)
}
