package stores

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/MrEthical07/verifact/internal"
)

// Purpose scopes a code to one flow.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify-email"
	PurposeResetPassword Purpose = "reset-password"
)

var (
	ErrOTPNotFound         = errors.New("otp not found")
	ErrOTPWrongCode        = errors.New("otp code mismatch")
	ErrOTPExpired          = errors.New("otp expired")
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	ErrOTPUnavailable      = errors.New("otp store unavailable")
	ErrOTPInvalidConfig    = errors.New("otp store invalid config")
)

// OTPRecord is the persisted form of an issued code. ExpiresAt is in unix
// nanoseconds so that expiry can be checked against an injected clock.
type OTPRecord struct {
	Subject   string
	CodeHash  [32]byte
	ExpiresAt int64
	Attempts  uint16
}

// OTPBackend persists OTP records. Save replaces any existing record for the
// key and keeps it for retention after now. Consume must be atomic per key.
type OTPBackend interface {
	Save(ctx context.Context, purpose Purpose, subject string, record *OTPRecord, now time.Time, retention time.Duration) error
	Consume(ctx context.Context, purpose Purpose, subject string, provided [32]byte, now time.Time, maxAttempts int) error
}

// OTPConfig tunes code generation and verification.
type OTPConfig struct {
	TTL    time.Duration
	Digits int
	// MaxAttempts caps wrong guesses per record. Zero disables the cap.
	MaxAttempts int
}

// OTPStore issues and checks one-time codes.
type OTPStore struct {
	backend OTPBackend
	config  OTPConfig
}

// NewOTPStore validates cfg and binds it to backend.
func NewOTPStore(backend OTPBackend, cfg OTPConfig) (*OTPStore, error) {
	if backend == nil {
		return nil, ErrOTPInvalidConfig
	}
	if cfg.TTL <= 0 || cfg.Digits < 6 || cfg.Digits > 10 || cfg.MaxAttempts < 0 {
		return nil, ErrOTPInvalidConfig
	}
	return &OTPStore{backend: backend, config: cfg}, nil
}

// TTL returns how long a generated code stays valid.
func (s *OTPStore) TTL() time.Duration {
	return s.config.TTL
}

// Generate creates a code for (subject, purpose), valid until now+TTL. Any
// earlier code for the same pair stops verifying once this returns.
func (s *OTPStore) Generate(ctx context.Context, subject string, purpose Purpose, now time.Time) (string, error) {
	code, err := internal.NewOTP(s.config.Digits)
	if err != nil {
		return "", err
	}

	record := &OTPRecord{
		Subject:   subject,
		CodeHash:  HashCode(purpose, subject, code),
		ExpiresAt: now.Add(s.config.TTL).UnixNano(),
	}

	// Kept past expiry so Verify can tell expired from never-issued.
	if err := s.backend.Save(ctx, purpose, subject, record, now, 2*s.config.TTL); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the code for (subject, purpose). A nil error means the code
// matched and has been consumed; it can never match again.
func (s *OTPStore) Verify(ctx context.Context, subject string, purpose Purpose, code string, now time.Time) error {
	if !internal.IsNumericCode(code, s.config.Digits) {
		// Still goes through the backend so a malformed guess costs an attempt.
		code = ""
	}
	return s.backend.Consume(ctx, purpose, subject, HashCode(purpose, subject, code), now, s.config.MaxAttempts)
}

// HashCode binds a code to its key before hashing.
func HashCode(purpose Purpose, subject, code string) [32]byte {
	h := sha256.New()
	h.Write([]byte(purpose))
	h.Write([]byte{0})
	h.Write([]byte(subject))
	h.Write([]byte{0})
	h.Write([]byte(code))

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func otpKey(prefix string, purpose Purpose, subject string) string {
	return prefix + ":" + string(purpose) + ":" + subject
}
