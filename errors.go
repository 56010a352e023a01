package verifact

import "errors"

var (
	// ErrBadCredentials covers unknown email and wrong password alike.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrAccountDisabled is returned by Login when the password matched but the
	// account is administratively disabled.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidSignature covers every token failure except expiry: bad MAC,
	// wrong algorithm, malformed input.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrTokenExpired means the token was well-signed but now >= exp.
	ErrTokenExpired = errors.New("token expired")

	ErrOTPNotFound         = errors.New("otp not found")
	ErrOTPWrongCode        = errors.New("otp code mismatch")
	ErrOTPExpired          = errors.New("otp expired")
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")

	// ErrDeliveryFailure wraps a Notifier error. It is not retried.
	ErrDeliveryFailure = errors.New("notification delivery failed")
	// ErrValidation marks missing or malformed input.
	ErrValidation      = errors.New("validation failed")
	ErrAccountExists   = errors.New("account already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrRateLimited     = errors.New("rate limited")
	// ErrUnavailable reports a backend (Redis, database) failure.
	ErrUnavailable    = errors.New("backend unavailable")
	ErrEngineNotReady = errors.New("engine not ready")
)

// ErrorKind is the tagged classification HTTP adapters switch on.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindBadCredentials
	KindAccountDisabled
	KindInvalidSignature
	KindTokenExpired
	KindOTPNotFound
	KindOTPWrongCode
	KindOTPExpired
	KindDeliveryFailure
	KindValidation
	KindAccountExists
	KindUserNotFound
	KindRateLimited
	KindUnavailable
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	KindBadCredentials:   "bad_credentials",
	KindAccountDisabled:  "account_disabled",
	KindInvalidSignature: "invalid_signature",
	KindTokenExpired:     "token_expired",
	KindOTPNotFound:      "otp_not_found",
	KindOTPWrongCode:     "otp_wrong_code",
	KindOTPExpired:       "otp_expired",
	KindDeliveryFailure:  "delivery_failure",
	KindValidation:       "validation",
	KindAccountExists:    "account_exists",
	KindUserNotFound:     "user_not_found",
	KindRateLimited:      "rate_limited",
	KindUnavailable:      "unavailable",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// KindOf classifies err. Nil and unrecognised errors are KindUnknown.
// ErrOTPAttemptsExceeded reports as KindOTPNotFound since the record is gone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrBadCredentials):
		return KindBadCredentials
	case errors.Is(err, ErrAccountDisabled):
		return KindAccountDisabled
	case errors.Is(err, ErrInvalidSignature):
		return KindInvalidSignature
	case errors.Is(err, ErrTokenExpired):
		return KindTokenExpired
	case errors.Is(err, ErrOTPNotFound), errors.Is(err, ErrOTPAttemptsExceeded):
		return KindOTPNotFound
	case errors.Is(err, ErrOTPWrongCode):
		return KindOTPWrongCode
	case errors.Is(err, ErrOTPExpired):
		return KindOTPExpired
	case errors.Is(err, ErrDeliveryFailure):
		return KindDeliveryFailure
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAccountExists):
		return KindAccountExists
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindUnknown
	}
}
