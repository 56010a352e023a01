package verifact

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindUnknown},
		{errors.New("boom"), KindUnknown},
		{ErrBadCredentials, KindBadCredentials},
		{ErrAccountDisabled, KindAccountDisabled},
		{ErrInvalidSignature, KindInvalidSignature},
		{ErrTokenExpired, KindTokenExpired},
		{ErrOTPNotFound, KindOTPNotFound},
		{ErrOTPAttemptsExceeded, KindOTPNotFound},
		{ErrOTPWrongCode, KindOTPWrongCode},
		{ErrOTPExpired, KindOTPExpired},
		{errors.Join(ErrDeliveryFailure, errors.New("smtp: 421")), KindDeliveryFailure},
		{fmt.Errorf("%w: name should not be empty", ErrValidation), KindValidation},
		{ErrAccountExists, KindAccountExists},
		{ErrUserNotFound, KindUserNotFound},
		{ErrRateLimited, KindRateLimited},
		{fmt.Errorf("%w: dial tcp", ErrUnavailable), KindUnavailable},
	}

	for _, tc := range tests {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestErrorKindString(t *testing.T) {
	if KindOTPWrongCode.String() != "otp_wrong_code" {
		t.Fatalf("unexpected name %q", KindOTPWrongCode.String())
	}
	if ErrorKind(999).String() != "unknown" {
		t.Fatal("out-of-range kinds must stringify as unknown")
	}
}
