package internal

import "testing"

func TestNewOTPShape(t *testing.T) {
	for _, digits := range []int{6, 8, 10} {
		code, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d): %v", digits, err)
		}
		if !IsNumericCode(code, digits) {
			t.Fatalf("NewOTP(%d) = %q, want %d digits", digits, code, digits)
		}
	}
}

func TestNewOTPRejectsBadLength(t *testing.T) {
	for _, digits := range []int{0, 5, 11} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("NewOTP(%d): expected error", digits)
		}
	}
}

func TestIsNumericCode(t *testing.T) {
	cases := map[string]bool{
		"000000":  true,
		"123456":  true,
		"12345":   false,
		"1234567": false,
		"12a456":  false,
		"":        false,
	}
	for code, want := range cases {
		if got := IsNumericCode(code, 6); got != want {
			t.Fatalf("IsNumericCode(%q) = %v, want %v", code, got, want)
		}
	}
}
