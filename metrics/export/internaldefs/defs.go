package internaldefs

import (
	"github.com/MrEthical07/verifact"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   verifact.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   verifact.MetricID
	Name string
	Help string
}

// AuditDroppedName is exported alongside the engine counters.
const (
	AuditDroppedName = "verifact_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var CounterDefs = []CounterDef{
	{ID: verifact.MetricLoginSuccess, Name: "verifact_login_success_total", Help: "Successful logins."},
	{ID: verifact.MetricLoginFailure, Name: "verifact_login_failure_total", Help: "Logins rejected for bad credentials or backend failure."},
	{ID: verifact.MetricLoginDisabled, Name: "verifact_login_disabled_total", Help: "Logins rejected because the account is disabled."},
	{ID: verifact.MetricLoginRateLimited, Name: "verifact_login_rate_limited_total", Help: "Logins refused by the failed-login throttle."},
	{ID: verifact.MetricTokenValid, Name: "verifact_token_valid_total", Help: "Tokens that resolved to a live identity."},
	{ID: verifact.MetricTokenInvalid, Name: "verifact_token_invalid_total", Help: "Tokens rejected for signature or format."},
	{ID: verifact.MetricTokenExpired, Name: "verifact_token_expired_total", Help: "Well-signed tokens past expiry."},
	{ID: verifact.MetricTokenUnknownSubject, Name: "verifact_token_unknown_subject_total", Help: "Valid tokens whose account is gone or disabled."},
	{ID: verifact.MetricOTPSent, Name: "verifact_otp_sent_total", Help: "One-time codes generated and delivered."},
	{ID: verifact.MetricOTPSendFailure, Name: "verifact_otp_send_failure_total", Help: "One-time codes that could not be stored or delivered."},
	{ID: verifact.MetricOTPConsumed, Name: "verifact_otp_consumed_total", Help: "One-time codes consumed."},
	{ID: verifact.MetricOTPRejected, Name: "verifact_otp_rejected_total", Help: "Code checks that did not consume a code."},
	{ID: verifact.MetricOTPRateLimited, Name: "verifact_otp_rate_limited_total", Help: "Code sends or checks refused by the throttle."},
	{ID: verifact.MetricEmailVerified, Name: "verifact_email_verified_total", Help: "Accounts marked verified."},
	{ID: verifact.MetricPasswordReset, Name: "verifact_password_reset_total", Help: "Passwords replaced through reset."},
	{ID: verifact.MetricResetUnknownEmail, Name: "verifact_password_reset_unknown_email_total", Help: "Reset requests for unknown emails answered as success."},
	{ID: verifact.MetricAccountCreated, Name: "verifact_account_created_total", Help: "Registered accounts."},
	{ID: verifact.MetricAccountDuplicate, Name: "verifact_account_duplicate_total", Help: "Registrations rejected as duplicate."},
}

var HistogramDefs = []HistogramDef{
	{ID: verifact.MetricValidateLatency, Name: "verifact_validate_latency_seconds", Help: "Token authentication latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The engine
// keeps one more bucket for +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf last, for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling when raw
// is short.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
