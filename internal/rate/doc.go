// Package rate provides the Redis fixed-window counter used by every
// verifact throttle, plus the failed-login limiter built directly on it.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - vl: failed logins per email
//   - vli: failed logins per IP
//
// # What this package must NOT do
//
//   - Implement OTP policies (those live in internal/limiters).
//   - Be imported outside the verifact module.
package rate
