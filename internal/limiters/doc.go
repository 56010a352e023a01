// Package limiters provides the OTP throttles built on internal/rate.
//
// [OTPLimiter] caps code sends and code confirmations per (purpose, subject)
// and optionally per client IP, using fixed windows.
//
// All limiters are nil-safe: calling any method on a nil receiver returns nil.
//
// # What this package must NOT do
//
//   - Import verifact or any sibling internal package except internal/rate.
//   - Make policy decisions beyond counting; flow functions decide consequences.
package limiters
