// Package verifact provides JWT bearer authentication with a one-time-passcode
// channel for email verification and password reset.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// verifact is the public surface. It exposes [Engine], [Builder], [Config], the
// collaborator interfaces [UserStore] and [Notifier], and value types
// ([Identity], [LoginResult], [Profile]). Flow orchestration, OTP persistence,
// rate limiting and audit dispatch live under internal/ and are never exported.
// Tokens are stateless: there is no server-side revocation, so a token stays
// valid until it expires even after the password behind it changes.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Log tokens, passwords, or one-time codes.
//   - Hold any store lock while calling the UserStore or Notifier.
//   - Import any sub-package that re-imports verifact (no import cycles).
package verifact
