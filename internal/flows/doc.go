// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunLogin, RunAuthenticate, RunSendResetOTP, etc.)
// accepts a typed dependency struct and returns results without side-effects
// beyond those dependencies. Dependencies are plain function fields so tests
// can stub any single collaborator, and the Engine type stays thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the user store, JWT manager, OTP store,
// notifier, limiters, audit dispatcher, and metrics. They do NOT own any of
// these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import verifact (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency functions.
//   - Pass tokens, passwords, or codes to audit or metrics callbacks.
package flows
