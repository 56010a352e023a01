// Package internal holds helpers private to verifact.
//
// # Sub-packages
//
//   - audit: async security-event dispatch (Dispatcher + Sink implementations)
//   - flows: flow orchestrators for login and OTP-based recovery
//   - limiters: Redis fixed-window throttles for OTP sends and failed logins
//   - stores: one-time-passcode stores (Redis and in-memory)
package internal
