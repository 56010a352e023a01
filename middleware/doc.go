// Package middleware exposes the HTTP authentication gate built on top of
// verifact.Engine.
//
// # Gate
//
// [Gate.Authenticate] turns a request into a context that may carry an
// [verifact.Identity]. [Gate.Middleware] applies it before every handler.
// The gate never rejects a request: a missing, malformed, expired or
// revoked-account token leaves the request anonymous, and handlers decide
// with [IdentityFromContext] or [RequireAuthenticated].
//
// # Token transport
//
// The token is read from an `Authorization: Bearer <token>` header, falling
// back to the `jwt` cookie.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Log tokens.
//   - Make authorization decisions beyond authenticated/anonymous.
package middleware
