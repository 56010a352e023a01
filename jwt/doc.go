// Package jwt issues and verifies the compact bearer tokens used by verifact.
//
// Tokens carry only the subject and the issue/expiry instants. Authorities are
// deliberately absent: callers re-resolve the live identity after verification.
//
// # What this package must NOT do
//
//   - Read a clock on its own. Every call takes the instant to evaluate against.
//   - Trust any claim before the signature has been checked.
//   - Log or persist tokens.
package jwt
