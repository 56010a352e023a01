// Package security summarizes the effective security posture of an engine
// configuration. It performs no I/O.
package security
