// Package httpapi exposes a verifact Engine over HTTP.
//
// Routes are mounted under a base path (default /api/v1.0) on a gorilla/mux
// router. Every request passes through the middleware gate, which attaches
// an identity when a valid token is presented and otherwise leaves the
// request anonymous; handlers that need a caller wrap themselves in
// middleware.RequireAuthenticated.
//
// Error responses share one body shape:
//
//	{"error": true, "message": "..."}
//
// Messages are fixed per error kind and never carry internal error text.
package httpapi
