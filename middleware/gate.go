package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/verifact"
	"github.com/sirupsen/logrus"
)

// CookieName is the cookie the gate falls back to when no bearer header is
// present.
const CookieName = "jwt"

// Authenticator resolves a token to a current identity. *verifact.Engine
// implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (verifact.Identity, error)
}

type identityContextKey struct{}

// IdentityFromContext returns the identity the gate attached, if any.
func IdentityFromContext(ctx context.Context) (verifact.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(verifact.Identity)
	return id, ok
}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id verifact.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// Gate attaches an identity to requests that carry a valid token.
type Gate struct {
	auth   Authenticator
	public map[string]struct{}
	logger logrus.FieldLogger
}

// NewGate returns a gate that skips authentication for publicPaths, matched
// exactly against the request path.
func NewGate(auth Authenticator, logger logrus.FieldLogger, publicPaths ...string) *Gate {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Gate{auth: auth, public: public, logger: logger}
}

// IsPublic reports whether path bypasses authentication.
func (g *Gate) IsPublic(path string) bool {
	_, ok := g.public[path]
	return ok
}

// Authenticate returns r's context, carrying an identity when r presents a
// valid token for an enabled account. Every failure yields the unchanged
// context.
func (g *Gate) Authenticate(r *http.Request) context.Context {
	ctx := r.Context()
	if g == nil || g.auth == nil || g.IsPublic(r.URL.Path) {
		return ctx
	}

	token, ok := TokenFromRequest(r)
	if !ok {
		return ctx
	}

	id, err := g.auth.Authenticate(ctx, token)
	if err != nil {
		g.logger.WithField("reason", verifact.KindOf(err).String()).Debug("request left anonymous")
		return ctx
	}
	return WithIdentity(ctx, id)
}

// Middleware runs Authenticate before next. It never writes a response.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(g.Authenticate(r)))
	})
}

// RequireAuthenticated answers 401 for anonymous requests.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":true,"message":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest reads the bearer header, then the jwt cookie. The header
// prefix must be exactly "Bearer ".
func TokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
