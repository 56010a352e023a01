package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/verifact"
	"github.com/MrEthical07/verifact/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// DefaultBasePath is the route prefix used when Options.BasePath is empty.
const DefaultBasePath = "/api/v1.0"

// RequestIDHeader carries the per-request ID on responses.
const RequestIDHeader = "X-Request-ID"

// Service is the engine surface the handlers call. *verifact.Engine
// implements it.
type Service interface {
	middleware.Authenticator
	Login(ctx context.Context, email, password string) (*verifact.LoginResult, error)
	Register(ctx context.Context, req verifact.RegisterRequest) (verifact.Profile, error)
	Profile(ctx context.Context, subject string) (verifact.Profile, error)
	SendVerificationOTP(ctx context.Context, subject string) error
	ConfirmVerification(ctx context.Context, subject, code string) error
	SendResetOTP(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	TokenTTL() time.Duration
}

// Options configures a Server.
type Options struct {
	BasePath string
	// CookieSecure adds the Secure attribute to the jwt cookie.
	CookieSecure bool
	Logger       logrus.FieldLogger
}

// Server routes HTTP requests to a Service.
type Server struct {
	svc          Service
	gate         *middleware.Gate
	logger       logrus.FieldLogger
	basePath     string
	cookieSecure bool
	router       *mux.Router
}

// New builds a Server and its routes.
func New(svc Service, opts Options) *Server {
	base := opts.BasePath
	if base == "" {
		base = DefaultBasePath
	}
	// "/" mounts at the root.
	base = strings.TrimSuffix(base, "/")
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		svc:          svc,
		logger:       logger,
		basePath:     base,
		cookieSecure: opts.CookieSecure,
	}
	s.gate = middleware.NewGate(svc, logger, s.publicPaths()...)
	s.router = s.routes()
	return s
}

func (s *Server) publicPaths() []string {
	names := []string{"login", "register", "send-reset-otp", "reset-password", "logout", "error"}
	paths := make([]string, 0, len(names))
	for _, n := range names {
		paths = append(paths, s.basePath+"/"+n)
	}
	return paths
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	api := r
	if s.basePath != "" {
		api = r.PathPrefix(s.basePath).Subrouter()
	}

	api.HandleFunc("/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	api.HandleFunc("/is-authenticated", s.isAuthenticated).Methods(http.MethodGet)
	api.HandleFunc("/send-reset-otp", s.sendResetOTP).Methods(http.MethodPost)
	api.HandleFunc("/reset-password", s.resetPassword).Methods(http.MethodPost)
	api.HandleFunc("/error", s.errorPage)

	api.Handle("/profile", middleware.RequireAuthenticated(http.HandlerFunc(s.profile))).Methods(http.MethodGet)
	api.Handle("/send-otp", middleware.RequireAuthenticated(http.HandlerFunc(s.sendOTP))).Methods(http.MethodPost)
	api.Handle("/verify-otp", middleware.RequireAuthenticated(http.HandlerFunc(s.verifyOTP))).Methods(http.MethodPost)

	return r
}

// Handler returns the full middleware chain: request logging, client IP,
// the authentication gate, then the router.
func (s *Server) Handler() http.Handler {
	return s.logRequests(withClientIP(s.gate.Middleware(s.router)))
}

// Router exposes the underlying router so callers can mount extra routes
// such as /metrics.
func (s *Server) Router() *mux.Router {
	return s.router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("http request")
	})
}

func withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(verifact.WithClientIP(r.Context(), ip)))
	})
}
