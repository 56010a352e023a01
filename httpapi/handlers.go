package httpapi

import (
	"net/http"
	"strings"

	"github.com/MrEthical07/verifact"
	"github.com/MrEthical07/verifact/middleware"
	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         otpCode `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type verifyOTPRequest struct {
	OTP otpCode `json:"otp"`
}

type profileResponse struct {
	UserID            string `json:"userId"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

func toProfileResponse(p verifact.Profile) profileResponse {
	return profileResponse{
		UserID:            p.UserID,
		Name:              p.Name,
		Email:             p.Email,
		IsAccountVerified: p.EmailVerified,
	}
}

// login handles POST /login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := s.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		kind := verifact.KindOf(err)
		s.logger.WithField("reason", kind.String()).Info("login rejected")
		switch kind {
		case verifact.KindBadCredentials:
			writeError(w, http.StatusBadRequest, "Email or password is incorrect")
		case verifact.KindAccountDisabled:
			writeError(w, http.StatusUnauthorized, "Account is disabled")
		case verifact.KindRateLimited:
			writeError(w, http.StatusTooManyRequests, "Too many login attempts")
		default:
			writeError(w, http.StatusUnauthorized, "Authentication failed")
		}
		return
	}

	http.SetCookie(w, s.tokenCookie(res.Token, int(s.svc.TokenTTL().Seconds())))
	writeJSON(w, http.StatusOK, loginResponse{Email: res.Identity.Subject, Token: res.Token})
}

// logout handles POST /logout
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.tokenCookie("", -1))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
}

func (s *Server) tokenCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// isAuthenticated handles GET /is-authenticated
func (s *Server) isAuthenticated(w http.ResponseWriter, r *http.Request) {
	_, ok := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, ok)
}

// register handles POST /register
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := s.svc.Register(r.Context(), verifact.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch verifact.KindOf(err) {
		case verifact.KindValidation:
			writeError(w, http.StatusBadRequest, validationMessage(err))
		case verifact.KindAccountExists:
			writeError(w, http.StatusConflict, "Email already exists")
		default:
			s.logger.WithError(err).Error("registration failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

// profile handles GET /profile
func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	profile, err := s.svc.Profile(r.Context(), id.Subject)
	if err != nil {
		if verifact.KindOf(err) == verifact.KindUserNotFound {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		s.logger.WithError(err).Error("profile lookup failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// sendResetOTP handles POST /send-reset-otp?email=
func (s *Server) sendResetOTP(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := s.svc.SendResetOTP(r.Context(), email); err != nil {
		s.recoveryFailed(w, "send reset otp", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// resetPassword handles POST /reset-password
func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(string(req.OTP)) == "" || strings.TrimSpace(req.NewPassword) == "" {
		writeError(w, http.StatusBadRequest, "Email, OTP and new password are required")
		return
	}

	if err := s.svc.ResetPassword(r.Context(), req.Email, string(req.OTP), req.NewPassword); err != nil {
		s.recoveryFailed(w, "reset password", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// sendOTP handles POST /send-otp
func (s *Server) sendOTP(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	if err := s.svc.SendVerificationOTP(r.Context(), id.Subject); err != nil {
		s.recoveryFailed(w, "send verification otp", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// verifyOTP handles POST /verify-otp
func (s *Server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(string(req.OTP)) == "" {
		writeError(w, http.StatusBadRequest, "Missing OTP")
		return
	}

	id, _ := middleware.IdentityFromContext(r.Context())
	if err := s.svc.ConfirmVerification(r.Context(), id.Subject, string(req.OTP)); err != nil {
		s.recoveryFailed(w, "verify otp", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) errorPage(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func (s *Server) recoveryFailed(w http.ResponseWriter, op string, err error) {
	status, message := recoveryStatus(err)
	entry := s.logger.WithFields(logrus.Fields{
		"op":     op,
		"reason": verifact.KindOf(err).String(),
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Warn("recovery request failed")
	} else {
		entry.Info("recovery request rejected")
	}
	writeError(w, status, message)
}
