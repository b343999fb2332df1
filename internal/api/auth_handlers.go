package api

import (
	"errors"
	"net/http"

	"github.com/soaringjerry/Sanctuary/internal/metrics"
	"github.com/soaringjerry/Sanctuary/internal/middleware"
	"github.com/soaringjerry/Sanctuary/internal/services"
)

// POST /api/auth/signup
func (rt *Router) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := rt.svc.Auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := rt.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			metrics.RecordAuthFailure("credentials")
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/auth/check-email
func (rt *Router) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	exists, err := rt.svc.Auth.EmailExists(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// POST /api/auth/forgot-password
func (rt *Router) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := rt.svc.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

// POST /api/auth/reset-password
func (rt *Router) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := rt.svc.Auth.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrResetCodeInvalid) || errors.Is(err, services.ErrResetCodeExhausted) {
			metrics.RecordAuthFailure("reset_code")
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GET /api/me
func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.ClaimsFromContext(r.Context())
	u, err := rt.svc.Store.GetUser(r.Context(), c.UID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if u == nil {
		writeServiceError(w, r, services.ErrUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"created_at": u.CreatedAt,
		"expires_at": c.ExpiresAt,
	})
}
