package handlers

import (
	"net/http"

	"finfolio-backend/internal/http/cookies"
	"finfolio-backend/internal/http/middleware"
	"finfolio-backend/internal/response"
)

// Logout revokes the calling session only. Other devices stay signed in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok || ac.SessionID == "" {
		response.WriteErr(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.svc.SignOutUser(ac.SessionID); err != nil {
		response.WriteError(w, err)
		return
	}

	cookies.ClearAuth(w, h.cfg)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll revokes every session for the user and bumps the refresh token
// version, invalidating outstanding refresh tokens everywhere.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok || ac.UserID == "" {
		response.WriteErr(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.svc.SignOutAllSessions(ac.UserID); err != nil {
		response.WriteError(w, err)
		return
	}

	cookies.ClearAuth(w, h.cfg)
	w.WriteHeader(http.StatusNoContent)
}
