package handlers

import (
	"net/http"

	"finfolio-backend/internal/http/cookies"
	"finfolio-backend/internal/http/middleware"
	"finfolio-backend/internal/response"
)

// Refresh rotates the refresh token presented in the cookie and resets both
// cookies. Rejections clear the cookie pair: a failed refresh must not leave
// a usable access cookie behind.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := r.Cookie(cookies.RefreshTokenCookie)
	if err != nil || refreshToken.Value == "" {
		cookies.ClearAuth(w, h.cfg)
		response.WriteErr(w, http.StatusUnauthorized, "Refresh token is required")
		return
	}

	_, tokens, err := h.svc.RefreshTokens(refreshToken.Value, middleware.RequestMeta(r))
	if err != nil {
		cookies.ClearAuth(w, h.cfg)
		response.WriteError(w, err)
		return
	}

	cookies.SetAuth(w, h.cfg, tokens.AccessToken, tokens.RefreshToken)
	response.WriteSuccess(w, http.StatusOK, "Token refreshed", nil)
}
