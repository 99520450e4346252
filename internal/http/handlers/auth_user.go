package handlers

import (
	"net/http"

	"finfolio-backend/internal/http/middleware"
	"finfolio-backend/internal/response"
)

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ac, ok := middleware.FromContext(r.Context())
	if !ok || ac.UserID == "" {
		response.WriteErr(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	user, err := h.svc.GetCurrentUser(ac.UserID)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "Current user fetched successfully", map[string]interface{}{
		"user": user.Public(),
	})
}
