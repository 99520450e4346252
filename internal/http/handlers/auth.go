package handlers

import (
	"encoding/json"
	"net/http"

	"finfolio-backend/internal/config"
	"finfolio-backend/internal/http/cookies"
	"finfolio-backend/internal/http/middleware"
	"finfolio-backend/internal/response"
	"finfolio-backend/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
	cfg *config.Auth
}

func NewAuthHandler(svc *services.AuthService, cfg *config.Auth) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.WriteErr(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.svc.RegisterUser(in.Name, in.Email, in.Password, middleware.RequestMeta(r))
	if err != nil {
		response.WriteError(w, err)
		return
	}

	cookies.SetAuth(w, h.cfg, result.Tokens.AccessToken, result.Tokens.RefreshToken)
	response.WriteSuccess(w, http.StatusCreated, "Registration successful", map[string]interface{}{
		"user": result.User.Public(),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.WriteErr(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.svc.SignInUser(in.Email, in.Password, middleware.RequestMeta(r))
	if err != nil {
		response.WriteError(w, err)
		return
	}

	cookies.SetAuth(w, h.cfg, result.Tokens.AccessToken, result.Tokens.RefreshToken)
	response.WriteSuccess(w, http.StatusOK, "Login successful", map[string]interface{}{
		"user": result.User.Public(),
	})
}
