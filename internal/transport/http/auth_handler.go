package http

import (
	"errors"
	"net/http"

	"quiz-grading-service/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(s *auth.Service) *AuthHandler {
	return &AuthHandler{auth: s}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges admin credentials for an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	token, err := h.auth.Login(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}
