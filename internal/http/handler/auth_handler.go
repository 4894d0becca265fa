package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/service"
)

// AuthHandler serves the login endpoints of both realms
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/login and POST /api/gem/login. The realm is
// fixed by the route, not by the request body.
func (h *AuthHandler) Login(realm domain.Realm) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			respondValidationError(w, err)
			return
		}

		resp, err := h.authService.Login(r.Context(), realm, &req)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
