package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonas/postflow/internal/api/dto"
	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/invites"
)

type SetupPasswordHandler struct {
	invites *invites.Service
}

func NewSetupPasswordHandler(inviteService *invites.Service) *SetupPasswordHandler {
	return &SetupPasswordHandler{invites: inviteService}
}

type SetupPasswordInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Show handles GET /setup-password/{token}. The token is verified before
// anything is returned; tampered or expired links fail closed.
func (h *SetupPasswordHandler) Show(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	user, err := h.invites.VerifyToken(r.Context(), token)
	if err != nil {
		writeTokenError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SetupPasswordInfo{Email: user.Email, Name: user.Name})
}

// Store handles POST /setup-password: sets the password, activates the
// tenant, and returns a logged-in session.
func (h *SetupPasswordHandler) Store(w http.ResponseWriter, r *http.Request) {
	var req dto.SetupPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.invites.Redeem(r.Context(), req.Token, req.Password)
	if err != nil {
		writeTokenError(w, err)
		return
	}

	setSessionCookie(w, resp.Token)
	writeJSON(w, http.StatusOK, authResponse(resp))
}

func writeTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "The invitation link has expired"})
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, invites.ErrUserNotFound):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "The invitation link is invalid"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to process invitation"})
	}
}
