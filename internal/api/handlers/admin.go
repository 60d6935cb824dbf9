package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/api/dto"
	"github.com/jonas/postflow/internal/api/middleware"
	"github.com/jonas/postflow/internal/api/validation"
	"github.com/jonas/postflow/internal/dashboard"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/invites"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db        *gorm.DB
	dashboard *dashboard.Service
	invites   *invites.Service
}

func NewAdminHandler(db *gorm.DB, dashboardService *dashboard.Service, inviteService *invites.Service) *AdminHandler {
	return &AdminHandler{db: db, dashboard: dashboardService, invites: inviteService}
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.AdminDashboard(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type AgenciesResponse struct {
	Stats    *dashboard.AgencyListStats `json:"stats"`
	Agencies []dashboard.AgencyRow      `json:"agencies"`
}

// Agencies handles GET /api/v1/admin/agencies
func (h *AdminHandler) Agencies(w http.ResponseWriter, r *http.Request) {
	stats, rows, err := h.dashboard.AgencyOverview(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load agencies"})
		return
	}
	writeJSON(w, http.StatusOK, AgenciesResponse{Stats: stats, Agencies: rows})
}

// Activate handles PUT /api/v1/admin/agencies/{id}/activate
func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.TenantStatusActive)
}

// Deactivate handles PUT /api/v1/admin/agencies/{id}/deactivate
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.TenantStatusInactive)
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request, status models.TenantStatus) {
	agencyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid agency ID"})
		return
	}

	var agency models.Agency
	if err := h.db.WithContext(r.Context()).First(&agency, agencyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Agency not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load agency"})
		return
	}

	if agency.Status != status {
		if err := h.db.WithContext(r.Context()).Model(&agency).Update("status", status).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update agency"})
			return
		}
	}

	writeJSON(w, http.StatusOK, agency)
}

type InviteAgencyRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
}

func (r InviteAgencyRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email is invalid"
	}
	if r.CompanyName == "" {
		errors["company_name"] = "Company name is required"
	}
	return errors
}

// InviteAgency handles POST /api/v1/admin/agencies
func (h *AdminHandler) InviteAgency(w http.ResponseWriter, r *http.Request) {
	var req InviteAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	inviterName := middleware.GetUserEmail(r.Context())

	agency, err := h.invites.InviteAgency(r.Context(), inviterName, invites.InviteInput{
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		if errors.Is(err, invites.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already in use"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to invite agency"})
		return
	}

	writeJSON(w, http.StatusCreated, agency)
}
