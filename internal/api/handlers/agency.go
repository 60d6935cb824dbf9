package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/api/dto"
	"github.com/jonas/postflow/internal/api/middleware"
	"github.com/jonas/postflow/internal/api/validation"
	"github.com/jonas/postflow/internal/dashboard"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/invites"
	"github.com/jonas/postflow/internal/posts"
	"gorm.io/gorm"
)

// maxUploadBytes bounds a single post's multipart body.
const maxUploadBytes = 32 << 20

type AgencyHandler struct {
	db        *gorm.DB
	posts     *posts.Service
	dashboard *dashboard.Service
	invites   *invites.Service
}

func NewAgencyHandler(db *gorm.DB, postService *posts.Service, dashboardService *dashboard.Service, inviteService *invites.Service) *AgencyHandler {
	return &AgencyHandler{db: db, posts: postService, dashboard: dashboardService, invites: inviteService}
}

// requireAgency resolves the agency row owned by the authenticated user.
func (h *AgencyHandler) requireAgency(w http.ResponseWriter, r *http.Request) (*models.Agency, bool) {
	userID := middleware.GetUserID(r.Context())

	var agency models.Agency
	if err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).First(&agency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "No agency found for this user"})
		} else {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to resolve agency"})
		}
		return nil, false
	}
	return &agency, true
}

type AgencyDashboardResponse struct {
	Stats   *dashboard.AgencyStats   `json:"stats"`
	Posts   []dashboard.PostView     `json:"posts"`
	Clients []dashboard.ClientOption `json:"clients"`
}

// Dashboard handles GET /api/v1/agency/dashboard
func (h *AgencyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	agency, ok := h.requireAgency(w, r)
	if !ok {
		return
	}

	stats, views, options, err := h.dashboard.AgencyDashboard(r.Context(), agency.ID, time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	writeJSON(w, http.StatusOK, AgencyDashboardResponse{Stats: stats, Posts: views, Clients: options})
}

type AgencyClientsResponse struct {
	Stats   *dashboard.AgencyClientStats `json:"stats"`
	Clients []dashboard.ClientRow        `json:"clients"`
}

// Clients handles GET /api/v1/agency/clients
func (h *AgencyHandler) Clients(w http.ResponseWriter, r *http.Request) {
	agency, ok := h.requireAgency(w, r)
	if !ok {
		return
	}

	stats, rows, err := h.dashboard.ClientOverview(r.Context(), agency.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load clients"})
		return
	}

	writeJSON(w, http.StatusOK, AgencyClientsResponse{Stats: stats, Clients: rows})
}

// InviteClient handles POST /api/v1/agency/clients
func (h *AgencyHandler) InviteClient(w http.ResponseWriter, r *http.Request) {
	var req InviteAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	userID := middleware.GetUserID(r.Context())

	client, err := h.invites.InviteClient(r.Context(), userID, invites.InviteInput{
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		switch {
		case errors.Is(err, invites.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already in use"})
		case errors.Is(err, invites.ErrNoAgency):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "No agency found for this user"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to invite client"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

// PostCreatedResponse is the stored post plus its media resolved to public URLs.
type PostCreatedResponse struct {
	*models.Post
	MediaURLs []string `json:"media_urls"`
}

// CreatePost handles POST /api/v1/agency/posts (multipart with media files)
func (h *AgencyHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart body"})
		return
	}

	errs := make(map[string]string)

	clientID, err := uuid.Parse(r.FormValue("client_id"))
	if err != nil {
		errs["client_id"] = "Client ID is required"
	}
	content := r.FormValue("content")
	if content == "" {
		errs["content"] = "Content is required"
	}
	platform := r.FormValue("platform")
	if platform == "" {
		errs["platform"] = "Platform is required"
	}
	postType := r.FormValue("post_type")
	if postType == "" {
		errs["post_type"] = "Post type is required"
	}
	scheduleDate, ok := validation.ParseScheduleDate(r.FormValue("schedule_date"))
	if !ok {
		errs["schedule_date"] = "Schedule date is required"
	}

	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	input := posts.CreateInput{
		ClientID:     clientID,
		Title:        r.FormValue("title"),
		Content:      content,
		ScheduleDate: scheduleDate,
		Platform:     platform,
		PostType:     postType,
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["media"] {
			f, err := fh.Open()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unreadable media file"})
				return
			}
			defer f.Close()
			input.Media = append(input.Media, posts.Upload{Filename: fh.Filename, Data: f})
		}
	}

	post, err := h.posts.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		switch {
		case errors.Is(err, posts.ErrNoTenant):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "No agency found for this user"})
		case errors.Is(err, posts.ErrClientNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Client not found for this agency"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create post"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, PostCreatedResponse{Post: post, MediaURLs: h.posts.MediaURLs(post)})
}

// DeletePost handles DELETE /api/v1/agency/posts/{id}
func (h *AgencyHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid post ID"})
		return
	}

	err = h.posts.Delete(r.Context(), middleware.GetUserID(r.Context()), postID)
	if err != nil {
		switch {
		case errors.Is(err, posts.ErrNoTenant), errors.Is(err, posts.ErrUnauthorized):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Unauthorized"})
		case errors.Is(err, posts.ErrPostNotFound):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Post not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete post"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Post deleted"})
}
