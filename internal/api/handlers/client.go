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
	"github.com/jonas/postflow/internal/posts"
	"gorm.io/gorm"
)

type ClientHandler struct {
	db        *gorm.DB
	posts     *posts.Service
	dashboard *dashboard.Service
}

func NewClientHandler(db *gorm.DB, postService *posts.Service, dashboardService *dashboard.Service) *ClientHandler {
	return &ClientHandler{db: db, posts: postService, dashboard: dashboardService}
}

type ClientDashboardResponse struct {
	Stats         *dashboard.ClientStats `json:"stats"`
	PendingPosts  []dashboard.PostView   `json:"pending_posts"`
	CalendarPosts []dashboard.PostView   `json:"calendar_posts"`
}

// Dashboard handles GET /api/v1/client/dashboard
func (h *ClientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var client models.Client
	if err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "No client found for this user"})
		} else {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to resolve client"})
		}
		return
	}

	stats, pending, calendar, err := h.dashboard.ClientDashboard(r.Context(), client.ID, time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	writeJSON(w, http.StatusOK, ClientDashboardResponse{
		Stats:         stats,
		PendingPosts:  pending,
		CalendarPosts: calendar,
	})
}

// Approve handles POST /api/v1/client/posts/{id}/approve
func (h *ClientHandler) Approve(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePostID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Approve(r.Context(), middleware.GetUserID(r.Context()), postID)
	if err != nil {
		writePostError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

type RejectRequest struct {
	Feedback string `json:"feedback"`
}

// Reject handles POST /api/v1/client/posts/{id}/reject
func (h *ClientHandler) Reject(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePostID(w, r)
	if !ok {
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if ok, msg := validation.IsValidFeedback(req.Feedback); !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"feedback": msg},
		})
		return
	}

	post, err := h.posts.Reject(r.Context(), middleware.GetUserID(r.Context()), postID, req.Feedback)
	if err != nil {
		writePostError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

// Comment handles POST /api/v1/client/posts/{id}/comment
func (h *ClientHandler) Comment(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePostID(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if ok, msg := validation.IsValidFeedback(req.Comment); !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"comment": msg},
		})
		return
	}

	comment, err := h.posts.AddComment(r.Context(), middleware.GetUserID(r.Context()), postID, req.Comment)
	if err != nil {
		writePostError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func parsePostID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid post ID"})
		return uuid.Nil, false
	}
	return postID, true
}

func writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posts.ErrNoTenant), errors.Is(err, posts.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Unauthorized"})
	case errors.Is(err, posts.ErrPostNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Post not found"})
	case errors.Is(err, posts.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Invalid status transition"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Operation failed"})
	}
}
