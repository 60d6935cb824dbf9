package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/storage"
	"gorm.io/gorm"
)

// Service computes per-role read projections. Everything is queried fresh
// on each request; there is no cache to invalidate.
type Service struct {
	db    *gorm.DB
	store storage.Store
}

func NewService(db *gorm.DB, store storage.Store) *Service {
	return &Service{db: db, store: store}
}

// PostView is the listing/calendar projection of a post.
type PostView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title,omitempty"`
	Content      string   `json:"content"`
	ScheduleDate string   `json:"schedule_date"`
	Platform     string   `json:"platform"`
	PostType     string   `json:"post_type"`
	Status       string   `json:"status"`
	Feedback     string   `json:"feedback,omitempty"`
	Comment      string   `json:"comment,omitempty"`
	ClientName   string   `json:"client,omitempty"`
	Media        []string `json:"media"`
	CreatedAt    string   `json:"created_at"`
}

func (s *Service) postView(post *models.Post) PostView {
	media := make([]string, 0, len(post.Media))
	for _, p := range post.Media {
		if p == "" {
			continue
		}
		media = append(media, s.store.URL(p))
	}

	v := PostView{
		ID:           post.ID.String(),
		Title:        post.Title,
		Content:      post.Content,
		ScheduleDate: post.ScheduleDate.Format(time.RFC3339),
		Platform:     post.Platform,
		PostType:     post.PostType,
		Status:       string(post.Status),
		Feedback:     post.Feedback,
		Comment:      post.Comment,
		Media:        media,
		CreatedAt:    post.CreatedAt.Format(time.RFC3339),
	}
	if post.Client != nil {
		v.ClientName = post.Client.CompanyName
	}
	return v
}

type AdminStats struct {
	TotalAgencies  int64 `json:"total_agencies"`
	TotalClients   int64 `json:"total_clients"`
	PublishedPosts int64 `json:"published_posts"`
}

func (s *Service) AdminDashboard(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Agency{}).Count(&stats.TotalAgencies).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished).
		Count(&stats.PublishedPosts).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

type AgencyListStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Pending   int64 `json:"pending"`
	Suspended int64 `json:"suspended"`
}

type AgencyRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ClientCount int64  `json:"clients"`
	Status      string `json:"status"`
	Created     string `json:"created"`
}

// AgencyOverview backs the admin agencies page: per-status counts plus a
// listing with owner email and client count.
func (s *Service) AgencyOverview(ctx context.Context) (*AgencyListStats, []AgencyRow, error) {
	db := s.db.WithContext(ctx)

	var stats AgencyListStats
	if err := db.Model(&models.Agency{}).Count(&stats.Total).Error; err != nil {
		return nil, nil, err
	}
	counts := map[models.TenantStatus]*int64{
		models.TenantStatusActive:   &stats.Active,
		models.TenantStatusPending:  &stats.Pending,
		models.TenantStatusInactive: &stats.Suspended,
	}
	for status, dst := range counts {
		if err := db.Model(&models.Agency{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, nil, err
		}
	}

	var agencies []models.Agency
	if err := db.Preload("User").Order("created_at DESC").Find(&agencies).Error; err != nil {
		return nil, nil, err
	}

	rows := make([]AgencyRow, 0, len(agencies))
	for _, a := range agencies {
		var clientCount int64
		if err := db.Model(&models.Client{}).Where("agency_id = ?", a.ID).Count(&clientCount).Error; err != nil {
			return nil, nil, err
		}
		row := AgencyRow{
			ID:          a.ID.String(),
			Name:        a.CompanyName,
			ClientCount: clientCount,
			Status:      string(a.Status),
			Created:     a.CreatedAt.Format("2006-01-02"),
		}
		if a.User != nil {
			row.Email = a.User.Email
		}
		rows = append(rows, row)
	}

	return &stats, rows, nil
}

type AgencyStats struct {
	TotalClients     int64 `json:"total_clients"`
	ScheduledPosts   int64 `json:"scheduled_posts"`
	PendingApprovals int64 `json:"pending_approvals"`
	PublishedToday   int64 `json:"published_today"`
	RejectedPosts    int64 `json:"rejected_posts"`
}

type ClientOption struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
}

// AgencyDashboard returns the agency's counts, its full post listing with
// client names and media URLs, and the client options for the compose form.
func (s *Service) AgencyDashboard(ctx context.Context, agencyID uuid.UUID, now time.Time) (*AgencyStats, []PostView, []ClientOption, error) {
	db := s.db.WithContext(ctx)

	var stats AgencyStats
	if err := db.Model(&models.Client{}).Where("agency_id = ?", agencyID).Count(&stats.TotalClients).Error; err != nil {
		return nil, nil, nil, err
	}

	statusCounts := []struct {
		status models.PostStatus
		dst    *int64
	}{
		{models.PostStatusScheduled, &stats.ScheduledPosts},
		{models.PostStatusPending, &stats.PendingApprovals},
		{models.PostStatusRejected, &stats.RejectedPosts},
	}
	for _, c := range statusCounts {
		if err := db.Model(&models.Post{}).
			Where("agency_id = ? AND status = ?", agencyID, c.status).
			Count(c.dst).Error; err != nil {
			return nil, nil, nil, err
		}
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.Post{}).
		Where("agency_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			agencyID, models.PostStatusPublished, dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&stats.PublishedToday).Error; err != nil {
		return nil, nil, nil, err
	}

	var posts []models.Post
	if err := db.Preload("Client").
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, nil, nil, err
	}
	views := make([]PostView, len(posts))
	for i := range posts {
		views[i] = s.postView(&posts[i])
	}

	var clients []models.Client
	if err := db.Where("agency_id = ?", agencyID).Find(&clients).Error; err != nil {
		return nil, nil, nil, err
	}
	options := make([]ClientOption, len(clients))
	for i, c := range clients {
		options[i] = ClientOption{ID: c.ID.String(), CompanyName: c.CompanyName}
	}

	return &stats, views, options, nil
}

type AgencyClientStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Pending  int64 `json:"pending"`
	Inactive int64 `json:"inactive"`
}

type ClientRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	CompanyName  string `json:"company_name"`
	Status       string `json:"status"`
	PendingPosts int64  `json:"pending_posts"`
	Joined       string `json:"joined"`
}

// ClientOverview backs the agency's client page.
func (s *Service) ClientOverview(ctx context.Context, agencyID uuid.UUID) (*AgencyClientStats, []ClientRow, error) {
	db := s.db.WithContext(ctx)

	var stats AgencyClientStats
	if err := db.Model(&models.Client{}).Where("agency_id = ?", agencyID).Count(&stats.Total).Error; err != nil {
		return nil, nil, err
	}
	counts := map[models.TenantStatus]*int64{
		models.TenantStatusActive:   &stats.Active,
		models.TenantStatusPending:  &stats.Pending,
		models.TenantStatusInactive: &stats.Inactive,
	}
	for status, dst := range counts {
		if err := db.Model(&models.Client{}).
			Where("agency_id = ? AND status = ?", agencyID, status).
			Count(dst).Error; err != nil {
			return nil, nil, err
		}
	}

	var clients []models.Client
	if err := db.Preload("User").Where("agency_id = ?", agencyID).Find(&clients).Error; err != nil {
		return nil, nil, err
	}

	rows := make([]ClientRow, 0, len(clients))
	for _, c := range clients {
		var pending int64
		if err := db.Model(&models.Post{}).
			Where("client_id = ? AND status = ?", c.ID, models.PostStatusPending).
			Count(&pending).Error; err != nil {
			return nil, nil, err
		}
		row := ClientRow{
			ID:           c.ID.String(),
			CompanyName:  c.CompanyName,
			Status:       string(c.Status),
			PendingPosts: pending,
			Joined:       c.CreatedAt.Format("2006-01-02"),
		}
		if c.User != nil {
			row.Name = c.User.Name
			row.Email = c.User.Email
		}
		rows = append(rows, row)
	}

	return &stats, rows, nil
}

type ClientStats struct {
	PendingApprovals  int64 `json:"pending_approvals"`
	ApprovedThisMonth int64 `json:"approved_this_month"`
	UpcomingPosts     int64 `json:"upcoming_posts"`
	Rejected          int64 `json:"rejected"`
}

// calendarStatuses are the states shown on the client's calendar.
var calendarStatuses = []models.PostStatus{
	models.PostStatusPending,
	models.PostStatusScheduled,
	models.PostStatusApproved,
	models.PostStatusPublished,
}

// ClientDashboard returns the client's counts, pending posts newest first,
// and the calendar projection ordered by schedule date.
func (s *Service) ClientDashboard(ctx context.Context, clientID uuid.UUID, now time.Time) (*ClientStats, []PostView, []PostView, error) {
	db := s.db.WithContext(ctx)

	var stats ClientStats
	if err := db.Model(&models.Post{}).
		Where("client_id = ? AND status = ?", clientID, models.PostStatusPending).
		Count(&stats.PendingApprovals).Error; err != nil {
		return nil, nil, nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.Post{}).
		Where("client_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			clientID, models.PostStatusApproved, monthStart, monthStart.AddDate(0, 1, 0)).
		Count(&stats.ApprovedThisMonth).Error; err != nil {
		return nil, nil, nil, err
	}

	if err := db.Model(&models.Post{}).
		Where("client_id = ? AND status = ? AND schedule_date >= ?",
			clientID, models.PostStatusScheduled, now).
		Count(&stats.UpcomingPosts).Error; err != nil {
		return nil, nil, nil, err
	}

	if err := db.Model(&models.Post{}).
		Where("client_id = ? AND status = ?", clientID, models.PostStatusRejected).
		Count(&stats.Rejected).Error; err != nil {
		return nil, nil, nil, err
	}

	var pending []models.Post
	if err := db.Preload("Client").
		Where("client_id = ? AND status = ?", clientID, models.PostStatusPending).
		Order("created_at DESC").
		Find(&pending).Error; err != nil {
		return nil, nil, nil, err
	}
	pendingViews := make([]PostView, len(pending))
	for i := range pending {
		pendingViews[i] = s.postView(&pending[i])
	}

	var calendar []models.Post
	if err := db.Preload("Client").
		Where("client_id = ? AND status IN ?", clientID, calendarStatuses).
		Order("schedule_date ASC").
		Find(&calendar).Error; err != nil {
		return nil, nil, nil, err
	}
	calendarViews := make([]PostView, len(calendar))
	for i := range calendar {
		calendarViews[i] = s.postView(&calendar[i])
	}

	return &stats, pendingViews, calendarViews, nil
}
