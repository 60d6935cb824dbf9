package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrNoTenant          = errors.New("no tenant found for this user")
	ErrUnauthorized      = errors.New("post does not belong to caller's tenant")
	ErrPostNotFound      = errors.New("post not found")
	ErrClientNotFound    = errors.New("client not found for this agency")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Service owns the post lifecycle. Every mutation resolves the caller's
// tenant row first and refuses to touch posts scoped to another tenant.
type Service struct {
	db     *gorm.DB
	store  storage.Store
	logger *slog.Logger
}

func NewService(db *gorm.DB, store storage.Store, logger *slog.Logger) *Service {
	return &Service{db: db, store: store, logger: logger}
}

// Upload is one media file attached to a post at creation time.
type Upload struct {
	Filename string
	Data     io.Reader
}

type CreateInput struct {
	ClientID     uuid.UUID
	Title        string
	Content      string
	ScheduleDate time.Time
	Platform     string
	PostType     string
	Media        []Upload
}

// Create makes a pending post on behalf of one of the agency's clients.
// The target client must belong to the caller's agency.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Post, error) {
	agency, err := s.requireAgency(ctx, userID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ? AND agency_id = ?", input.ClientID, agency.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrClientNotFound
	}

	mediaPaths := make([]string, 0, len(input.Media))
	for _, m := range input.Media {
		stored, err := s.store.Save(ctx, m.Filename, m.Data)
		if err != nil {
			return nil, fmt.Errorf("storing media: %w", err)
		}
		mediaPaths = append(mediaPaths, stored)
	}

	post := models.Post{
		AgencyID:     agency.ID,
		ClientID:     input.ClientID,
		Title:        input.Title,
		Content:      input.Content,
		Media:        mediaPaths,
		ScheduleDate: input.ScheduleDate,
		Platform:     input.Platform,
		PostType:     input.PostType,
		Status:       models.PostStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}

	return &post, nil
}

// Approve transitions pending -> approved. Approving an already-approved
// post is a no-op; any other source state fails. The status change is a
// compare-and-swap so racing reviews cannot double-fire.
func (s *Service) Approve(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error) {
	client, post, err := s.requireOwnedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if post.Status == models.PostStatusApproved {
		return post, nil
	}

	if err := s.transition(ctx, post.ID, models.PostStatusPending, map[string]interface{}{
		"status": models.PostStatusApproved,
	}); err != nil {
		return nil, err
	}

	s.notifyAgency(ctx, post.AgencyID, fmt.Sprintf("%s approved a post", client.CompanyName), models.NotificationSuccess)

	return s.reload(ctx, post.ID)
}

// Reject transitions pending -> rejected and records the client's feedback.
func (s *Service) Reject(ctx context.Context, userID, postID uuid.UUID, feedback string) (*models.Post, error) {
	client, post, err := s.requireOwnedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, post.ID, models.PostStatusPending, map[string]interface{}{
		"status":   models.PostStatusRejected,
		"feedback": feedback,
	}); err != nil {
		return nil, err
	}

	s.notifyAgency(ctx, post.AgencyID, fmt.Sprintf("%s rejected a post", client.CompanyName), models.NotificationWarning)

	return s.reload(ctx, post.ID)
}

// AddComment appends a comment row and mirrors it on the post's free-text
// comment field. The post status is untouched.
func (s *Service) AddComment(ctx context.Context, userID, postID uuid.UUID, content string) (*models.Comment, error) {
	_, post, err := s.requireOwnedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("comment", content).Error
	})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// Delete removes a post. Only the owning agency may delete it.
func (s *Service) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	agency, err := s.requireAgency(ctx, userID)
	if err != nil {
		return err
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.AgencyID != agency.ID {
		return ErrUnauthorized
	}

	return s.db.WithContext(ctx).Delete(&post).Error
}

// MarkScheduled promotes approved posts with a future schedule date to
// scheduled. Run by the worker sweep.
func (s *Service) MarkScheduled(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ? AND schedule_date > ?", models.PostStatusApproved, now).
		Update("status", models.PostStatusScheduled)
	return res.RowsAffected, res.Error
}

// PublishDue publishes approved or scheduled posts whose schedule date has
// passed. Run by the worker sweep.
func (s *Service) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("status IN ? AND schedule_date <= ?",
			[]models.PostStatus{models.PostStatusApproved, models.PostStatusScheduled}, now).
		Update("status", models.PostStatusPublished)
	return res.RowsAffected, res.Error
}

// MediaURLs resolves a post's stored media paths to public URLs.
func (s *Service) MediaURLs(post *models.Post) []string {
	urls := make([]string, 0, len(post.Media))
	for _, p := range post.Media {
		if p == "" {
			continue
		}
		urls = append(urls, s.store.URL(p))
	}
	return urls
}

// requireOwnedPost is the ownership guard: resolve the caller's client row,
// then check the post is scoped to it. 403-class errors for both failures.
func (s *Service) requireOwnedPost(ctx context.Context, userID, postID uuid.UUID) (*models.Client, *models.Post, error) {
	client, err := s.requireClient(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPostNotFound
		}
		return nil, nil, err
	}

	if post.ClientID != client.ID {
		return nil, nil, ErrUnauthorized
	}

	return client, &post, nil
}

func (s *Service) requireClient(ctx context.Context, userID uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTenant
		}
		return nil, err
	}
	return &client, nil
}

func (s *Service) requireAgency(ctx context.Context, userID uuid.UUID) (*models.Agency, error) {
	var agency models.Agency
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&agency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTenant
		}
		return nil, err
	}
	return &agency, nil
}

// transition performs a compare-and-swap on status: the update only lands if
// the row is still in the expected source state.
func (s *Service) transition(ctx context.Context, postID uuid.UUID, from models.PostStatus, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Service) reload(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// notifyAgency writes a notification for the agency's owner. Best effort:
// a failed insert is logged and never blocks the transition.
func (s *Service) notifyAgency(ctx context.Context, agencyID uuid.UUID, message string, typ models.NotificationType) {
	var agency models.Agency
	if err := s.db.WithContext(ctx).First(&agency, agencyID).Error; err != nil {
		s.logger.Warn("notify: agency lookup failed", "agency_id", agencyID, "error", err)
		return
	}

	n := models.Notification{
		UserID:  agency.UserID,
		Message: message,
		Type:    typ,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		s.logger.Warn("notify: insert failed", "user_id", agency.UserID, "error", err)
	}
}
