package invites

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/tasks"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already in use")
	ErrNoAgency     = errors.New("no agency found for this user")
	ErrUserNotFound = errors.New("invited user not found")
)

// Service provisions pending tenants and redeems their invitation tokens.
// The user and tenant rows are always created in one transaction so a
// partial failure cannot leave an orphaned login.
type Service struct {
	db     *gorm.DB
	jwt    *auth.JWTService
	queue  *asynq.Client
	expiry time.Duration
	logger *slog.Logger
}

func NewService(db *gorm.DB, jwt *auth.JWTService, queue *asynq.Client, expiry time.Duration, logger *slog.Logger) *Service {
	return &Service{db: db, jwt: jwt, queue: queue, expiry: expiry, logger: logger}
}

type InviteInput struct {
	Name        string
	Email       string
	CompanyName string
}

// InviteAgency creates a pending agency on behalf of an admin and queues the
// invitation email.
func (s *Service) InviteAgency(ctx context.Context, inviterName string, input InviteInput) (*models.Agency, error) {
	user, err := s.createInvitedUser(ctx, input, models.RoleAgency, func(tx *gorm.DB, user *models.User) (uuid.UUID, error) {
		agency := models.Agency{
			UserID:      user.ID,
			CompanyName: input.CompanyName,
			Status:      models.TenantStatusPending,
		}
		if err := tx.Create(&agency).Error; err != nil {
			return uuid.Nil, err
		}
		return agency.ID, nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueueInvitation(ctx, user, inviterName)

	var agency models.Agency
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&agency).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

// InviteClient creates a pending client under the calling agency and queues
// the invitation email.
func (s *Service) InviteClient(ctx context.Context, agencyUserID uuid.UUID, input InviteInput) (*models.Client, error) {
	var agency models.Agency
	if err := s.db.WithContext(ctx).Where("user_id = ?", agencyUserID).First(&agency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAgency
		}
		return nil, err
	}

	user, err := s.createInvitedUser(ctx, input, models.RoleClient, func(tx *gorm.DB, user *models.User) (uuid.UUID, error) {
		client := models.Client{
			UserID:      user.ID,
			AgencyID:    agency.ID,
			CompanyName: input.CompanyName,
			Status:      models.TenantStatusPending,
		}
		if err := tx.Create(&client).Error; err != nil {
			return uuid.Nil, err
		}
		return client.ID, nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueueInvitation(ctx, user, agency.CompanyName)

	var client models.Client
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// VerifyToken checks an invitation token before any form is shown. Fails
// closed on tampered or expired tokens.
func (s *Service) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwt.ValidateInviteToken(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Email != claims.Email {
		return nil, auth.ErrInvalidToken
	}
	return &user, nil
}

// Redeem sets the invitee's password, marks the email verified, activates
// the tenant row, and returns a logged-in session. Token failure leaves the
// user and tenant untouched.
func (s *Service) Redeem(ctx context.Context, token, password string) (*auth.AuthResponse, error) {
	user, err := s.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(map[string]interface{}{
			"password_hash":     hash,
			"email_verified_at": now,
		}).Error; err != nil {
			return err
		}

		switch user.Role {
		case models.RoleAgency:
			return tx.Model(&models.Agency{}).Where("user_id = ?", user.ID).
				Update("status", models.TenantStatusActive).Error
		case models.RoleClient:
			return tx.Model(&models.Client{}).Where("user_id = ?", user.ID).
				Update("status", models.TenantStatusActive).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tenantID, err := s.tenantIDFor(ctx, user)
	if err != nil {
		return nil, err
	}

	sessionToken, err := s.jwt.GenerateToken(user.ID, tenantID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.EmailVerifiedAt = &now

	return &auth.AuthResponse{
		Token:    sessionToken,
		User:     user,
		TenantID: tenantID,
	}, nil
}

// createInvitedUser makes the user row with an unusable random password and
// the tenant row in one transaction.
func (s *Service) createInvitedUser(ctx context.Context, input InviteInput, role models.Role, createTenant func(tx *gorm.DB, user *models.User) (uuid.UUID, error)) (*models.User, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	// Random throwaway password; the invitee sets a real one on redemption.
	hash, err := auth.HashPassword(uuid.NewString() + uuid.NewString())
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Email:        input.Email,
			PasswordHash: hash,
			Name:         input.Name,
			Role:         role,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		_, err := createTenant(tx, &user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// enqueueInvitation is the fire-and-forget side effect: a queue failure is
// logged and the invite stands.
func (s *Service) enqueueInvitation(ctx context.Context, user *models.User, inviterName string) {
	token, err := s.jwt.GenerateInviteToken(user.ID, user.Email, s.expiry)
	if err != nil {
		s.logger.Error("invite token generation failed", "email", user.Email, "error", err)
		return
	}

	if s.queue == nil {
		s.logger.Warn("task queue unavailable, invitation email skipped", "email", user.Email)
		return
	}

	task, err := tasks.NewInvitationEmailTask(tasks.InvitationEmailPayload{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        string(user.Role),
		InviterName: inviterName,
		Token:       token,
	})
	if err != nil {
		s.logger.Error("invitation task build failed", "email", user.Email, "error", err)
		return
	}

	if _, err := s.queue.EnqueueContext(ctx, task); err != nil {
		s.logger.Error("invitation enqueue failed", "email", user.Email, "error", err)
	}
}

func (s *Service) tenantIDFor(ctx context.Context, user *models.User) (uuid.UUID, error) {
	switch user.Role {
	case models.RoleAgency:
		var agency models.Agency
		if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&agency).Error; err != nil {
			return uuid.Nil, err
		}
		return agency.ID, nil
	case models.RoleClient:
		var client models.Client
		if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&client).Error; err != nil {
			return uuid.Nil, err
		}
		return client.ID, nil
	}
	return uuid.Nil, nil
}
