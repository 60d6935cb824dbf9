package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveTenant     = errors.New("tenant is inactive")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	CompanyName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	TenantID uuid.UUID    `json:"tenant_id"`
}

// Register creates an agency account: the user row and its agency row in one
// transaction. Self-registered agencies start active; invited ones start
// pending and go through the invitation flow instead.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	var agency models.Agency
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Email:        input.Email,
			PasswordHash: hash,
			Name:         input.Name,
			Role:         models.RoleAgency,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		agency = models.Agency{
			UserID:      user.ID,
			CompanyName: input.CompanyName,
			Status:      models.TenantStatusActive,
		}
		return tx.Create(&agency).Error
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, agency.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.Agency = &agency

	return &AuthResponse{
		Token:    token,
		User:     &user,
		TenantID: agency.ID,
	}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Agency").
		Preload("Client").
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	tenantID, err := s.tenantFor(&user)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, tenantID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:    token,
		User:     &user,
		TenantID: tenantID,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Agency").
		Preload("Client").
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// tenantFor resolves the tenant row the user's role points at. Deactivated
// tenants cannot log in.
func (s *Service) tenantFor(user *models.User) (uuid.UUID, error) {
	switch user.Role {
	case models.RoleAgency:
		if user.Agency == nil {
			return uuid.Nil, ErrInvalidCredentials
		}
		if user.Agency.Status == models.TenantStatusInactive {
			return uuid.Nil, ErrInactiveTenant
		}
		return user.Agency.ID, nil
	case models.RoleClient:
		if user.Client == nil {
			return uuid.Nil, ErrInvalidCredentials
		}
		if user.Client.Status == models.TenantStatusInactive {
			return uuid.Nil, ErrInactiveTenant
		}
		return user.Client.ID, nil
	default:
		return uuid.Nil, nil
	}
}
