package auth_test

import (
	"context"
	"testing"

	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*auth.Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	return auth.NewService(db, testutil.CreateTestJWTService()), db
}

func TestService_Register(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()

	t.Run("creates active agency and user together", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:       "owner@agency.example",
			Password:    "securepassword123",
			Name:        "Agency Owner",
			CompanyName: "Fresh Agency",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleAgency, resp.User.Role)

		var agency models.Agency
		require.NoError(t, db.Where("user_id = ?", resp.User.ID).First(&agency).Error)
		assert.Equal(t, models.TenantStatusActive, agency.Status)
		assert.Equal(t, "Fresh Agency", agency.CompanyName)
		assert.Equal(t, agency.ID, resp.TenantID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:       "dup@agency.example",
			Password:    "securepassword123",
			Name:        "First",
			CompanyName: "First Co",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, auth.RegisterInput{
			Email:       "dup@agency.example",
			Password:    "securepassword123",
			Name:        "Second",
			CompanyName: "Second Co",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestService_Login(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{
		Email:       "login@agency.example",
		Password:    "securepassword123",
		Name:        "Login User",
		CompanyName: "Login Co",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		got, err := svc.Login(ctx, auth.LoginInput{
			Email:    "login@agency.example",
			Password: "securepassword123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, got.Token)
		assert.Equal(t, resp.TenantID, got.TenantID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "login@agency.example",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "ghost@agency.example",
			Password: "securepassword123",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive agency is refused", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Agency{}).
			Where("id = ?", resp.TenantID).
			Update("status", models.TenantStatusInactive).Error)

		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "login@agency.example",
			Password: "securepassword123",
		})
		assert.ErrorIs(t, err, auth.ErrInactiveTenant)
	})
}
