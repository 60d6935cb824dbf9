package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonas/postflow/internal/api/dto"
	"github.com/jonas/postflow/internal/api/handlers"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/invites"
	"github.com/jonas/postflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPasswordTestRouter(t *testing.T) (*chi.Mux, *testEnv) {
	env := newTestEnv(t)

	handler := handlers.NewSetupPasswordHandler(env.invites)

	r := chi.NewRouter()
	r.Get("/setup-password/{token}", handler.Show)
	r.Post("/setup-password", handler.Store)

	return r, env
}

func inviteClientForTest(t *testing.T, env *testEnv, email string) (*models.Client, string) {
	t.Helper()

	agency := testutil.CreateTestAgency(t, env.db)
	client, err := env.invites.InviteClient(context.Background(), agency.UserID, invites.InviteInput{
		Name:        "Invitee",
		Email:       email,
		CompanyName: "Invitee Co",
	})
	require.NoError(t, err)

	token, err := env.jwt.GenerateInviteToken(client.UserID, email, time.Hour)
	require.NoError(t, err)

	return client, token
}

func TestSetupPasswordHandler_Show(t *testing.T) {
	router, env := setupPasswordTestRouter(t)

	_, token := inviteClientForTest(t, env, "invitee@example.com")

	t.Run("valid token returns invitee info", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/setup-password/"+token, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var info handlers.SetupPasswordInfo
		testutil.ParseJSONResponse(t, rr, &info)
		assert.Equal(t, "invitee@example.com", info.Email)
		assert.Equal(t, "Invitee", info.Name)
	})

	t.Run("tampered token reveals nothing", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/setup-password/"+token+"x", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.NotContains(t, rr.Body.String(), "invitee@example.com")
	})
}

func TestSetupPasswordHandler_Store(t *testing.T) {
	router, env := setupPasswordTestRouter(t)

	t.Run("redeems and logs in", func(t *testing.T) {
		client, token := inviteClientForTest(t, env, "redeem@example.com")

		body := map[string]string{
			"token":    token,
			"password": "chosen-password-123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/setup-password", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "client", resp.User.Role)

		var reloaded models.Client
		require.NoError(t, env.db.First(&reloaded, client.ID).Error)
		assert.Equal(t, models.TenantStatusActive, reloaded.Status)
	})

	t.Run("expired token leaves tenant pending", func(t *testing.T) {
		agency := testutil.CreateTestAgency(t, env.db)
		client, err := env.invites.InviteClient(context.Background(), agency.UserID, invites.InviteInput{
			Name:        "Late",
			Email:       "late@example.com",
			CompanyName: "Late Co",
		})
		require.NoError(t, err)

		expired, err := env.jwt.GenerateInviteToken(client.UserID, "late@example.com", -time.Minute)
		require.NoError(t, err)

		body := map[string]string{
			"token":    expired,
			"password": "never-set-123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/setup-password", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)

		var reloaded models.Client
		require.NoError(t, env.db.First(&reloaded, client.ID).Error)
		assert.Equal(t, models.TenantStatusPending, reloaded.Status)
	})

	t.Run("weak password", func(t *testing.T) {
		_, token := inviteClientForTest(t, env, "weak@example.com")

		body := map[string]string{
			"token":    token,
			"password": "short",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/setup-password", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
