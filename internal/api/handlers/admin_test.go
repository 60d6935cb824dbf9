package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/api/handlers"
	"github.com/jonas/postflow/internal/api/middleware"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdminTestRouter(t *testing.T) (*chi.Mux, *testEnv, string) {
	env := newTestEnv(t)

	handler := handlers.NewAdminHandler(env.db, env.dashboard, env.invites)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(env.jwt))
		r.Use(middleware.RequireRole("admin"))
		r.Get("/api/v1/admin/dashboard", handler.Dashboard)
		r.Get("/api/v1/admin/agencies", handler.Agencies)
		r.Post("/api/v1/admin/agencies", handler.InviteAgency)
		r.Put("/api/v1/admin/agencies/{id}/activate", handler.Activate)
		r.Put("/api/v1/admin/agencies/{id}/deactivate", handler.Deactivate)
	})

	admin := testutil.CreateTestUser(t, env.db, models.RoleAdmin)
	token := testutil.GenerateTestToken(t, env.jwt, admin, uuid.Nil)

	return r, env, token
}

func TestAdminHandler_Dashboard(t *testing.T) {
	router, env, token := setupAdminTestRouter(t)

	agency := testutil.CreateTestAgency(t, env.db)
	client := testutil.CreateTestClient(t, env.db, agency)
	testutil.CreateTestPost(t, env.db, agency, client, models.PostStatusPublished)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/admin/dashboard", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var stats map[string]int64
	testutil.ParseJSONResponse(t, rr, &stats)
	assert.EqualValues(t, 1, stats["total_agencies"])
	assert.EqualValues(t, 1, stats["total_clients"])
	assert.EqualValues(t, 1, stats["published_posts"])
}

func TestAdminHandler_Dashboard_RequiresAdmin(t *testing.T) {
	router, env, _ := setupAdminTestRouter(t)

	agency := testutil.CreateTestAgency(t, env.db)
	token := testutil.GenerateTestToken(t, env.jwt, agency.User, agency.ID)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/admin/dashboard", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAdminHandler_Agencies(t *testing.T) {
	router, env, token := setupAdminTestRouter(t)

	agency := testutil.CreateTestAgency(t, env.db)
	testutil.CreateTestClient(t, env.db, agency)

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/admin/agencies", nil, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.AgenciesResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	require.Len(t, resp.Agencies, 1)
	assert.EqualValues(t, 1, resp.Agencies[0].ClientCount)
	assert.EqualValues(t, 1, resp.Stats.Active)
}

func TestAdminHandler_ActivateDeactivate(t *testing.T) {
	router, env, token := setupAdminTestRouter(t)

	agency := testutil.CreateTestAgency(t, env.db)

	t.Run("deactivate", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/admin/agencies/"+agency.ID.String()+"/deactivate", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var reloaded models.Agency
		require.NoError(t, env.db.First(&reloaded, agency.ID).Error)
		assert.Equal(t, models.TenantStatusInactive, reloaded.Status)
	})

	t.Run("activate", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/admin/agencies/"+agency.ID.String()+"/activate", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var reloaded models.Agency
		require.NoError(t, env.db.First(&reloaded, agency.ID).Error)
		assert.Equal(t, models.TenantStatusActive, reloaded.Status)
	})

	t.Run("missing agency", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/admin/agencies/"+uuid.NewString()+"/activate", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/admin/agencies/not-a-uuid/activate", nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAdminHandler_InviteAgency(t *testing.T) {
	router, env, token := setupAdminTestRouter(t)

	t.Run("creates pending agency", func(t *testing.T) {
		body := map[string]string{
			"name":         "Invited Owner",
			"email":        "invited@example.com",
			"company_name": "Invited Agency",
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/admin/agencies", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var agency models.Agency
		require.NoError(t, env.db.Where("company_name = ?", "Invited Agency").First(&agency).Error)
		assert.Equal(t, models.TenantStatusPending, agency.Status)
	})

	t.Run("duplicate email", func(t *testing.T) {
		existing := testutil.CreateTestUser(t, env.db, models.RoleClient)

		body := map[string]string{
			"name":         "Dup",
			"email":        existing.Email,
			"company_name": "Dup Co",
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/admin/agencies", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		body := map[string]string{
			"name":         "Bad Email",
			"email":        "not-an-email",
			"company_name": "Bad Co",
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/admin/agencies", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
