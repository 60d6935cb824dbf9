package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_ValidToken_AuthorizationHeader(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	userID := uuid.New()
	tenantID := uuid.New()
	email := "test@example.com"
	role := "agency"

	token, err := jwtService.GenerateToken(userID, tenantID, email, role)
	require.NoError(t, err)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify context values are set
		assert.Equal(t, userID, GetUserID(r.Context()))
		assert.Equal(t, tenantID, GetTenantID(r.Context()))
		assert.Equal(t, email, GetUserEmail(r.Context()))
		assert.Equal(t, role, GetUserRole(r.Context()))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	req := httptest.NewRequest("GET", "/api/v1/agency/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuth_ValidToken_Cookie(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID, uuid.New(), "test@example.com", "client")
	require.NoError(t, err)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userID, GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/client/dashboard", nil)
	req.AddCookie(&http.Cookie{
		Name:  "token",
		Value: token,
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_NoToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/v1/client/dashboard", nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
}

func TestAuth_InvalidToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/v1/client/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Millisecond)

	token, err := jwtService.GenerateToken(uuid.New(), uuid.New(), "test@example.com", "agency")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	handler := Auth(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/v1/agency/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 24*time.Hour)

	newRequest := func(t *testing.T, role string) *http.Request {
		t.Helper()
		token, err := jwtService.GenerateToken(uuid.New(), uuid.New(), "test@example.com", role)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	protected := Auth(jwtService)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("matching role passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, newRequest(t, "admin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, newRequest(t, "client"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("empty role is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, newRequest(t, ""))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
