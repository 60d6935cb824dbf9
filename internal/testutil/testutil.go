package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Agency{},
		&models.Client{},
		&models.Post{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// TestSetup bundles the database and JWT service handler tests need
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
}

func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()
	return &TestSetup{
		DB:         SetupTestDB(t),
		JWTService: CreateTestJWTService(),
	}
}

func (tc *TestSetup) Cleanup() {
	sqlDB, err := tc.DB.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}

// CreateTestUser creates a test user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:           "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:    hash,
		Name:            "Test User",
		Role:            role,
		EmailVerifiedAt: &now,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestAgency creates an active agency owned by a fresh agency user
func CreateTestAgency(t *testing.T, db *gorm.DB) *models.Agency {
	t.Helper()

	user := CreateTestUser(t, db, models.RoleAgency)

	agency := &models.Agency{
		Base: models.Base{
			ID: uuid.New(),
		},
		UserID:      user.ID,
		CompanyName: "Test Agency",
		Status:      models.TenantStatusActive,
	}

	if err := db.Create(agency).Error; err != nil {
		t.Fatalf("failed to create test agency: %v", err)
	}

	agency.User = user
	return agency
}

// CreateTestClient creates an active client under the given agency
func CreateTestClient(t *testing.T, db *gorm.DB, agency *models.Agency) *models.Client {
	t.Helper()

	user := CreateTestUser(t, db, models.RoleClient)

	client := &models.Client{
		Base: models.Base{
			ID: uuid.New(),
		},
		UserID:      user.ID,
		AgencyID:    agency.ID,
		CompanyName: "Test Client",
		Status:      models.TenantStatusActive,
	}

	if err := db.Create(client).Error; err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}

	client.User = user
	return client
}

// CreateTestPost creates a post for the given agency and client
func CreateTestPost(t *testing.T, db *gorm.DB, agency *models.Agency, client *models.Client, status models.PostStatus) *models.Post {
	t.Helper()

	post := &models.Post{
		Base: models.Base{
			ID: uuid.New(),
		},
		AgencyID:     agency.ID,
		ClientID:     client.ID,
		Title:        "Test Post",
		Content:      "Test post content",
		ScheduleDate: time.Now().Add(48 * time.Hour),
		Platform:     "instagram",
		PostType:     "image",
		Status:       status,
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}

	return post
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User, tenantID uuid.UUID) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, tenantID, user.Email, string(user.Role))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}
