package handlers_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/dashboard"
	"github.com/jonas/postflow/internal/invites"
	"github.com/jonas/postflow/internal/posts"
	"github.com/jonas/postflow/internal/storage"
	"github.com/jonas/postflow/internal/testutil"
	"gorm.io/gorm"
)

// testEnv wires the services handler tests run against. No queue and no
// real mail: invitation delivery is fire-and-forget and tested in tasks.
type testEnv struct {
	tc        *testutil.TestSetup
	db        *gorm.DB
	jwt       *auth.JWTService
	authSvc   *auth.Service
	posts     *posts.Service
	dashboard *dashboard.Service
	invites   *invites.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tc := testutil.NewTestContext(t)
	t.Cleanup(tc.Cleanup)

	store := storage.NewDiskStore(t.TempDir(), "http://localhost:8080")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		tc:        tc,
		db:        tc.DB,
		jwt:       tc.JWTService,
		authSvc:   auth.NewService(tc.DB, tc.JWTService),
		posts:     posts.NewService(tc.DB, store, logger),
		dashboard: dashboard.NewService(tc.DB, store),
		invites:   invites.NewService(tc.DB, tc.JWTService, nil, 7*24*time.Hour, logger),
	}
}
