package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/internal/posts"
	"github.com/jonas/postflow/internal/storage"
	"github.com/jonas/postflow/internal/tasks"
	"github.com/jonas/postflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.to = to
	f.subject = subject
	f.body = body
	return f.err
}

func newTestHandler(t *testing.T) (*tasks.Handler, *fakeMailer, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	store := storage.NewDiskStore(t.TempDir(), "http://localhost:8080")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	postService := posts.NewService(db, store, logger)

	mail := &fakeMailer{}
	handler := tasks.NewHandler(postService, mail, "http://localhost:8080", logger)
	return handler, mail, db
}

func TestHandleInvitationEmail(t *testing.T) {
	handler, mail, _ := newTestHandler(t)
	ctx := context.Background()

	task, err := tasks.NewInvitationEmailTask(tasks.InvitationEmailPayload{
		UserID:      uuid.New(),
		Email:       "invitee@example.com",
		Name:        "Jane",
		Role:        "client",
		InviterName: "Brightside Media",
		Token:       "signed-token",
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleInvitationEmail(ctx, task))

	assert.Equal(t, "invitee@example.com", mail.to)
	assert.Contains(t, mail.body, "http://localhost:8080/setup-password/signed-token")
	assert.Contains(t, mail.body, "Brightside Media")
	assert.Contains(t, mail.body, "client")
}

func TestHandleInvitationEmail_BadPayload(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	task := asynq.NewTask(tasks.TypeInvitationEmail, []byte("not-json"))
	err := handler.HandleInvitationEmail(context.Background(), task)
	assert.Error(t, err)
}

func TestHandleInvitationEmail_SendFailure(t *testing.T) {
	handler, mail, _ := newTestHandler(t)
	mail.err = errors.New("ses throttled")

	payload, err := json.Marshal(tasks.InvitationEmailPayload{
		Email: "invitee@example.com",
		Token: "tok",
	})
	require.NoError(t, err)

	task := asynq.NewTask(tasks.TypeInvitationEmail, payload)
	err = handler.HandleInvitationEmail(context.Background(), task)
	assert.Error(t, err)
}

func TestHandlePublishSweep(t *testing.T) {
	handler, _, db := newTestHandler(t)
	ctx := context.Background()

	agency := testutil.CreateTestAgency(t, db)
	client := testutil.CreateTestClient(t, db, agency)

	due := testutil.CreateTestPost(t, db, agency, client, models.PostStatusApproved)
	require.NoError(t, db.Model(due).Update("schedule_date", time.Now().Add(-time.Hour)).Error)

	future := testutil.CreateTestPost(t, db, agency, client, models.PostStatusApproved)

	require.NoError(t, handler.HandlePublishSweep(ctx, tasks.NewPublishSweepTask()))

	var p models.Post
	require.NoError(t, db.First(&p, due.ID).Error)
	assert.Equal(t, models.PostStatusPublished, p.Status)

	var p2 models.Post
	require.NoError(t, db.First(&p2, future.ID).Error)
	assert.Equal(t, models.PostStatusScheduled, p2.Status)
}
