package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jonas/postflow/internal/mailer"
	"github.com/jonas/postflow/internal/posts"
)

// Handler processes background tasks in the worker.
type Handler struct {
	posts   *posts.Service
	mail    mailer.Mailer
	baseURL string
	logger  *slog.Logger
}

func NewHandler(postService *posts.Service, mail mailer.Mailer, baseURL string, logger *slog.Logger) *Handler {
	return &Handler{posts: postService, mail: mail, baseURL: baseURL, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeInvitationEmail, h.HandleInvitationEmail)
	mux.HandleFunc(TypePublishSweep, h.HandlePublishSweep)
}

func (h *Handler) HandleInvitationEmail(ctx context.Context, t *asynq.Task) error {
	var payload InvitationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling invitation payload: %w", err)
	}

	setupURL := h.baseURL + "/setup-password/" + payload.Token

	subject := "Set up your account"
	body := fmt.Sprintf(
		"Hello %s!\n\n"+
			"You have been invited by %s to create a %s account.\n"+
			"Open the link below to set up your account and choose a password:\n\n"+
			"%s\n\n"+
			"This invitation link will expire in 7 days.\n"+
			"If you did not expect this invitation, you can safely ignore this email.\n",
		payload.Name, payload.InviterName, payload.Role, setupURL,
	)

	if err := h.mail.Send(ctx, payload.Email, subject, body); err != nil {
		h.logger.Error("invitation email failed", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("invitation email sent", "email", payload.Email, "role", payload.Role)
	return nil
}

// HandlePublishSweep promotes approved posts to scheduled and publishes
// everything whose schedule date has passed.
func (h *Handler) HandlePublishSweep(ctx context.Context, t *asynq.Task) error {
	now := time.Now()

	published, err := h.posts.PublishDue(ctx, now)
	if err != nil {
		return fmt.Errorf("publishing due posts: %w", err)
	}

	scheduled, err := h.posts.MarkScheduled(ctx, now)
	if err != nil {
		return fmt.Errorf("scheduling approved posts: %w", err)
	}

	if published > 0 || scheduled > 0 {
		h.logger.Info("publish sweep", "published", published, "scheduled", scheduled)
	}
	return nil
}
