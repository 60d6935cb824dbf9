package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeInvitationEmail = "email:invitation"
	TypePublishSweep    = "posts:publish_sweep"
)

// InvitationEmailPayload carries everything the worker needs to send a
// password-setup invitation.
type InvitationEmailPayload struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	InviterName string    `json:"inviter_name"`
	Token       string    `json:"token"`
}

// NewInvitationEmailTask enqueues an invitation email with a single retry:
// delivery is best effort and never gates the invite itself.
func NewInvitationEmailTask(payload InvitationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInvitationEmail, data, asynq.MaxRetry(1)), nil
}

// NewPublishSweepTask ticks the schedule/publish sweep over approved posts.
func NewPublishSweepTask() *asynq.Task {
	return asynq.NewTask(TypePublishSweep, nil)
}
