package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	tmplapp "github.com/notifeed/notifeed/internal/modules/emailtemplate/application"
)

const digestNotificationLimit = 10

type PayloadEmailDigest struct {
	UserID     uuid.UUID `json:"user_id"`
	TemplateID uuid.UUID `json:"template_id"`
}

func (distributor *RedisTaskDistributor) DistributeTaskEmailDigest(
	ctx context.Context,
	payload *PayloadEmailDigest,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskEmailDigest, jsonPayload, opts...)
	if _, err = distributor.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// ProcessTaskEmailDigest renders the digest template for a user and
// sends it over SMTP. Users with no unread notifications are skipped.
func (processor *RedisTaskProcessor) ProcessTaskEmailDigest(ctx context.Context, task *asynq.Task) error {
	var payload PayloadEmailDigest
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	user, err := processor.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	notifications, err := processor.notifications.ListAllForUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}

	unread := make([]string, 0, digestNotificationLimit)
	for _, n := range notifications {
		if n.Read {
			continue
		}
		if len(unread) == digestNotificationLimit {
			break
		}
		unread = append(unread, n.Message)
	}
	if len(unread) == 0 {
		processor.log.WithField("user_id", payload.UserID).Debug("No unread notifications, skipping digest")
		return nil
	}

	tmpl, err := processor.templates.GetByID(ctx, payload.TemplateID)
	if err != nil {
		return fmt.Errorf("failed to load digest template: %w", err)
	}

	rendered, err := tmplapp.RenderTemplate(tmpl, map[string]any{
		"name":     user.Name,
		"unread":   len(unread),
		"messages": unread,
	})
	if err != nil {
		// A broken template never succeeds on retry.
		return fmt.Errorf("failed to render digest: %v: %w", err, asynq.SkipRetry)
	}

	if err := processor.sender.Send(ctx, user.Email, rendered.Subject, rendered.Body); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	processor.log.WithFields(logrus.Fields{
		"user_id": payload.UserID,
		"unread":  len(unread),
	}).Info("Digest sent")
	return nil
}
