package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	authdomain "github.com/notifeed/notifeed/internal/modules/auth/domain"
	notifdomain "github.com/notifeed/notifeed/internal/modules/notification/domain"
)

type PayloadGdprExport struct {
	ExportID uuid.UUID `json:"export_id"`
	UserID   uuid.UUID `json:"user_id"`
}

// exportBundle is the JSON document written to object storage.
type exportBundle struct {
	ExportedAt    time.Time                  `json:"exported_at"`
	User          *authdomain.User           `json:"user"`
	Notifications []notifdomain.Notification `json:"notifications"`
}

func (distributor *RedisTaskDistributor) DistributeTaskGdprExport(
	ctx context.Context,
	payload *PayloadGdprExport,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskGdprExport, jsonPayload, opts...)
	if _, err = distributor.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// ProcessTaskGdprExport gathers the user's profile and notifications,
// uploads the bundle to object storage and marks the export completed.
func (processor *RedisTaskProcessor) ProcessTaskGdprExport(ctx context.Context, task *asynq.Task) error {
	var payload PayloadGdprExport
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	log := processor.log.WithFields(logrus.Fields{
		"export_id": payload.ExportID,
		"user_id":   payload.UserID,
	})

	if err := processor.buildAndUploadExport(ctx, payload); err != nil {
		if failErr := processor.exports.MarkFailed(ctx, payload.ExportID); failErr != nil {
			log.WithError(failErr).Warn("Failed to record export failure")
		}
		return err
	}

	log.Info("Export completed")
	return nil
}

func (processor *RedisTaskProcessor) buildAndUploadExport(ctx context.Context, payload PayloadGdprExport) error {
	user, err := processor.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	notifications, err := processor.notifications.ListAllForUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}
	if notifications == nil {
		notifications = []notifdomain.Notification{}
	}

	bundle := exportBundle{
		ExportedAt:    time.Now().UTC(),
		User:          user,
		Notifications: notifications,
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export bundle: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", payload.UserID, payload.ExportID)
	if err := processor.objects.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to upload export bundle: %w", err)
	}

	if err := processor.exports.MarkCompleted(ctx, payload.ExportID, key); err != nil {
		return fmt.Errorf("failed to mark export completed: %w", err)
	}
	return nil
}
