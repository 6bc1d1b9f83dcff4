package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

type PayloadGdprErase struct {
	UserID uuid.UUID `json:"user_id"`
}

func (distributor *RedisTaskDistributor) DistributeTaskGdprErase(
	ctx context.Context,
	payload *PayloadGdprErase,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskGdprErase, jsonPayload, opts...)
	if _, err = distributor.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// ProcessTaskGdprErase purges the user's notifications and anonymizes
// the account record. The user row is kept so foreign keys stay valid.
func (processor *RedisTaskProcessor) ProcessTaskGdprErase(ctx context.Context, task *asynq.Task) error {
	var payload PayloadGdprErase
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	deleted, err := processor.notifications.DeleteAllForUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}

	if err := processor.users.Anonymize(ctx, payload.UserID); err != nil {
		return fmt.Errorf("failed to anonymize user: %w", err)
	}

	processor.log.WithFields(logrus.Fields{
		"user_id":               payload.UserID,
		"notifications_deleted": deleted,
	}).Info("Account erased")
	return nil
}
