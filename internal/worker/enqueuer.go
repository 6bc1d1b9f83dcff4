package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// GdprEnqueuer adapts the task distributor to the shape the gdpr
// service expects.
type GdprEnqueuer struct {
	distributor TaskDistributor
}

func NewGdprEnqueuer(distributor TaskDistributor) *GdprEnqueuer {
	return &GdprEnqueuer{distributor: distributor}
}

func (e *GdprEnqueuer) EnqueueExport(ctx context.Context, exportID, userID uuid.UUID) error {
	return e.distributor.DistributeTaskGdprExport(ctx, &PayloadGdprExport{
		ExportID: exportID,
		UserID:   userID,
	}, asynq.Queue(QueueCritical), asynq.MaxRetry(3))
}

func (e *GdprEnqueuer) EnqueueErasure(ctx context.Context, userID uuid.UUID) error {
	return e.distributor.DistributeTaskGdprErase(ctx, &PayloadGdprErase{
		UserID: userID,
	}, asynq.Queue(QueueCritical), asynq.MaxRetry(5))
}

// DigestEnqueuer adapts the task distributor for digest scheduling.
type DigestEnqueuer struct {
	distributor TaskDistributor
}

func NewDigestEnqueuer(distributor TaskDistributor) *DigestEnqueuer {
	return &DigestEnqueuer{distributor: distributor}
}

func (e *DigestEnqueuer) EnqueueDigest(ctx context.Context, userID, templateID uuid.UUID) error {
	return e.distributor.DistributeTaskEmailDigest(ctx, &PayloadEmailDigest{
		UserID:     userID,
		TemplateID: templateID,
	}, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}
