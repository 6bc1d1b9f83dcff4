package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

const (
	TaskGdprExport  = "gdpr:export"
	TaskGdprErase   = "gdpr:erase"
	TaskEmailDigest = "email:digest"
)

// TaskDistributor creates background tasks and pushes them onto the
// Redis queue.
type TaskDistributor interface {
	DistributeTaskGdprExport(ctx context.Context, payload *PayloadGdprExport, opts ...asynq.Option) error
	DistributeTaskGdprErase(ctx context.Context, payload *PayloadGdprErase, opts ...asynq.Option) error
	DistributeTaskEmailDigest(ctx context.Context, payload *PayloadEmailDigest, opts ...asynq.Option) error
	Close() error
}

type RedisTaskDistributor struct {
	client *asynq.Client
}

func NewTaskDistributor(redisOpt asynq.RedisClientOpt) *RedisTaskDistributor {
	return &RedisTaskDistributor{
		client: asynq.NewClient(redisOpt),
	}
}

func (distributor *RedisTaskDistributor) Close() error {
	return distributor.client.Close()
}
