package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/notifeed/notifeed/internal/mailer"
	authdomain "github.com/notifeed/notifeed/internal/modules/auth/domain"
	tmpldomain "github.com/notifeed/notifeed/internal/modules/emailtemplate/domain"
	gdprdomain "github.com/notifeed/notifeed/internal/modules/gdpr/domain"
	notifdomain "github.com/notifeed/notifeed/internal/modules/notification/domain"
	"github.com/notifeed/notifeed/internal/shared/logger"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// UserDirectory is the slice of the user store the worker needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*authdomain.User, error)
	Anonymize(ctx context.Context, id uuid.UUID) error
}

// NotificationArchive gives the worker bulk access to a user's
// notifications for exports and erasure.
type NotificationArchive interface {
	ListAllForUser(ctx context.Context, userID uuid.UUID) ([]notifdomain.Notification, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type RedisTaskProcessor struct {
	server        *asynq.Server
	exports       gdprdomain.ExportRepository
	objects       gdprdomain.ObjectStore
	users         UserDirectory
	notifications NotificationArchive
	templates     tmpldomain.TemplateRepository
	sender        mailer.Sender
	log           *logrus.Entry
}

func NewRedisTaskProcessor(
	redisOpt asynq.RedisClientOpt,
	exports gdprdomain.ExportRepository,
	objects gdprdomain.ObjectStore,
	users UserDirectory,
	notifications NotificationArchive,
	templates tmpldomain.TemplateRepository,
	sender mailer.Sender,
) *RedisTaskProcessor {
	log := logger.New("task-processor")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.WithError(err).WithFields(logrus.Fields{
					"type":    task.Type(),
					"payload": string(task.Payload()),
				}).Error("Task processing failed")
			}),
			Logger: newAsynqLogger(),
		},
	)

	return &RedisTaskProcessor{
		server:        server,
		exports:       exports,
		objects:       objects,
		users:         users,
		notifications: notifications,
		templates:     templates,
		sender:        sender,
		log:           log,
	}
}

// Start registers the task handlers and starts the asynq server.
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskGdprExport, processor.ProcessTaskGdprExport)
	mux.HandleFunc(TaskGdprErase, processor.ProcessTaskGdprErase)
	mux.HandleFunc(TaskEmailDigest, processor.ProcessTaskEmailDigest)

	return processor.server.Start(mux)
}

func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
