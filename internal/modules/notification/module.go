package notification

import (
	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/notification/application"
	"github.com/notifeed/notifeed/internal/modules/notification/infrastructure/cache"
	"github.com/notifeed/notifeed/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/notifeed/notifeed/internal/modules/notification/infrastructure/websocket"
	notification_http "github.com/notifeed/notifeed/internal/modules/notification/interfaces/http"
	"github.com/redis/go-redis/v9"
)

type Module struct {
	service *application.NotificationService
	handler *notification_http.NotificationHandler
	hub     *websocket.Hub
	repo    *postgres.PgNotificationRepository
}

func NewModule(db *sqlx.DB, redisClient *redis.Client, digests application.DigestEnqueuer) *Module {
	repo := postgres.NewPgNotificationRepository(db)
	hub := websocket.NewHub()
	go hub.Run()

	service := application.NewNotificationService(repo, hub, cache.NewRedisCache(redisClient), digests)
	handler := notification_http.NewNotificationHandler(service, hub)

	return &Module{
		service: service,
		handler: handler,
		hub:     hub,
		repo:    repo,
	}
}

// Repository exposes the concrete store for the background worker, which
// needs the user-wide export and purge queries.
func (m *Module) Repository() *postgres.PgNotificationRepository {
	return m.repo
}

func (m *Module) HTTPHandler() *notification_http.NotificationHandler {
	return m.handler
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

func (m *Module) Hub() *websocket.Hub {
	return m.hub
}

func (m *Module) Shutdown() {
	m.hub.Stop()
}
