package security

import (
	"time"

	"github.com/notifeed/notifeed/internal/modules/security/domain"
	sessredis "github.com/notifeed/notifeed/internal/modules/security/infrastructure/redis"
	security_http "github.com/notifeed/notifeed/internal/modules/security/interfaces/http"
	"github.com/redis/go-redis/v9"
)

type Module struct {
	store   *sessredis.RedisSessionStore
	handler *security_http.SessionHandler
}

func NewModule(redisClient *redis.Client, sessionTTL time.Duration) *Module {
	store := sessredis.NewSessionStore(redisClient, sessionTTL)
	handler := security_http.NewSessionHandler(store)

	return &Module{
		store:   store,
		handler: handler,
	}
}

// Store exposes the session registry to the auth module and middleware.
func (m *Module) Store() domain.SessionStore {
	return m.store
}

func (m *Module) HTTPHandler() *security_http.SessionHandler {
	return m.handler
}
