package auth

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/auth/application"
	"github.com/notifeed/notifeed/internal/modules/auth/domain"
	"github.com/notifeed/notifeed/internal/modules/auth/infrastructure/persistence/postgres"
	auth_http "github.com/notifeed/notifeed/internal/modules/auth/interfaces/http"
)

type Module struct {
	service    *application.AuthService
	repository *postgres.PgUserRepository
	handler    *auth_http.AuthHandler
}

func NewModule(db *sqlx.DB, sessions application.SessionRecorder, jwtSecret string, jwtExpiry time.Duration, googleClientID string) *Module {
	repository := postgres.NewUserRepository(db)
	service := application.NewAuthService(repository, sessions, jwtSecret, jwtExpiry)
	handler := auth_http.NewAuthHandler(service, googleClientID)

	return &Module{
		service:    service,
		repository: repository,
		handler:    handler,
	}
}

func (m *Module) Service() *application.AuthService {
	return m.service
}

// UserFinder exposes the read-only user view to other modules.
func (m *Module) UserFinder() domain.UserFinder {
	return m.repository
}

// UserRepository returns the full repository, used by the gdpr worker.
func (m *Module) UserRepository() domain.UserRepository {
	return m.repository
}

func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}
