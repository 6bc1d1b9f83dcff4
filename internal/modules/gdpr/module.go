package gdpr

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/gdpr/application"
	"github.com/notifeed/notifeed/internal/modules/gdpr/domain"
	"github.com/notifeed/notifeed/internal/modules/gdpr/infrastructure/persistence/postgres"
	gdprhttp "github.com/notifeed/notifeed/internal/modules/gdpr/interfaces/http"
)

type Module struct {
	repo    domain.ExportRepository
	service *application.GdprService
	handler *gdprhttp.GdprHandler
}

func NewModule(db *sqlx.DB, store domain.ObjectStore, enqueuer application.TaskEnqueuer, downloadURLTTL time.Duration) *Module {
	repo := postgres.NewPgExportRepository(db)
	service := application.NewGdprService(repo, store, enqueuer, downloadURLTTL)
	return &Module{
		repo:    repo,
		service: service,
		handler: gdprhttp.NewGdprHandler(service),
	}
}

func (m *Module) Service() *application.GdprService {
	return m.service
}

// ExportRepository is exposed for the worker, which updates export rows
// as jobs finish.
func (m *Module) ExportRepository() domain.ExportRepository {
	return m.repo
}

func (m *Module) HTTPHandler() *gdprhttp.GdprHandler {
	return m.handler
}
