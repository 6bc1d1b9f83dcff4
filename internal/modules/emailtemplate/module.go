package emailtemplate

import (
	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/application"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/domain"
	"github.com/notifeed/notifeed/internal/modules/emailtemplate/infrastructure/persistence/postgres"
	tmplhttp "github.com/notifeed/notifeed/internal/modules/emailtemplate/interfaces/http"
)

type Module struct {
	repo    *postgres.PgTemplateRepository
	service *application.TemplateService
	handler *tmplhttp.TemplateHandler
}

func NewModule(db *sqlx.DB) *Module {
	repo := postgres.NewPgTemplateRepository(db)
	service := application.NewTemplateService(repo)
	return &Module{
		repo:    repo,
		service: service,
		handler: tmplhttp.NewTemplateHandler(service),
	}
}

// Repository is exposed for the digest worker, which loads templates
// outside the service layer.
func (m *Module) Repository() domain.TemplateRepository {
	return m.repo
}

func (m *Module) Service() *application.TemplateService {
	return m.service
}

func (m *Module) HTTPHandler() *tmplhttp.TemplateHandler {
	return m.handler
}
