package tenant

import (
	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/tenant/application"
	"github.com/notifeed/notifeed/internal/modules/tenant/infrastructure/persistence/postgres"
	tenant_http "github.com/notifeed/notifeed/internal/modules/tenant/interfaces/http"
)

type Module struct {
	service *application.TenantService
	handler *tenant_http.TenantHandler
}

func NewModule(db *sqlx.DB) *Module {
	repo := postgres.NewCompanyRepository(db)
	service := application.NewTenantService(repo)
	handler := tenant_http.NewTenantHandler(service)

	return &Module{
		service: service,
		handler: handler,
	}
}

func (m *Module) Service() *application.TenantService {
	return m.service
}

func (m *Module) HTTPHandler() *tenant_http.TenantHandler {
	return m.handler
}
