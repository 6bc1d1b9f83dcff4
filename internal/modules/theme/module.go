package theme

import (
	"github.com/jmoiron/sqlx"
	"github.com/notifeed/notifeed/internal/modules/theme/application"
	"github.com/notifeed/notifeed/internal/modules/theme/infrastructure/persistence/postgres"
	themehttp "github.com/notifeed/notifeed/internal/modules/theme/interfaces/http"
)

type Module struct {
	service *application.ThemeService
	handler *themehttp.ThemeHandler
}

func NewModule(db *sqlx.DB) *Module {
	repo := postgres.NewPgThemeRepository(db)
	service := application.NewThemeService(repo)
	return &Module{
		service: service,
		handler: themehttp.NewThemeHandler(service),
	}
}

func (m *Module) Service() *application.ThemeService {
	return m.service
}

func (m *Module) HTTPHandler() *themehttp.ThemeHandler {
	return m.handler
}
