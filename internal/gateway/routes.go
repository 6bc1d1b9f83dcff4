package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notifeed/notifeed/internal/gateway/middleware"
	auth_http "github.com/notifeed/notifeed/internal/modules/auth/interfaces/http"
	emailtemplate_http "github.com/notifeed/notifeed/internal/modules/emailtemplate/interfaces/http"
	gdpr_http "github.com/notifeed/notifeed/internal/modules/gdpr/interfaces/http"
	notification_http "github.com/notifeed/notifeed/internal/modules/notification/interfaces/http"
	security_http "github.com/notifeed/notifeed/internal/modules/security/interfaces/http"
	tenant_http "github.com/notifeed/notifeed/internal/modules/tenant/interfaces/http"
	theme_http "github.com/notifeed/notifeed/internal/modules/theme/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleWare
	NotificationHandler *notification_http.NotificationHandler
	TenantHandler       *tenant_http.TenantHandler
	TemplateHandler     *emailtemplate_http.TemplateHandler
	ThemeHandler        *theme_http.ThemeHandler
	SessionHandler      *security_http.SessionHandler
	GdprHandler         *gdpr_http.GdprHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		return config.AuthMiddleware.RequireAuth(h)
	}
	staff := func(h http.HandlerFunc) http.Handler {
		return config.AuthMiddleware.RequireAuth(config.AuthMiddleware.RequireRole(h, "admin", "manager"))
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return config.AuthMiddleware.RequireAuth(config.AuthMiddleware.RequireRole(h, "admin"))
	}

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Auth Routes
	mux.HandleFunc("POST /register", config.AuthHandler.Register)
	mux.HandleFunc("POST /login", config.AuthHandler.Login)
	mux.HandleFunc("POST /auth/google", config.AuthHandler.GoogleLogin)
	mux.Handle("GET /me", authed(config.AuthHandler.Me))

	// Notification Routes
	mux.Handle("GET /notifications", authed(config.NotificationHandler.List))
	mux.Handle("GET /notifications/recent", authed(config.NotificationHandler.Recent))
	mux.Handle("GET /notifications/unread-count", authed(config.NotificationHandler.UnreadCount))
	mux.Handle("POST /notifications", staff(config.NotificationHandler.Create))
	mux.Handle("POST /notifications/digest", staff(config.NotificationHandler.SendDigest))
	mux.Handle("PATCH /notifications/{id}/read", authed(config.NotificationHandler.MarkAsRead))
	mux.Handle("PATCH /notifications/read", authed(config.NotificationHandler.MarkManyAsRead))
	mux.Handle("PATCH /notifications/read-all", authed(config.NotificationHandler.MarkAllAsRead))
	mux.Handle("DELETE /notifications/{id}", authed(config.NotificationHandler.Delete))
	mux.Handle("POST /notifications/bulk-delete", authed(config.NotificationHandler.BulkDelete))
	mux.Handle("GET /ws", authed(config.NotificationHandler.Subscribe))

	// Company Routes
	mux.Handle("POST /companies", adminOnly(config.TenantHandler.Create))
	mux.Handle("GET /companies", authed(config.TenantHandler.List))
	mux.Handle("GET /companies/{id}", authed(config.TenantHandler.Get))
	mux.Handle("PATCH /companies/{id}", adminOnly(config.TenantHandler.Update))
	mux.Handle("DELETE /companies/{id}", adminOnly(config.TenantHandler.Delete))
	mux.Handle("POST /companies/{id}/members", adminOnly(config.TenantHandler.AddMember))
	mux.Handle("GET /companies/{id}/members", authed(config.TenantHandler.ListMembers))
	mux.Handle("PATCH /companies/{id}/members/{userID}", adminOnly(config.TenantHandler.UpdateMemberRole))
	mux.Handle("DELETE /companies/{id}/members/{userID}", adminOnly(config.TenantHandler.RemoveMember))

	// Email Template Routes
	mux.Handle("POST /email-templates", staff(config.TemplateHandler.Create))
	mux.Handle("GET /email-templates", authed(config.TemplateHandler.List))
	mux.Handle("GET /email-templates/{id}", authed(config.TemplateHandler.Get))
	mux.Handle("PATCH /email-templates/{id}", staff(config.TemplateHandler.Update))
	mux.Handle("DELETE /email-templates/{id}", staff(config.TemplateHandler.Delete))
	mux.Handle("POST /email-templates/{id}/render", authed(config.TemplateHandler.Render))

	// Theme Routes
	mux.Handle("POST /themes", staff(config.ThemeHandler.Create))
	mux.Handle("GET /themes", authed(config.ThemeHandler.List))
	mux.Handle("GET /themes/{id}", authed(config.ThemeHandler.Get))
	mux.Handle("PATCH /themes/{id}", staff(config.ThemeHandler.Update))
	mux.Handle("DELETE /themes/{id}", staff(config.ThemeHandler.Delete))
	mux.Handle("POST /themes/{id}/default", staff(config.ThemeHandler.SetDefault))
	// Stylesheets stay reachable without a token so login pages can be themed.
	mux.Handle("GET /themes/{id}/css", config.AuthMiddleware.FlexibleAuth(http.HandlerFunc(config.ThemeHandler.CSS)))

	// Session Routes
	mux.Handle("GET /security/sessions", authed(config.SessionHandler.List))
	mux.Handle("DELETE /security/sessions/{tokenID}", authed(config.SessionHandler.Revoke))

	// GDPR Routes
	mux.Handle("POST /gdpr/exports", authed(config.GdprHandler.RequestExport))
	mux.Handle("GET /gdpr/exports/{id}", authed(config.GdprHandler.GetExport))
	mux.Handle("DELETE /gdpr/account", authed(config.GdprHandler.RequestErasure))

	return mux
}
