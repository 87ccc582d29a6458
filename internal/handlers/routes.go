package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/training-calculator/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	AjaxPath          = "/ajax"
	LegacyAjaxPath    = "/wp-admin/admin-ajax.php"
	AdminListPath     = "/admin/registrations"
	AdminExportPath   = "/admin/registrations/export"
	RegistrationsJSON = "/admin/api/registrations"
)

type Handlers struct {
	Auth         *auth.AuthHandler
	Registration *RegistrationHandler
	Admin        *AdminHandler
	Widget       *WidgetHandler
	APIKey       *APIKeyHandler
}

func RegisterRoutes(r *chi.Mux, h Handlers) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Training Calculator API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)
	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/", h.Widget.HandlePage)
	r.Get("/widget", h.Widget.HandleWidget)
	r.Post(AjaxPath, h.Registration.HandleAjax)
	r.Post(LegacyAjaxPath, h.Registration.HandleAjax)
	huma.Get(api, "/api/activities", h.Widget.HandleActivities)

	// Auth routes
	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)

	// Protected routes
	huma.Get(api, "/me", h.Auth.HandleMe, secured)
	huma.Get(api, RegistrationsJSON, h.Admin.HandleListJSON, secured)
	huma.Post(api, "/admin/api-keys", h.APIKey.HandleCreate, secured)
	huma.Get(api, "/admin/api-keys", h.APIKey.HandleList, secured)
	huma.Delete(api, "/admin/api-keys/{id}", h.APIKey.HandleDelete, secured)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.AuthMiddleware)
		r.Get(AdminListPath, h.Admin.HandleList)
		r.Get(AdminExportPath, h.Admin.HandleExport)
	})

	return api
}
