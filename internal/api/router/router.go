package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sitechat/widget-ai-platform/internal/http/handlers"
	httpmiddleware "github.com/sitechat/widget-ai-platform/internal/http/middleware"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Widget             *handlers.WidgetHandler
	WidgetJS           *handlers.WidgetJSHandler
	WidgetWS           *handlers.WSHandler
	AdminSessions      *handlers.AdminSessionsHandler
	AdminTenant        *handlers.AdminTenantHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP limit on the public chat endpoints. Zero disables limiting.
	ChatRatePerSecond float64
	ChatRateBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public widget endpoints, loaded from arbitrary customer sites.
	r.Route("/widget", func(widget chi.Router) {
		if cfg.Widget != nil {
			widget.Get("/settings", cfg.Widget.HandleSettings)

			widget.Group(func(chat chi.Router) {
				if cfg.ChatRatePerSecond > 0 {
					chat.Use(httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatRateBurst))
				}
				chat.Post("/chat/start", cfg.Widget.HandleStart)
				chat.Post("/chat/message", cfg.Widget.HandleMessage)
			})
		}
		if cfg.WidgetWS != nil {
			widget.Handle("/ws", cfg.WidgetWS)
		}
	})

	if cfg.WidgetJS != nil {
		r.Handle("/widget.js", cfg.WidgetJS)
	}

	// Admin API, JWT-protected.
	if cfg.AdminSessions != nil || cfg.AdminTenant != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Route("/tenants/{tenantID}", func(t chi.Router) {
				t.Use(httpmiddleware.TenantContext)
				if cfg.AdminTenant != nil {
					t.Get("/profile", cfg.AdminTenant.GetProfile)
					t.Put("/profile", cfg.AdminTenant.PutProfile)
					t.Get("/prompt", cfg.AdminTenant.GetPrompt)
				}
				if cfg.AdminSessions != nil {
					t.Get("/sessions", cfg.AdminSessions.ListSessions)
				}
			})
		})
	}

	return r
}
