package handler

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sololeveling/internal/config"
	"github.com/sololeveling/internal/middleware"
)

// NewRouter собирает маршруты веб-клиента. Cookie браузера уходят в CORS-ответы /api
// только для явно перечисленных origins; с "*" запросы идут без credentials.
func NewRouter(cfg *config.Config, reg *Registry) http.Handler {
	pageH := NewPageHandler(reg, cfg.APIBaseURL)
	configH := NewConfigHandler(cfg)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RecoverJSON)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BrowserSession(cfg.CookieSecure))
		r.Use(middleware.RequestLog)
		r.Use(middleware.RateLimitActions())

		r.Get("/", pageH.Index)
		r.Post("/mode", pageH.SetMode)
		r.Post("/signup", pageH.Signup)
		r.Post("/login", pageH.Login)
		r.Post("/logout", pageH.Logout)
		r.Post("/missions/generate", pageH.GenerateMissions)

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   cfg.CORSAllowedOrigins,
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type"},
				AllowCredentials: !slices.Contains(cfg.CORSAllowedOrigins, "*"),
				MaxAge:           300,
			}))
			r.Get("/state", pageH.State)
			r.Get("/config", configH.GetClientConfig)
		})
	})
	return r
}
