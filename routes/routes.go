package routes

import (
	"net/http"
	"strings"

	"github.com/Dosada05/sports-meet/handlers"
	"github.com/Dosada05/sports-meet/middleware"
	"github.com/Dosada05/sports-meet/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	CapabilityAggregate  = "aggregate"
	CapabilitySplitFiles = "split-files"
)

// Options selects which route sets are mounted and how writes are guarded.
type Options struct {
	Capabilities []string
	CORSOrigins  []string
	JWTSecret    string
	Swagger      bool
}

func (o Options) has(capability string) bool {
	for _, c := range o.Capabilities {
		if strings.EqualFold(strings.TrimSpace(c), capability) {
			return true
		}
	}
	return false
}

type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Data      *handlers.DataHandler
	Schedule  *handlers.ScheduleHandler
	Admin     *handlers.AdminHandler
	Fragments *handlers.FragmentHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	secret := []byte(opts.JWTSecret)
	authenticate := middleware.Authenticate(secret)
	adminOnly := middleware.Authorize(secret, services.RoleAdmin)

	if opts.Swagger {
		router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	if h.WebSocket != nil {
		router.Get("/ws/{room}", h.WebSocket.ServeWs)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Post("/auth/login", h.Auth.Login)

		if opts.has(CapabilityAggregate) {
			r.Get("/data", h.Data.GetData)
			r.Get("/games/{day}", h.Data.GetGames)
			r.Get("/players/{id}", h.Data.GetPlayers)
			r.Get("/class-mapping", h.Data.GetClassMapping)
			r.Get("/schedule/{day}", h.Schedule.GetSchedule)
			r.Get("/rosters", h.Schedule.GetRoster)
			r.Get("/athletes", h.Schedule.SearchAthletes)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(adminOnly)

				r.Post("/data", h.Data.PostData)
				r.Post("/games/{day}", h.Data.PostGames)
				r.Post("/players/{id}", h.Data.PostPlayers)
				r.Get("/backups", h.Admin.ListBackups)
				r.Post("/backups/{id}/restore", h.Admin.RestoreBackup)
			})
		}

		if opts.has(CapabilitySplitFiles) {
			r.Route("/fragments", func(r chi.Router) {
				r.Get("/games", h.Fragments.ListGames)
				r.Get("/games/{file}", h.Fragments.GetGames)
				r.Get("/players", h.Fragments.ListPlayers)
				r.Get("/players/{id}", h.Fragments.GetPlayers)
				r.Get("/class-mapping", h.Fragments.GetClassMapping)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					r.Use(adminOnly)

					r.Post("/games/{file}", h.Fragments.PostGames)
					r.Post("/players/{id}", h.Fragments.PostPlayers)
					r.Post("/class-mapping", h.Fragments.PostClassMapping)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(adminOnly)
				r.Post("/merge", h.Admin.Merge)
			})
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("{\n  \"error\": \"the requested resource could not be found\"\n}\n"))
	})
}
