package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/blog-backend/internal/api/handlers"
	"github.com/baharkarakas/blog-backend/internal/config"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/middleware"
	"github.com/baharkarakas/blog-backend/internal/models"
	"github.com/baharkarakas/blog-backend/internal/services"
)

type RouterDeps struct {
	Cfg        config.Config
	Log        *slog.Logger
	Tokens     middleware.TokenVerifier
	Users      *services.UserService
	Posts      *services.PostService
	Categories *services.CategoryService
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	authn := middleware.NewAuthenticator(d.Tokens, d.Users)
	authH := handlers.NewAuthHandler(d.Users)
	userH := handlers.NewUserHandler(d.Users)
	postH := handlers.NewPostHandler(d.Posts)
	catH := handlers.NewCategoryHandler(d.Categories)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, middleware.Recover)
	r.Use(middleware.Logging(d.Log), middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(d.Cfg.RateRPS, d.Cfg.RateBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// ---------- auth ----------
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.With(middleware.PerMinute(d.Cfg.LoginPerMin)).Post("/login", authH.Login)
			r.With(authn.Require).Get("/me", authH.Me)
		})

		// ---------- posts ----------
		r.Route("/posts", func(r chi.Router) {
			r.With(authn.Optional).Get("/", postH.List)
			r.With(authn.Optional).Get("/{id}", postH.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/", postH.Create)
				r.Put("/{id}", postH.Update)
				r.Delete("/{id}", postH.Delete)
				r.Post("/{id}/comments", postH.AddComment)
			})
		})

		// ---------- categories ----------
		r.Get("/categories", catH.List)
		r.With(authn.Require).Post("/categories", catH.Create)

		// ---------- users ----------
		r.With(authn.Require, middleware.RequireRole(models.RoleAdmin)).Get("/users", userH.List)
	})

	return r
}
