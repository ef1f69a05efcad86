package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/trade-account/internal/config"
	"github.com/crucial707/trade-account/internal/handlers"
	"github.com/crucial707/trade-account/internal/middleware"
	"github.com/crucial707/trade-account/internal/repo"
)

// newRouter wires the full HTTP surface: public auth routes, token-guarded
// account routes, and the health/ready/metrics endpoints.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(db)

	secret := []byte(cfg.JWTSecret)
	authHandler := &handlers.AuthHandler{
		Users:    userRepo,
		Secret:   secret,
		TokenTTL: time.Duration(cfg.JWTExpireHours) * time.Hour,
	}
	accountHandler := &handlers.AccountHandler{Users: userRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Prometheus)

	// Health check: static payload, no DB touch.
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"message": "API is running",
		})
	})

	// Readiness: pings the DB so load balancers stop routing when storage is gone.
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.AuthRateLimiter().Middleware)
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(secret))
		r.Get("/profile", accountHandler.GetProfile)
		r.Get("/balance", accountHandler.GetBalance)
		r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
			Post("/update-balance", accountHandler.UpdateBalance)
	})

	return r
}
