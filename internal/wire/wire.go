// internal/wire/wire.go
package wire

import (
	"context"
	"net/http"
	"time"

	"movie-comments/internal/adaptor"
	"movie-comments/internal/data/repository"
	"movie-comments/internal/usecase"
	"movie-comments/pkg/cache"
	"movie-comments/pkg/middleware"
	"movie-comments/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes from the injected store handles
func Wiring(
	repo *repository.Repository,
	store Pinger,
	listCache cache.CommentCache,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, listCache, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, store, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	store Pinger,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	// Metrics wraps Recover so recovered panics are counted as 500s
	r.Use(middleware.Metrics)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.CORS.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseMethodNotAllowed(w)
	})

	wireComment(r, handler.Comment)

	r.Get("/health", health(store, logger))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func health(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseUnavailable(w, "Database unavailable")
			return
		}

		utils.ResponseSuccess(w, "OK", nil)
	}
}
