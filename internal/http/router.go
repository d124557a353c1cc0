package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"journal-rag/internal/handlers"
	"journal-rag/internal/service"
)

const healthPath = "/api/v1/health"

// Deps holds dependencies for the HTTP router.
type Deps struct {
	SearchService service.SearchService
	IndexService  service.IndexService
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.IndexService))
		r.Method(http.MethodPost, "/search", handlers.NewSearchHandler(deps.SearchService))
		r.Method(http.MethodPost, "/index", handlers.NewIndexHandler(deps.IndexService))
	})

	return r
}
