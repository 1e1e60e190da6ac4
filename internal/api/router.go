package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/pathservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *pathservice.Service, search Searcher, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, search)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Learning paths.
	r.Post("/paths", h.GeneratePath)
	r.Get("/paths", h.ListPaths)
	r.Get("/paths/{id}", h.GetPath)
	r.Delete("/paths/{id}", h.DeletePath)
	r.Patch("/paths/{id}/progress", h.UpdateProgress)
	r.Get("/paths/{id}/statistics", h.PathStatistics)

	// Semantic search.
	r.Get("/similar", h.Similar)

	// Health.
	r.Get("/health", h.Health)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
