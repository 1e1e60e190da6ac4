package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/pathservice"
	"github.com/starford/raido/internal/similarity"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *pathservice.Service
	search Searcher
}

// Searcher is the semantic-search surface behind the /similar endpoint.
type Searcher interface {
	IsAvailable() bool
	FindSimilarToContent(ctx context.Context, text string, opts similarity.SearchOptions) ([]similarity.Match, error)
}

// NewHandler creates a new Handler. search may be nil when no embedding
// provider is configured.
func NewHandler(svc *pathservice.Service, search Searcher) *Handler {
	return &Handler{svc: svc, search: search}
}

// GeneratePath handles POST /api/paths.
//
//	@Summary		Generate a learning path toward a goal note
//	@Tags			paths
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GeneratePathRequest	true	"Generation request"
//	@Success		201		{object}	pathgen.Result
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/paths [post]
func (h *Handler) GeneratePath(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		GoalPath string `json:"goal_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.GoalPath == "" {
		writeError(w, http.StatusBadRequest, "goal_path is required")
		return
	}

	res, err := h.svc.Generate(r.Context(), req.GoalPath)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrGoalNotFound):
			writeError(w, http.StatusNotFound, "goal note not found")
		case errors.Is(err, apperr.ErrNoNotesFound):
			writeError(w, http.StatusNotFound, "no notes found")
		default:
			slog.Error("generate path failed", slog.String("goal", req.GoalPath), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListPaths handles GET /api/paths.
//
//	@Summary		List stored learning paths
//	@Tags			paths
//	@Produce		json
//	@Param			goal	query		string	false	"Return only the latest path for this goal note"
//	@Success		200		{object}	PathListResponse
//	@Security		BearerAuth
//	@Router			/paths [get]
func (h *Handler) ListPaths(w http.ResponseWriter, r *http.Request) {
	if goal := r.URL.Query().Get("goal"); goal != "" {
		p, err := h.svc.GetByGoal(goal)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				writeJSON(w, http.StatusOK, map[string]any{"paths": []models.LearningPath{}})
				return
			}
			slog.Error("find path by goal failed", slog.String("goal", goal), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"paths": []models.LearningPath{*p}})
		return
	}

	paths, err := h.svc.List()
	if err != nil {
		slog.Error("list paths failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if paths == nil {
		paths = []models.LearningPath{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"paths": paths})
}

// GetPath handles GET /api/paths/{id}.
//
//	@Summary		Get a learning path by id
//	@Tags			paths
//	@Produce		json
//	@Param			id	path		string	true	"Path id"
//	@Success		200	{object}	models.LearningPath
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/paths/{id} [get]
func (h *Handler) GetPath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get path failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePath handles DELETE /api/paths/{id}.
//
//	@Summary		Delete a learning path
//	@Tags			paths
//	@Param			id	path	string	true	"Path id"
//	@Success		204	"Path deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/paths/{id} [delete]
func (h *Handler) DeletePath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("delete path failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateProgress handles PATCH /api/paths/{id}/progress.
//
//	@Summary		Update mastery of one node in a path
//	@Tags			paths
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Path id"
//	@Param			body	body		UpdateProgressRequest	true	"Progress update"
//	@Success		200		{object}	models.LearningPath
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/paths/{id}/progress [patch]
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req struct {
		NotePath string `json:"note_path"`
		Mastery  string `json:"mastery"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.NotePath == "" || req.Mastery == "" {
		writeError(w, http.StatusBadRequest, "note_path and mastery are required")
		return
	}

	p, err := h.svc.UpdateProgress(id, req.NotePath, models.MasteryLevel(req.Mastery))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, http.StatusNotFound, "not found")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PathStatistics handles GET /api/paths/{id}/statistics.
//
//	@Summary		Progress statistics for a path
//	@Tags			paths
//	@Produce		json
//	@Param			id	path		string	true	"Path id"
//	@Success		200	{object}	models.PathStatistics
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/paths/{id}/statistics [get]
func (h *Handler) PathStatistics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.svc.Statistics(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("path statistics failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Similar handles GET /api/similar.
//
//	@Summary		Semantic search over vault notes
//	@Tags			search
//	@Produce		json
//	@Param			q			query		string	true	"Query text"
//	@Param			limit		query		int		false	"Max results"
//	@Param			threshold	query		number	false	"Minimum similarity"
//	@Success		200			{object}	SimilarResponse
//	@Failure		400			{object}	errResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/similar [get]
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	if h.search == nil || !h.search.IsAvailable() {
		writeError(w, http.StatusServiceUnavailable, "semantic search unavailable")
		return
	}

	opts := similarity.SearchOptions{}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		opts.Limit = limit
	}
	if threshold, err := strconv.ParseFloat(r.URL.Query().Get("threshold"), 64); err == nil {
		opts.Threshold = threshold
	}

	matches, err := h.search.FindSimilarToContent(r.Context(), q, opts)
	if err != nil {
		if errors.Is(err, apperr.ErrServiceUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "semantic search unavailable")
			return
		}
		slog.Error("similarity search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if matches == nil {
		matches = []similarity.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
