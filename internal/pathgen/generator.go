// Package pathgen turns a goal note into an ordered learning path. It tries
// a semantic strategy first (concept extraction plus similarity search) and
// degrades to a link-based fallback, collecting warnings instead of failing.
package pathgen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/llm"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/similarity"
)

// ModelClient is the language-model surface the generator needs.
type ModelClient interface {
	IsAvailable() bool
	ExtractConcepts(ctx context.Context, title, content string) (*llm.ConceptExtraction, error)
	AnalyzeLearningOrder(ctx context.Context, goalTitle string, candidates []llm.NoteSummary) (*llm.PathAnalysis, error)
}

// SemanticSearch is the similarity surface the generator needs.
type SemanticSearch interface {
	IsAvailable() bool
	FindSimilarToContent(ctx context.Context, text string, opts similarity.SearchOptions) ([]similarity.Match, error)
}

// NoteSource hands the generator its candidate notes.
type NoteSource interface {
	GetAllNotes(folder string, excludeFolders []string) ([]models.Note, error)
	GetNote(path string) (*models.Note, error)
	GetBacklinks(path string) ([]models.Note, error)
}

// Result is the outcome of a successful generation. Warnings record every
// degradation taken along the way; Levels groups notes that can be studied
// in parallel.
type Result struct {
	Path     models.LearningPath `json:"path"`
	Levels   [][]string          `json:"levels"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Warning strings attached to degraded results.
const (
	warnSemanticUnavailable = "semantic services unavailable, using link-based strategy"
	warnSemanticFailed      = "semantic strategy failed, using link-based strategy"
	warnNoSemanticMatches   = "no notes matched the extracted concepts, using link-based strategy"
	warnOrderingFailed      = "model ordering failed, using computed order"
	warnCycleDetected       = "circular dependency detected, using cycle-tolerant ordering"
	warnLevelsUnavailable   = "level partitioning unavailable, grouping all notes into one level"
)

// Options tunes a single generation request.
type Options struct {
	Folder         string
	ExcludeFolders []string
	DefaultMinutes int
}

// Generator orchestrates the strategies. Each call builds its own graph and
// working set, so concurrent generations need no locking.
type Generator struct {
	source NoteSource
	model  ModelClient
	search SemanticSearch
	logger *slog.Logger
}

// New creates a Generator. model and search may be nil or unavailable; the
// generator then runs the link-based strategy only.
func New(source NoteSource, model ModelClient, search SemanticSearch, logger *slog.Logger) *Generator {
	return &Generator{source: source, model: model, search: search, logger: logger}
}

// Generate builds a learning path toward goalPath. The only hard failures
// are apperr.ErrNoNotesFound (empty candidate set) and apperr.ErrGoalNotFound;
// every other anomaly degrades to a warning on the result.
func (g *Generator) Generate(ctx context.Context, goalPath string, opts Options) (*Result, error) {
	notes, err := g.source.GetAllNotes(opts.Folder, opts.ExcludeFolders)
	if err != nil {
		return nil, fmt.Errorf("pathgen: load notes: %w", err)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("pathgen: folder %q: %w", opts.Folder, apperr.ErrNoNotesFound)
	}

	byPath := make(map[string]models.Note, len(notes))
	for _, n := range notes {
		byPath[n.Path] = n
	}
	goal, ok := byPath[goalPath]
	if !ok {
		return nil, fmt.Errorf("pathgen: goal %q: %w", goalPath, apperr.ErrGoalNotFound)
	}

	var warnings []string

	if g.modelAvailable() && g.searchAvailable() {
		res, err := g.semanticStrategy(ctx, goal, byPath, opts)
		if err == nil {
			res.Path.TotalAnalyzedNotes = len(notes)
			return res, nil
		}
		g.logger.Warn("pathgen: semantic strategy failed",
			slog.String("goal", goalPath),
			slog.String("error", err.Error()))
		if isNoMatch(err) {
			warnings = append(warnings, warnNoSemanticMatches)
		} else {
			warnings = append(warnings, warnSemanticFailed)
		}
	} else {
		warnings = append(warnings, warnSemanticUnavailable)
	}

	res, err := g.linkStrategy(ctx, goal, opts)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	res.Path.TotalAnalyzedNotes = len(notes)
	return res, nil
}

func (g *Generator) modelAvailable() bool {
	return g.model != nil && g.model.IsAvailable()
}

func (g *Generator) searchAvailable() bool {
	return g.search != nil && g.search.IsAvailable()
}
