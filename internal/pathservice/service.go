// Package pathservice exposes the application operations over learning
// paths: generation, retrieval, progress tracking, and statistics.
package pathservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/pathgen"
)

// Notifier receives path lifecycle events, typically an SSE broker.
type Notifier interface {
	PublishPathCreated(id, goalPath string)
	PublishPathDeleted(id string)
	PublishProgressUpdated(id, notePath, mastery string)
}

// Service wires the path generator to the persistence stores.
type Service struct {
	gen      *pathgen.Generator
	paths    index.PathStore
	progress index.ProgressStore
	opts     pathgen.Options
	logger   *slog.Logger
	notifier Notifier
}

// New creates a Service. opts provides the per-vault generation defaults
// (scoped folder, exclusions, default minutes per node).
func New(gen *pathgen.Generator, paths index.PathStore, progress index.ProgressStore, opts pathgen.Options, logger *slog.Logger) *Service {
	return &Service{gen: gen, paths: paths, progress: progress, opts: opts, logger: logger}
}

// SetNotifier attaches an event sink for path lifecycle changes.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Generate builds a path toward goalPath, applies any previously recorded
// per-note progress, and persists the result.
func (s *Service) Generate(ctx context.Context, goalPath string) (*pathgen.Result, error) {
	res, err := s.gen.Generate(ctx, goalPath, s.opts)
	if err != nil {
		return nil, err
	}

	res.Path = s.applyStoredProgress(res.Path)

	if err := s.paths.SavePath(res.Path); err != nil {
		return nil, fmt.Errorf("pathservice: persist path: %w", err)
	}
	s.logger.Info("path generated",
		slog.String("id", res.Path.ID),
		slog.String("goal", goalPath),
		slog.Int("nodes", len(res.Path.Nodes)),
		slog.Int("warnings", len(res.Warnings)))
	if s.notifier != nil {
		s.notifier.PublishPathCreated(res.Path.ID, goalPath)
	}
	return res, nil
}

// Get returns a stored path by id.
func (s *Service) Get(id string) (*models.LearningPath, error) {
	return s.paths.FindPath(id)
}

// GetByGoal returns the most recent stored path for a goal note.
func (s *Service) GetByGoal(goalPath string) (*models.LearningPath, error) {
	return s.paths.FindPathByGoal(goalPath)
}

// List returns every stored path.
func (s *Service) List() ([]models.LearningPath, error) {
	return s.paths.ListPaths()
}

// Delete removes a stored path.
func (s *Service) Delete(id string) error {
	if err := s.paths.DeletePath(id); err != nil {
		return err
	}
	s.logger.Info("path deleted", slog.String("id", id))
	if s.notifier != nil {
		s.notifier.PublishPathDeleted(id)
	}
	return nil
}

// UpdateProgress applies a mastery transition to one node of a path,
// persists the updated path, and records the note-level progress so future
// paths over the same note start from it.
func (s *Service) UpdateProgress(id, notePath string, level models.MasteryLevel) (*models.LearningPath, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("pathservice: mastery level %q: invalid", level)
	}
	p, err := s.paths.FindPath(id)
	if err != nil {
		return nil, err
	}

	updated, err := p.UpdateNodeProgress(notePath, level)
	if err != nil {
		return nil, fmt.Errorf("pathservice: %w", err)
	}
	if err := s.paths.SavePath(updated); err != nil {
		return nil, fmt.Errorf("pathservice: persist path: %w", err)
	}

	node, _ := updated.FindNode(notePath)
	row := index.ProgressRow{NotePath: notePath, Mastery: node.Mastery, LastStudied: node.LastStudied}
	if err := s.progress.SetProgress(row); err != nil {
		s.logger.Warn("pathservice: record note progress failed",
			slog.String("note", notePath),
			slog.String("error", err.Error()))
	}

	s.logger.Info("progress updated",
		slog.String("id", id),
		slog.String("note", notePath),
		slog.String("mastery", string(level)))
	if s.notifier != nil {
		s.notifier.PublishProgressUpdated(id, notePath, string(level))
	}
	return &updated, nil
}

// Statistics recomputes the statistics view for a stored path.
func (s *Service) Statistics(id string) (*models.PathStatistics, error) {
	p, err := s.paths.FindPath(id)
	if err != nil {
		return nil, err
	}
	stats := p.Statistics()
	return &stats, nil
}

// applyStoredProgress seeds freshly generated nodes with the mastery state
// already recorded for their notes.
func (s *Service) applyStoredProgress(p models.LearningPath) models.LearningPath {
	stored, err := s.progress.AllProgress()
	if err != nil || len(stored) == 0 {
		return p
	}
	nodes := p.NodeList()
	changed := false
	for i, n := range nodes {
		row, ok := stored[n.NotePath]
		if !ok || row.Mastery == models.MasteryNotStarted {
			continue
		}
		nodes[i].Mastery = row.Mastery
		nodes[i].LastStudied = row.LastStudied
		changed = true
	}
	if !changed {
		return p
	}
	return p.SetNodes(nodes)
}
