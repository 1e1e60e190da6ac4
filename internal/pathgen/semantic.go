package pathgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/llm"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/similarity"
)

const (
	conceptSearchLimit     = 5
	conceptSearchThreshold = 0.5
	maxSearchKeywords      = 5
	searchConcurrency      = 5
)

// semanticStrategy extracts prerequisite concepts from the goal, matches them
// against the vault by similarity search, and asks the model for a learning
// order over the matched set. Returns an error when extraction fails or
// nothing matches; the caller then falls back to the link strategy.
func (g *Generator) semanticStrategy(ctx context.Context, goal models.Note, byPath map[string]models.Note, opts Options) (*Result, error) {
	extraction, err := g.model.ExtractConcepts(ctx, goal.DisplayTitle(), goal.Content)
	if err != nil {
		return nil, fmt.Errorf("pathgen: extract concepts: %w", err)
	}

	queries := make([]string, 0, len(extraction.Prerequisites)+maxSearchKeywords)
	for _, p := range extraction.Prerequisites {
		queries = append(queries, p.Concept)
	}
	keywords := extraction.Keywords
	if len(keywords) > maxSearchKeywords {
		keywords = keywords[:maxSearchKeywords]
	}
	queries = append(queries, keywords...)

	// Per-concept searches are independent; fan them out and merge the
	// per-query results afterwards in query order so the working set is
	// deterministic.
	results := make([][]similarity.Match, len(queries))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(searchConcurrency)
	for i, q := range queries {
		grp.Go(func() error {
			matches, err := g.search.FindSimilarToContent(gctx, q, similarity.SearchOptions{
				Limit:      conceptSearchLimit,
				Threshold:  conceptSearchThreshold,
				ExcludeIDs: []string{goal.Path},
			})
			if err != nil {
				g.logger.Warn("pathgen: similarity search failed",
					slog.String("query", q),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = matches
			return nil
		})
	}
	_ = grp.Wait()

	matchCount := make(map[string]int, len(extraction.Prerequisites))
	seen := make(map[string]struct{})
	var matchedNotes []models.Note
	for i, matches := range results {
		for _, m := range matches {
			if i < len(extraction.Prerequisites) {
				matchCount[extraction.Prerequisites[i].Concept]++
			}
			if _, dup := seen[m.Path]; dup {
				continue
			}
			seen[m.Path] = struct{}{}
			if n, ok := byPath[m.Path]; ok {
				matchedNotes = append(matchedNotes, n)
			}
		}
	}

	gaps := conceptGaps(extraction.Prerequisites, matchCount)

	if len(matchedNotes) == 0 {
		return nil, fmt.Errorf("pathgen: goal %q: %w", goal.Path, apperr.ErrNoMatchingNotes)
	}

	var warnings []string
	order, minutes, modelGaps, err := g.modelOrder(ctx, goal, matchedNotes)
	if err != nil {
		// Keep the semantic result: matched notes in discovery order
		// with the goal last.
		g.logger.Warn("pathgen: model ordering failed",
			slog.String("goal", goal.Path),
			slog.String("error", err.Error()))
		warnings = append(warnings, warnOrderingFailed)
		order = make([]string, 0, len(matchedNotes)+1)
		for _, n := range matchedNotes {
			order = append(order, n.Path)
		}
		order = append(order, goal.Path)
		minutes = nil
	}
	gaps = append(gaps, modelGaps...)

	lookup := func(p string) (models.Note, bool) {
		n, ok := byPath[p]
		return n, ok
	}
	path := assemblePath(goal, order, lookup, minutes, nil, gaps, opts.DefaultMinutes)
	return &Result{
		Path:     path,
		Levels:   [][]string{order},
		Warnings: warnings,
	}, nil
}

// conceptGaps turns essential and helpful concepts with zero matched notes
// into knowledge gaps with synthesized search hints.
func conceptGaps(prereqs []llm.Prerequisite, matchCount map[string]int) []models.KnowledgeGap {
	var gaps []models.KnowledgeGap
	for _, p := range prereqs {
		if p.Importance == llm.ImportanceOptional {
			continue
		}
		if matchCount[p.Concept] > 0 {
			continue
		}
		gaps = append(gaps, models.KnowledgeGap{
			Concept:  p.Concept,
			Reason:   p.Description,
			Priority: priorityFromImportance(p.Importance),
			SuggestedResources: []string{
				fmt.Sprintf("Search for an introduction to %q", p.Concept),
				fmt.Sprintf("Create a note covering %q in your vault", p.Concept),
			},
		})
	}
	return gaps
}

func priorityFromImportance(imp llm.Importance) models.GapPriority {
	switch imp {
	case llm.ImportanceEssential:
		return models.GapPriorityHigh
	case llm.ImportanceHelpful:
		return models.GapPriorityMedium
	}
	return models.GapPriorityLow
}

func isNoMatch(err error) bool {
	return errors.Is(err, apperr.ErrNoMatchingNotes)
}
