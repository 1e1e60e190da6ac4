package pathgen

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/llm"
	"github.com/starford/raido/internal/models"
)

const (
	defaultMinutesPerNode = 30
	minMinutesPerNode     = 5
	maxMinutesPerNode     = 480
)

// modelOrder asks the model to sequence candidates toward the goal and
// validates the response: titles outside the candidate set are dropped, the
// goal is forced to close the order, and time estimates are resolved back to
// note paths.
func (g *Generator) modelOrder(ctx context.Context, goal models.Note, candidates []models.Note) ([]string, map[string]int, []models.KnowledgeGap, error) {
	byTitle := make(map[string]string, len(candidates)+1)
	summaries := make([]llm.NoteSummary, 0, len(candidates)+1)
	for _, n := range candidates {
		byTitle[n.DisplayTitle()] = n.Path
		summaries = append(summaries, llm.NoteSummary{Title: n.DisplayTitle(), Content: n.Content})
	}
	byTitle[goal.DisplayTitle()] = goal.Path
	summaries = append(summaries, llm.NoteSummary{Title: goal.DisplayTitle(), Content: goal.Content})

	analysis, err := g.model.AnalyzeLearningOrder(ctx, goal.DisplayTitle(), summaries)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("pathgen: analyze order: %w", err)
	}

	var order []string
	placed := make(map[string]struct{}, len(analysis.LearningOrder))
	for _, title := range analysis.LearningOrder {
		p, known := byTitle[title]
		if !known {
			continue
		}
		if _, dup := placed[p]; dup {
			continue
		}
		placed[p] = struct{}{}
		order = append(order, p)
	}
	order = moveToEnd(order, goal.Path)

	minutes := make(map[string]int, len(analysis.EstimatedMinutes))
	for title, m := range analysis.EstimatedMinutes {
		if p, known := byTitle[title]; known {
			minutes[p] = m
		}
	}

	var gaps []models.KnowledgeGap
	for _, gap := range analysis.KnowledgeGaps {
		gaps = append(gaps, models.KnowledgeGap{
			Concept:            gap.Concept,
			Reason:             gap.Reason,
			Priority:           priorityFromImportance(gap.Importance),
			SuggestedResources: gap.SuggestedResources,
		})
	}
	return order, minutes, gaps, nil
}

// assemblePath converts the ordered path list into a LearningPath aggregate.
// Unknown order entries are skipped; duplicate gap concepts are dropped by
// the aggregate (first occurrence wins).
func assemblePath(
	goal models.Note,
	order []string,
	lookup func(string) (models.Note, bool),
	minutes map[string]int,
	deps map[string][]string,
	gaps []models.KnowledgeGap,
	defaultMinutes int,
) models.LearningPath {
	if defaultMinutes <= 0 {
		defaultMinutes = defaultMinutesPerNode
	}

	nodes := make([]models.LearningNode, 0, len(order))
	for _, p := range order {
		n, ok := lookup(p)
		if !ok {
			continue
		}
		nodes = append(nodes, models.LearningNode{
			NotePath:         p,
			Title:            n.DisplayTitle(),
			Mastery:          models.MasteryNotStarted,
			Dependencies:     deps[p],
			EstimatedMinutes: clampMinutes(minutes[p], defaultMinutes),
		})
	}

	path := models.NewLearningPath(uuid.NewString(), goal.Path, goal.DisplayTitle(), nodes)
	return path.AddKnowledgeGaps(gaps)
}

// clampMinutes keeps model-provided estimates inside a sane range; zero or
// negative values take the default.
func clampMinutes(m, fallback int) int {
	if m <= 0 {
		return fallback
	}
	if m < minMinutesPerNode {
		return minMinutesPerNode
	}
	if m > maxMinutesPerNode {
		return maxMinutesPerNode
	}
	return m
}
