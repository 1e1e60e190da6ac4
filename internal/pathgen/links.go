package pathgen

import (
	"context"
	"log/slog"
	"sort"

	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
)

// fallbackDepth bounds the backlink walk from the goal so densely linked
// vaults cannot pull in the whole graph.
const fallbackDepth = 5

// linkStrategy walks the link graph backward from the goal to collect
// candidate prerequisites, derives relations from the in-set links, and
// orders the set either through the model or the graph analyzer.
func (g *Generator) linkStrategy(ctx context.Context, goal models.Note, opts Options) (*Result, error) {
	candidates := g.collectBacklinked(goal)

	ids := make([]string, 0, len(candidates))
	for p := range candidates {
		ids = append(ids, p)
	}
	sort.Strings(ids)

	var relations []models.DependencyRelation
	deps := make(map[string][]string)
	for _, id := range ids {
		n := candidates[id]
		for _, target := range n.Links {
			if _, inSet := candidates[target]; !inSet || target == n.Path {
				continue
			}
			rel, err := graph.RelationFromLink(n.Path, target)
			if err != nil {
				continue
			}
			relations = append(relations, rel)
			deps[target] = append(deps[target], n.Path)
		}
	}

	var warnings []string
	var order []string
	var minutes map[string]int
	var gaps []models.KnowledgeGap

	if g.modelAvailable() {
		notes := make([]models.Note, 0, len(candidates))
		for _, id := range ids {
			notes = append(notes, candidates[id])
		}
		var err error
		order, minutes, gaps, err = g.modelOrder(ctx, goal, notes)
		if err != nil {
			g.logger.Warn("pathgen: model ordering failed",
				slog.String("goal", goal.Path),
				slog.String("error", err.Error()))
			warnings = append(warnings, warnOrderingFailed)
			order = nil
		}
	}

	gr := graph.Build(ids, relations)

	var levels [][]string
	if len(order) == 0 {
		if gr.DetectCycle() {
			warnings = append(warnings, warnCycleDetected)
			order = gr.FallbackOrder()
		} else {
			sorted, err := gr.TopologicalSort()
			if err != nil {
				// DetectCycle said acyclic, so this cannot happen;
				// degrade the same way a cycle would.
				warnings = append(warnings, warnCycleDetected)
				sorted = gr.FallbackOrder()
			}
			order = sorted
		}
	}
	order = moveToEnd(order, goal.Path)

	if gr.DetectCycle() {
		levels = [][]string{order}
	} else if lv, err := gr.Levels(); err == nil {
		levels = lv
	} else {
		warnings = append(warnings, warnLevelsUnavailable)
		levels = [][]string{order}
	}

	lookup := func(p string) (models.Note, bool) {
		n, ok := candidates[p]
		return n, ok
	}
	path := assemblePath(goal, order, lookup, minutes, deps, gaps, opts.DefaultMinutes)
	return &Result{Path: path, Levels: levels, Warnings: warnings}, nil
}

// collectBacklinked gathers the goal plus every note reachable by walking
// backlinks up to fallbackDepth hops.
func (g *Generator) collectBacklinked(goal models.Note) map[string]models.Note {
	candidates := map[string]models.Note{goal.Path: goal}
	frontier := []string{goal.Path}

	for depth := 0; depth < fallbackDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, p := range frontier {
			back, err := g.source.GetBacklinks(p)
			if err != nil {
				g.logger.Warn("pathgen: backlinks failed",
					slog.String("path", p),
					slog.String("error", err.Error()))
				continue
			}
			for _, b := range back {
				if _, seen := candidates[b.Path]; seen {
					continue
				}
				candidates[b.Path] = b
				next = append(next, b.Path)
			}
		}
		frontier = next
	}
	return candidates
}

// moveToEnd ensures id closes the order, appending it when absent.
func moveToEnd(order []string, id string) []string {
	out := make([]string, 0, len(order)+1)
	for _, p := range order {
		if p != id {
			out = append(out, p)
		}
	}
	return append(out, id)
}
