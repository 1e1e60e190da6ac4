package pathgen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/llm"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/similarity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	notes map[string]models.Note
}

func (f *fakeSource) GetAllNotes(string, []string) ([]models.Note, error) {
	paths := make([]string, 0, len(f.notes))
	for p := range f.notes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]models.Note, 0, len(paths))
	for _, p := range paths {
		out = append(out, f.notes[p])
	}
	return out, nil
}

func (f *fakeSource) GetNote(path string) (*models.Note, error) {
	n, ok := f.notes[path]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &n, nil
}

func (f *fakeSource) GetBacklinks(path string) ([]models.Note, error) {
	var paths []string
	for p, n := range f.notes {
		for _, target := range n.Links {
			if target == path {
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	out := make([]models.Note, 0, len(paths))
	for _, p := range paths {
		out = append(out, f.notes[p])
	}
	return out, nil
}

type fakeModel struct {
	available  bool
	extraction *llm.ConceptExtraction
	extractErr error
	analysis   *llm.PathAnalysis
	analyzeErr error
}

func (f *fakeModel) IsAvailable() bool { return f.available }

func (f *fakeModel) ExtractConcepts(context.Context, string, string) (*llm.ConceptExtraction, error) {
	return f.extraction, f.extractErr
}

func (f *fakeModel) AnalyzeLearningOrder(context.Context, string, []llm.NoteSummary) (*llm.PathAnalysis, error) {
	return f.analysis, f.analyzeErr
}

type fakeSearch struct {
	available bool
	matches   map[string][]similarity.Match
}

func (f *fakeSearch) IsAvailable() bool { return f.available }

func (f *fakeSearch) FindSimilarToContent(_ context.Context, text string, _ similarity.SearchOptions) ([]similarity.Match, error) {
	return f.matches[text], nil
}

func note(path, title string, links ...string) models.Note {
	return models.Note{Path: path, Basename: path, Title: title, Content: "content of " + title, Links: links}
}

func chainVault() *fakeSource {
	// a links to b, b links to c: a is the deepest prerequisite of goal c.
	return &fakeSource{notes: map[string]models.Note{
		"a.md": note("a.md", "A", "b.md"),
		"b.md": note("b.md", "B", "c.md"),
		"c.md": note("c.md", "C"),
	}}
}

func nodePaths(p models.LearningPath) []string {
	out := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		out = append(out, n.NotePath)
	}
	return out
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

func TestGenerateNoNotes(t *testing.T) {
	g := New(&fakeSource{notes: map[string]models.Note{}}, nil, nil, discardLogger())
	_, err := g.Generate(context.Background(), "goal.md", Options{})
	if !errors.Is(err, apperr.ErrNoNotesFound) {
		t.Errorf("err = %v, want ErrNoNotesFound", err)
	}
}

func TestGenerateGoalNotFound(t *testing.T) {
	g := New(chainVault(), nil, nil, discardLogger())
	_, err := g.Generate(context.Background(), "missing.md", Options{})
	if !errors.Is(err, apperr.ErrGoalNotFound) {
		t.Errorf("err = %v, want ErrGoalNotFound", err)
	}
}

func TestGenerateLinkStrategyOrdersChain(t *testing.T) {
	g := New(chainVault(), nil, nil, discardLogger())

	res, err := g.Generate(context.Background(), "c.md", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got := nodePaths(res.Path)
	want := []string{"a.md", "b.md", "c.md"}
	if len(got) != len(want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("nodes = %v, want %v", got, want)
		}
	}
	if !contains(res.Warnings, warnSemanticUnavailable) {
		t.Errorf("warnings = %v, want semantic-unavailable", res.Warnings)
	}
	if len(res.Levels) != 3 {
		t.Errorf("levels = %v, want three single-node levels", res.Levels)
	}
	if res.Path.GoalPath != "c.md" || res.Path.TotalAnalyzedNotes != 3 {
		t.Errorf("goal = %q analyzed = %d", res.Path.GoalPath, res.Path.TotalAnalyzedNotes)
	}
}

func TestGenerateLinkStrategyNodeDefaults(t *testing.T) {
	g := New(chainVault(), nil, nil, discardLogger())

	res, err := g.Generate(context.Background(), "c.md", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, n := range res.Path.Nodes {
		if n.Mastery != models.MasteryNotStarted {
			t.Errorf("node %s mastery = %v", n.NotePath, n.Mastery)
		}
		if n.EstimatedMinutes != defaultMinutesPerNode {
			t.Errorf("node %s minutes = %d, want default", n.NotePath, n.EstimatedMinutes)
		}
	}
	b, ok := res.Path.FindNode("b.md")
	if !ok || len(b.Dependencies) != 1 || b.Dependencies[0] != "a.md" {
		t.Errorf("b dependencies = %v, want [a.md]", b.Dependencies)
	}
}

func TestGenerateLinkStrategyCycle(t *testing.T) {
	src := &fakeSource{notes: map[string]models.Note{
		"a.md": note("a.md", "A", "b.md"),
		"b.md": note("b.md", "B", "c.md"),
		"c.md": note("c.md", "C", "a.md"),
	}}
	g := New(src, nil, nil, discardLogger())

	res, err := g.Generate(context.Background(), "c.md", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !contains(res.Warnings, warnCycleDetected) {
		t.Errorf("warnings = %v, want cycle warning", res.Warnings)
	}

	got := nodePaths(res.Path)
	if len(got) != 3 {
		t.Fatalf("nodes = %v, want all three exactly once", got)
	}
	seen := map[string]bool{}
	for _, p := range got {
		if seen[p] {
			t.Fatalf("duplicate node %s in %v", p, got)
		}
		seen[p] = true
	}
	if got[len(got)-1] != "c.md" {
		t.Errorf("goal not last: %v", got)
	}
}

func semanticFixture() (*fakeSource, *fakeModel, *fakeSearch) {
	src := &fakeSource{notes: map[string]models.Note{
		"stats/Probability.md": note("stats/Probability.md", "Probability"),
		"stats/Distributions.md": note("stats/Distributions.md", "Distributions"),
		"stats/Inference.md":   note("stats/Inference.md", "Inference"),
	}}
	model := &fakeModel{
		available: true,
		extraction: &llm.ConceptExtraction{
			MainTopic: "statistical inference",
			Prerequisites: []llm.Prerequisite{
				{Concept: "probability", Importance: llm.ImportanceEssential},
				{Concept: "Bayes' theorem", Description: "needed for posterior reasoning", Importance: llm.ImportanceEssential},
			},
			Keywords: []string{"distributions"},
		},
		analysis: &llm.PathAnalysis{
			LearningOrder:    []string{"Probability", "Distributions", "Nonexistent Note", "Inference"},
			EstimatedMinutes: map[string]int{"Probability": 45, "Distributions": 2000},
		},
	}
	search := &fakeSearch{
		available: true,
		matches: map[string][]similarity.Match{
			"probability":   {{Path: "stats/Probability.md", Similarity: 0.9}},
			"distributions": {{Path: "stats/Distributions.md", Similarity: 0.8}},
		},
	}
	return src, model, search
}

func TestGenerateSemanticStrategy(t *testing.T) {
	src, model, search := semanticFixture()
	g := New(src, model, search, discardLogger())

	res, err := g.Generate(context.Background(), "stats/Inference.md", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	got := nodePaths(res.Path)
	want := []string{"stats/Probability.md", "stats/Distributions.md", "stats/Inference.md"}
	if len(got) != len(want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("nodes = %v, want %v", got, want)
		}
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}

	// Unmatched essential concept becomes a high-priority gap.
	if len(res.Path.KnowledgeGaps) != 1 {
		t.Fatalf("gaps = %+v, want one", res.Path.KnowledgeGaps)
	}
	gap := res.Path.KnowledgeGaps[0]
	if gap.Concept != "Bayes' theorem" || gap.Priority != models.GapPriorityHigh {
		t.Errorf("gap = %+v", gap)
	}
	if len(gap.SuggestedResources) == 0 {
		t.Error("gap should carry suggested resources")
	}

	// Model estimates are applied and clamped.
	prob, _ := res.Path.FindNode("stats/Probability.md")
	if prob.EstimatedMinutes != 45 {
		t.Errorf("probability minutes = %d, want 45", prob.EstimatedMinutes)
	}
	dist, _ := res.Path.FindNode("stats/Distributions.md")
	if dist.EstimatedMinutes != maxMinutesPerNode {
		t.Errorf("distributions minutes = %d, want clamped to %d", dist.EstimatedMinutes, maxMinutesPerNode)
	}
	goal, _ := res.Path.FindNode("stats/Inference.md")
	if goal.EstimatedMinutes != defaultMinutesPerNode {
		t.Errorf("goal minutes = %d, want default", goal.EstimatedMinutes)
	}
}

func TestGenerateSemanticOrderingFailureKeepsMatches(t *testing.T) {
	src, model, search := semanticFixture()
	model.analysis = nil
	model.analyzeErr = apperr.ErrMalformedResponse
	g := New(src, model, search, discardLogger())

	res, err := g.Generate(context.Background(), "stats/Inference.md", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !contains(res.Warnings, warnOrderingFailed) {
		t.Errorf("warnings = %v, want ordering-failed", res.Warnings)
	}

	got := nodePaths(res.Path)
	if len(got) != 3 || got[len(got)-1] != "stats/Inference.md" {
		t.Errorf("nodes = %v, want matched notes with goal last", got)
	}
}

func TestGenerateSemanticNoMatchesFallsBack(t *testing.T) {
	src, model, search := semanticFixture()
	search.matches = nil
	// Without link structure the fallback path contains only the goal.
	g := New(src, model, search, discardLogger())

	res, err := g.Generate(context.Background(), "stats/Inference.md", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !contains(res.Warnings, warnNoSemanticMatches) {
		t.Errorf("warnings = %v, want no-matches warning", res.Warnings)
	}
	got := nodePaths(res.Path)
	if len(got) == 0 || got[len(got)-1] != "stats/Inference.md" {
		t.Errorf("nodes = %v, want goal last", got)
	}
}

func TestGenerateModelUnavailableSkipsSemantic(t *testing.T) {
	src, model, search := semanticFixture()
	model.available = false
	g := New(src, model, search, discardLogger())

	res, err := g.Generate(context.Background(), "stats/Inference.md", Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !contains(res.Warnings, warnSemanticUnavailable) {
		t.Errorf("warnings = %v, want semantic-unavailable", res.Warnings)
	}
}

func TestClampMinutes(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, defaultMinutesPerNode},
		{-10, defaultMinutesPerNode},
		{3, minMinutesPerNode},
		{60, 60},
		{10000, maxMinutesPerNode},
	}
	for _, c := range cases {
		if got := clampMinutes(c.in, defaultMinutesPerNode); got != c.want {
			t.Errorf("clampMinutes(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMoveToEnd(t *testing.T) {
	got := moveToEnd([]string{"b", "goal", "a"}, "goal")
	if len(got) != 3 || got[2] != "goal" {
		t.Errorf("got %v, want goal last", got)
	}
	got = moveToEnd([]string{"a", "b"}, "goal")
	if len(got) != 3 || got[2] != "goal" {
		t.Errorf("got %v, want goal appended", got)
	}
}
