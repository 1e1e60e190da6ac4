package models

import (
	"fmt"
	"time"
)

// MasteryLevel is the progress state of a learning node.
type MasteryLevel string

const (
	MasteryNotStarted MasteryLevel = "not_started"
	MasteryInProgress MasteryLevel = "in_progress"
	MasteryCompleted  MasteryLevel = "completed"
)

// Valid reports whether the level is one of the three known states.
func (m MasteryLevel) Valid() bool {
	switch m {
	case MasteryNotStarted, MasteryInProgress, MasteryCompleted:
		return true
	}
	return false
}

// GapPriority ranks how urgently a knowledge gap should be filled.
type GapPriority string

const (
	GapPriorityHigh   GapPriority = "high"
	GapPriorityMedium GapPriority = "medium"
	GapPriorityLow    GapPriority = "low"
)

// KnowledgeGap is a concept judged necessary for the goal but absent from
// the vault.
type KnowledgeGap struct {
	Concept            string      `json:"concept"`
	Reason             string      `json:"reason"`
	Priority           GapPriority `json:"priority"`
	SuggestedResources []string    `json:"suggested_resources,omitempty"`
}

// LearningNode is one step in a learning path. Values are immutable; every
// mutation returns a new instance.
type LearningNode struct {
	NotePath         string       `json:"note_path"`
	Title            string       `json:"title"`
	Order            int          `json:"order"`
	Mastery          MasteryLevel `json:"mastery"`
	Dependencies     []string     `json:"dependencies,omitempty"`
	LastStudied      *time.Time   `json:"last_studied,omitempty"`
	EstimatedMinutes int          `json:"estimated_minutes"`
}

// StartLearning moves the node to in-progress and stamps the study time.
// Completed nodes are left untouched so progress never regresses.
func (n LearningNode) StartLearning() LearningNode {
	if n.Mastery == MasteryCompleted {
		return n
	}
	now := time.Now()
	n.Mastery = MasteryInProgress
	n.LastStudied = &now
	return n
}

// Complete marks the node completed. Reachable directly from not-started.
func (n LearningNode) Complete() LearningNode {
	now := time.Now()
	n.Mastery = MasteryCompleted
	n.LastStudied = &now
	return n
}

// Reset returns the node to not-started from any state.
func (n LearningNode) Reset() LearningNode {
	n.Mastery = MasteryNotStarted
	n.LastStudied = nil
	return n
}

// ApplyMastery dispatches to the transition matching the requested level.
func (n LearningNode) ApplyMastery(level MasteryLevel) (LearningNode, error) {
	switch level {
	case MasteryNotStarted:
		return n.Reset(), nil
	case MasteryInProgress:
		return n.StartLearning(), nil
	case MasteryCompleted:
		return n.Complete(), nil
	}
	return n, fmt.Errorf("mastery level %q: invalid", level)
}

// PathStatistics is a derived view over a path's nodes, recomputed on every
// call and never stored.
type PathStatistics struct {
	TotalNodes       int `json:"total_nodes"`
	CompletedNodes   int `json:"completed_nodes"`
	InProgressNodes  int `json:"in_progress_nodes"`
	NotStartedNodes  int `json:"not_started_nodes"`
	EstimatedMinutes int `json:"estimated_minutes"`
}

// LearningPath is the aggregate root for a generated curriculum: a goal, an
// ordered node sequence, and the knowledge gaps found along the way. It owns
// its nodes exclusively; accessors hand out copies.
type LearningPath struct {
	ID                 string         `json:"id"`
	GoalPath           string         `json:"goal_path"`
	GoalTitle          string         `json:"goal_title"`
	Nodes              []LearningNode `json:"nodes"`
	KnowledgeGaps      []KnowledgeGap `json:"knowledge_gaps,omitempty"`
	TotalAnalyzedNotes int            `json:"total_analyzed_notes"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// NewLearningPath constructs a path, taking ownership of a copy of nodes and
// renumbering them contiguously from 1.
func NewLearningPath(id, goalPath, goalTitle string, nodes []LearningNode) LearningPath {
	now := time.Now()
	p := LearningPath{
		ID:        id,
		GoalPath:  goalPath,
		GoalTitle: goalTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return p.SetNodes(nodes)
}

// NodeList returns a copy of the node sequence.
func (p LearningPath) NodeList() []LearningNode {
	out := make([]LearningNode, len(p.Nodes))
	copy(out, p.Nodes)
	return out
}

// FindNode returns a copy of the node for notePath.
func (p LearningPath) FindNode(notePath string) (LearningNode, bool) {
	for _, n := range p.Nodes {
		if n.NotePath == notePath {
			return n, true
		}
	}
	return LearningNode{}, false
}

// SetNodes replaces the node sequence with a copy of nodes, renumbered 1..n.
func (p LearningPath) SetNodes(nodes []LearningNode) LearningPath {
	replaced := make([]LearningNode, len(nodes))
	copy(replaced, nodes)
	p.Nodes = renumber(replaced)
	p.UpdatedAt = time.Now()
	return p
}

// AddNode appends a node at the end of the sequence.
func (p LearningPath) AddNode(node LearningNode) LearningPath {
	return p.SetNodes(append(p.NodeList(), node))
}

// RemoveNode drops the node for notePath; remaining nodes are renumbered so
// ordering stays contiguous and 1-based.
func (p LearningPath) RemoveNode(notePath string) LearningPath {
	kept := make([]LearningNode, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.NotePath != notePath {
			kept = append(kept, n)
		}
	}
	return p.SetNodes(kept)
}

// UpdateNodeProgress applies a mastery transition to the node for notePath
// and returns the updated path.
func (p LearningPath) UpdateNodeProgress(notePath string, level MasteryLevel) (LearningPath, error) {
	for i, n := range p.Nodes {
		if n.NotePath != notePath {
			continue
		}
		updated, err := n.ApplyMastery(level)
		if err != nil {
			return p, err
		}
		nodes := p.NodeList()
		nodes[i] = updated
		p.Nodes = nodes
		p.UpdatedAt = time.Now()
		return p, nil
	}
	return p, fmt.Errorf("path %s: node %q: %w", p.ID, notePath, errNodeNotFound)
}

var errNodeNotFound = fmt.Errorf("node not in path")

// AddKnowledgeGaps merges gaps into the path, skipping concepts already
// recorded. The first occurrence of a concept wins.
func (p LearningPath) AddKnowledgeGaps(gaps []KnowledgeGap) LearningPath {
	seen := make(map[string]struct{}, len(p.KnowledgeGaps))
	for _, g := range p.KnowledgeGaps {
		seen[g.Concept] = struct{}{}
	}
	merged := make([]KnowledgeGap, len(p.KnowledgeGaps), len(p.KnowledgeGaps)+len(gaps))
	copy(merged, p.KnowledgeGaps)
	for _, g := range gaps {
		if _, dup := seen[g.Concept]; dup {
			continue
		}
		seen[g.Concept] = struct{}{}
		merged = append(merged, g)
	}
	p.KnowledgeGaps = merged
	return p
}

// Statistics recomputes progress counts and the estimated remaining time
// (remaining nodes times the average minutes per node).
func (p LearningPath) Statistics() PathStatistics {
	stats := PathStatistics{TotalNodes: len(p.Nodes)}
	totalMinutes := 0
	for _, n := range p.Nodes {
		totalMinutes += n.EstimatedMinutes
		switch n.Mastery {
		case MasteryCompleted:
			stats.CompletedNodes++
		case MasteryInProgress:
			stats.InProgressNodes++
		default:
			stats.NotStartedNodes++
		}
	}
	if len(p.Nodes) > 0 {
		remaining := stats.TotalNodes - stats.CompletedNodes
		stats.EstimatedMinutes = remaining * (totalMinutes / len(p.Nodes))
	}
	return stats
}

// HasCircularDependency runs a DFS cycle check over the per-node dependency
// lists. This is a safety check on the assembled path, independent of the
// graph analyzer that produced it. Dependencies pointing outside the path
// are ignored.
func (p LearningPath) HasCircularDependency() bool {
	const (
		white = 0 // unvisited
		grey  = 1 // in recursion stack
		black = 2 // done
	)
	deps := make(map[string][]string, len(p.Nodes))
	for _, n := range p.Nodes {
		deps[n.NotePath] = n.Dependencies
	}
	color := make(map[string]int, len(deps))

	var visit func(string) bool
	visit = func(id string) bool {
		color[id] = grey
		for _, dep := range deps[id] {
			if _, inPath := deps[dep]; !inPath {
				continue
			}
			switch color[dep] {
			case grey:
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, n := range p.Nodes {
		if color[n.NotePath] == white && visit(n.NotePath) {
			return true
		}
	}
	return false
}

func renumber(nodes []LearningNode) []LearningNode {
	for i := range nodes {
		nodes[i].Order = i + 1
	}
	return nodes
}
