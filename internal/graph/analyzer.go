package graph

import (
	"fmt"
	"sort"

	"github.com/starford/raido/internal/apperr"
)

// TopologicalSort returns a linear order consistent with every edge, built
// with Kahn's algorithm. The set of currently available nodes is kept sorted
// lexicographically, so equal inputs always produce identical output.
// Fails with apperr.ErrCircularDependency when the graph has a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	deg := g.inDegrees()

	var ready []string
	for id, d := range deg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var freed []string
		for _, t := range g.Neighbors(id) {
			deg[t]--
			if deg[t] == 0 {
				freed = append(freed, t)
			}
		}
		if len(freed) > 0 {
			ready = append(ready, freed...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("graph: %d of %d nodes ordered: %w", len(order), len(g.nodes), apperr.ErrCircularDependency)
	}
	return order, nil
}

// DetectCycle reports whether the graph contains a cycle, via DFS coloring.
// Returns true the moment a back-edge into the recursion stack is found.
// Cheap pre-check before attempting a strict sort.
func (g *Graph) DetectCycle() bool {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))

	var visit func(string) bool
	visit = func(id string) bool {
		color[id] = grey
		for t := range g.adj[id] {
			switch color[t] {
			case grey:
				return true
			case white:
				if visit(t) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for id := range g.nodes {
		if color[id] == white && visit(id) {
			return true
		}
	}
	return false
}

// Ancestors returns every node from which id is reachable, excluding id
// itself (breadth-first over the reversed adjacency).
func (g *Graph) Ancestors(id string) map[string]struct{} {
	return bfs(g.reversed(), id)
}

// Descendants returns every node reachable from id, excluding id itself.
func (g *Graph) Descendants(id string) map[string]struct{} {
	return bfs(g.adj, id)
}

// PathToGoal computes the ordered prerequisite chain for goalID: the induced
// subgraph over ancestors(goal) plus the goal, topologically sorted. The goal
// has no outgoing edge inside that subgraph, so it always comes last.
// Fails with apperr.ErrGoalNotFound when goalID is not a node.
func (g *Graph) PathToGoal(goalID string) ([]string, error) {
	if !g.Has(goalID) {
		return nil, fmt.Errorf("graph: %q: %w", goalID, apperr.ErrGoalNotFound)
	}
	keep := g.Ancestors(goalID)
	keep[goalID] = struct{}{}
	return g.Subgraph(keep).TopologicalSort()
}

// Levels partitions the nodes into parallel-learnable groups: each level
// holds every node whose prerequisites are all in earlier levels, sorted
// lexicographically. Fails with apperr.ErrCircularDependency when no
// zero-in-degree node remains while nodes are still unprocessed.
func (g *Graph) Levels() ([][]string, error) {
	deg := g.inDegrees()
	remaining := len(g.nodes)

	var levels [][]string
	for remaining > 0 {
		var level []string
		for id, d := range deg {
			if d == 0 {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			return nil, fmt.Errorf("graph: %d nodes unprocessed: %w", remaining, apperr.ErrCircularDependency)
		}
		sort.Strings(level)

		for _, id := range level {
			delete(deg, id)
			for t := range g.adj[id] {
				if _, alive := deg[t]; alive {
					deg[t]--
				}
			}
		}
		remaining -= len(level)
		levels = append(levels, level)
	}
	return levels, nil
}

// FallbackOrder is the cycle-tolerant variant of TopologicalSort: it runs
// Kahn's algorithm as far as it goes, then appends all remaining (cyclic)
// nodes in lexicographic id order instead of failing. The result always
// contains every node exactly once.
func (g *Graph) FallbackOrder() []string {
	deg := g.inDegrees()

	var ready []string
	for id, d := range deg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	placed := make(map[string]struct{}, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		placed[id] = struct{}{}

		var freed []string
		for _, t := range g.Neighbors(id) {
			deg[t]--
			if deg[t] == 0 {
				freed = append(freed, t)
			}
		}
		if len(freed) > 0 {
			ready = append(ready, freed...)
			sort.Strings(ready)
		}
	}

	if len(order) < len(g.nodes) {
		var rest []string
		for id := range g.nodes {
			if _, ok := placed[id]; !ok {
				rest = append(rest, id)
			}
		}
		sort.Strings(rest)
		order = append(order, rest...)
	}
	return order
}

func bfs(adj map[string]map[string]struct{}, start string) map[string]struct{} {
	reached := make(map[string]struct{})
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for next := range adj[id] {
			if _, seen := reached[next]; seen || next == start {
				continue
			}
			reached[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return reached
}
