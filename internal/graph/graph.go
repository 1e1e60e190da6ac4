// Package graph builds dependency graphs from prerequisite relations and
// turns them into deterministic learning orders.
package graph

import (
	"sort"

	"github.com/starford/raido/internal/models"
)

// Graph is a directed graph over note identifiers. An edge source -> target
// means "source must be learned before target".
type Graph struct {
	nodes map[string]struct{}
	adj   map[string]map[string]struct{}
}

// Build initializes every id with an empty adjacency set, then adds an edge
// for every prerequisite relation whose endpoints are both known. Relations
// of other types, self-edges, and relations referencing unknown ids are
// silently dropped. Edges are de-duplicated by construction.
func Build(nodeIDs []string, relations []models.DependencyRelation) *Graph {
	g := &Graph{
		nodes: make(map[string]struct{}, len(nodeIDs)),
		adj:   make(map[string]map[string]struct{}, len(nodeIDs)),
	}
	for _, id := range nodeIDs {
		g.nodes[id] = struct{}{}
		g.adj[id] = make(map[string]struct{})
	}
	for _, r := range relations {
		if r.Type != models.RelationPrerequisite {
			continue
		}
		if r.SourceID == r.TargetID {
			continue
		}
		if _, ok := g.nodes[r.SourceID]; !ok {
			continue
		}
		if _, ok := g.nodes[r.TargetID]; !ok {
			continue
		}
		g.adj[r.SourceID][r.TargetID] = struct{}{}
	}
	return g
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns all node ids in lexicographic order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the direct successors of id in lexicographic order.
func (g *Graph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.adj[id]))
	for t := range g.adj[id] {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Subgraph returns the induced subgraph restricted to keep: only nodes in
// keep survive, along with edges whose endpoints both survive.
func (g *Graph) Subgraph(keep map[string]struct{}) *Graph {
	sub := &Graph{
		nodes: make(map[string]struct{}, len(keep)),
		adj:   make(map[string]map[string]struct{}, len(keep)),
	}
	for id := range keep {
		if _, ok := g.nodes[id]; !ok {
			continue
		}
		sub.nodes[id] = struct{}{}
		sub.adj[id] = make(map[string]struct{})
	}
	for src := range sub.nodes {
		for tgt := range g.adj[src] {
			if _, ok := sub.nodes[tgt]; ok {
				sub.adj[src][tgt] = struct{}{}
			}
		}
	}
	return sub
}

// reversed returns the reverse adjacency (target -> sources).
func (g *Graph) reversed() map[string]map[string]struct{} {
	rev := make(map[string]map[string]struct{}, len(g.nodes))
	for id := range g.nodes {
		rev[id] = make(map[string]struct{})
	}
	for src, targets := range g.adj {
		for tgt := range targets {
			rev[tgt][src] = struct{}{}
		}
	}
	return rev
}

// inDegrees returns the in-degree of every node.
func (g *Graph) inDegrees() map[string]int {
	deg := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		deg[id] = 0
	}
	for _, targets := range g.adj {
		for tgt := range targets {
			deg[tgt]++
		}
	}
	return deg
}
