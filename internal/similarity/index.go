// Package similarity provides cosine-similarity search over note embedding
// vectors, with an optional time-boxed cache loading vectors from the index.
package similarity

import (
	"math"
	"sort"
)

// Default search parameters.
const (
	DefaultLimit     = 10
	DefaultThreshold = 0.3
)

// Match is one nearest-neighbor hit.
type Match struct {
	Path       string  `json:"path"`
	Similarity float64 `json:"similarity"`
}

// SearchOptions tunes a nearest-neighbor query. Zero values fall back to the
// package defaults; ExcludeIDs removes specific notes from the result.
type SearchOptions struct {
	Limit      int
	Threshold  float64
	ExcludeIDs []string
}

func (o SearchOptions) normalized() SearchOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// Index stores one fixed-length vector per note path. It is a plain
// in-memory map with no locking of its own: the cached variant builds a
// fresh Index per snapshot, and tests use it directly.
type Index struct {
	vectors map[string][]float32
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{vectors: make(map[string][]float32)}
}

// Store sets the vector for path, replacing any prior one.
func (ix *Index) Store(path string, vector []float32) {
	ix.vectors[path] = vector
}

// Remove drops the vector for path, if present.
func (ix *Index) Remove(path string) {
	delete(ix.vectors, path)
}

// Clear removes every stored vector.
func (ix *Index) Clear() {
	ix.vectors = make(map[string][]float32)
}

// Size returns the number of stored vectors.
func (ix *Index) Size() int {
	return len(ix.vectors)
}

// Has reports whether a vector is stored for path.
func (ix *Index) Has(path string) bool {
	_, ok := ix.vectors[path]
	return ok
}

// Search returns the stored vectors most similar to query, similarity
// descending, filtered to similarity >= threshold, truncated to limit, with
// excluded paths removed. Ties are broken by path so output is stable.
func (ix *Index) Search(query []float32, opts SearchOptions) []Match {
	opts = opts.normalized()

	excluded := make(map[string]struct{}, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	matches := make([]Match, 0, len(ix.vectors))
	for path, vec := range ix.vectors {
		if _, skip := excluded[path]; skip {
			continue
		}
		sim := Cosine(query, vec)
		if sim < opts.Threshold {
			continue
		}
		matches = append(matches, Match{Path: path, Similarity: sim})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Path < matches[j].Path
	})
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches
}

// Cosine returns the cosine similarity of a and b: their dot product divided
// by the product of their magnitudes. Mismatched dimensions or a
// zero-magnitude vector yield 0 rather than NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
