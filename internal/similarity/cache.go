package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/raido/internal/apperr"
)

// VectorSource supplies the persisted embedding vectors, keyed by note path.
type VectorSource interface {
	AllEmbeddings() (map[string][]float32, error)
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsAvailable() bool
}

// CachedIndex is the production similarity index: vectors are loaded lazily
// from a VectorSource into an immutable snapshot that is reloaded once it is
// older than the TTL. A refresh builds a complete new Index and then swaps
// it in atomically, so concurrent searches never see a partially loaded set.
type CachedIndex struct {
	source   VectorSource
	embedder Embedder
	ttl      time.Duration
	logger   *slog.Logger

	snap   atomic.Pointer[snapshot]
	loadMu sync.Mutex
}

type snapshot struct {
	index    *Index
	loadedAt time.Time
}

// NewCachedIndex creates a cached index. A non-positive ttl defaults to one
// minute.
func NewCachedIndex(source VectorSource, embedder Embedder, ttl time.Duration, logger *slog.Logger) *CachedIndex {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedIndex{
		source:   source,
		embedder: embedder,
		ttl:      ttl,
		logger:   logger,
	}
}

// IsAvailable reports whether semantic search can serve queries: it needs
// both a vector source and a working embedder.
func (c *CachedIndex) IsAvailable() bool {
	return c.source != nil && c.embedder != nil && c.embedder.IsAvailable()
}

// Invalidate drops the current snapshot so the next search reloads vectors.
// Called by the vault watcher after notes change.
func (c *CachedIndex) Invalidate() {
	c.snap.Store(nil)
}

// Size returns the number of vectors in the current snapshot, loading one if
// needed.
func (c *CachedIndex) Size() (int, error) {
	ix, err := c.current()
	if err != nil {
		return 0, err
	}
	return ix.Size(), nil
}

// FindSimilarToContent embeds text and returns the most similar notes.
func (c *CachedIndex) FindSimilarToContent(ctx context.Context, text string, opts SearchOptions) ([]Match, error) {
	if !c.IsAvailable() {
		return nil, fmt.Errorf("similarity: %w", apperr.ErrServiceUnavailable)
	}
	query, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("similarity: embed query: %w", err)
	}
	ix, err := c.current()
	if err != nil {
		return nil, err
	}
	return ix.Search(query, opts), nil
}

// current returns a fresh-enough snapshot, rebuilding it when missing or
// expired. The load is serialized; readers keep using the old snapshot until
// the new one is swapped in.
func (c *CachedIndex) current() (*Index, error) {
	if s := c.snap.Load(); s != nil && time.Since(s.loadedAt) < c.ttl {
		return s.index, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if s := c.snap.Load(); s != nil && time.Since(s.loadedAt) < c.ttl {
		return s.index, nil
	}

	vectors, err := c.source.AllEmbeddings()
	if err != nil {
		return nil, fmt.Errorf("similarity: load vectors: %w", err)
	}
	ix := NewIndex()
	for path, vec := range vectors {
		ix.Store(path, vec)
	}
	c.snap.Store(&snapshot{index: ix, loadedAt: time.Now()})

	if c.logger != nil {
		c.logger.Debug("similarity: snapshot loaded", slog.Int("vectors", ix.Size()))
	}
	return ix, nil
}
