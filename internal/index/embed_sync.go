package index

import (
	"context"
	"log/slog"

	"github.com/starford/raido/internal/similarity"
)

// SyncEmbeddings embeds every note whose vector is missing or out of date
// with respect to the note's content checksum. Failures on individual notes
// are logged and skipped so one bad note never blocks the rest. Returns the
// number of vectors written.
func SyncEmbeddings(ctx context.Context, db *DB, embedder similarity.Embedder, logger *slog.Logger) (int, error) {
	if embedder == nil || !embedder.IsAvailable() {
		return 0, nil
	}

	pending, err := db.PendingEmbeddings()
	if err != nil {
		return 0, err
	}

	written := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		text := n.Title + "\n" + n.Body
		vector, err := embedder.Embed(ctx, text)
		if err != nil {
			logger.Warn("embed: failed", slog.String("path", n.Path), slog.String("error", err.Error()))
			continue
		}
		if err := db.UpsertEmbedding(n.Path, n.Checksum, vector); err != nil {
			logger.Warn("embed: store failed", slog.String("path", n.Path), slog.String("error", err.Error()))
			continue
		}
		written++
		logger.Debug("embed: stored", slog.String("path", n.Path), slog.Int("dimensions", len(vector)))
	}
	return written, nil
}
