package index

import (
	"encoding/json"
	"fmt"
)

// UpsertEmbedding stores the embedding vector for a note along with the
// content checksum it was computed from.
func (db *DB) UpsertEmbedding(path, checksum string, vector []float32) error {
	vec, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("index: marshal vector: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO embeddings (path, checksum, vector, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			vector     = excluded.vector,
			updated_at = excluded.updated_at
	`, path, checksum, string(vec))
	if err != nil {
		return fmt.Errorf("index: upsert embedding: %w", err)
	}
	return nil
}

// AllEmbeddings returns every stored vector keyed by note path. Satisfies
// similarity.VectorSource.
func (db *DB) AllEmbeddings() (map[string][]float32, error) {
	rows, err := db.conn.Query(`SELECT path, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("index: all embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]float32)
	for rows.Next() {
		var path, vec string
		if err := rows.Scan(&path, &vec); err != nil {
			return nil, err
		}
		var vector []float32
		if err := json.Unmarshal([]byte(vec), &vector); err != nil {
			continue // skip rows that fail to decode
		}
		out[path] = vector
	}
	return out, rows.Err()
}

// PendingEmbeddings returns notes whose embedding is missing or was computed
// from an older content checksum.
func (db *DB) PendingEmbeddings() ([]NoteRow, error) {
	rows, err := db.conn.Query(`
		SELECT n.path, n.title, n.checksum, n.tags, n.body, n.updated_at
		FROM notes n
		LEFT JOIN embeddings e ON e.path = n.path
		WHERE e.path IS NULL OR e.checksum != n.checksum
		ORDER BY n.path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: pending embeddings: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		n, err := scanNoteRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// PruneEmbeddings deletes vectors for notes no longer in the index.
func (db *DB) PruneEmbeddings() error {
	_, err := db.conn.Exec(`DELETE FROM embeddings WHERE path NOT IN (SELECT path FROM notes)`)
	if err != nil {
		return fmt.Errorf("index: prune embeddings: %w", err)
	}
	return nil
}
