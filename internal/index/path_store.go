package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// SavePath inserts or replaces a learning path. The full aggregate is stored
// as a JSON document; goal and timestamps are lifted into columns for
// querying.
func (db *DB) SavePath(p models.LearningPath) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index: marshal path: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO paths (id, goal_path, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal_path  = excluded.goal_path,
			document   = excluded.document,
			updated_at = excluded.updated_at
	`, p.ID, p.GoalPath, string(doc), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: save path: %w", err)
	}
	return nil
}

// FindPath returns the path with the given id, or apperr.ErrNotFound.
func (db *DB) FindPath(id string) (*models.LearningPath, error) {
	return db.scanPath(db.conn.QueryRow(`SELECT document FROM paths WHERE id = ?`, id))
}

// FindPathByGoal returns the most recently updated path for a goal note, or
// apperr.ErrNotFound.
func (db *DB) FindPathByGoal(goalPath string) (*models.LearningPath, error) {
	return db.scanPath(db.conn.QueryRow(
		`SELECT document FROM paths WHERE goal_path = ? ORDER BY updated_at DESC LIMIT 1`, goalPath))
}

// ListPaths returns every stored path, most recently updated first.
func (db *DB) ListPaths() ([]models.LearningPath, error) {
	rows, err := db.conn.Query(`SELECT document FROM paths ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("index: list paths: %w", err)
	}
	defer rows.Close()

	var out []models.LearningPath
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p models.LearningPath
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("index: unmarshal path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePath removes a path. Deleting an unknown id is apperr.ErrNotFound.
func (db *DB) DeletePath(id string) error {
	res, err := db.conn.Exec(`DELETE FROM paths WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: delete path: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("index: path %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (db *DB) scanPath(row *sql.Row) (*models.LearningPath, error) {
	var doc string
	err := row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: path: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: find path: %w", err)
	}
	var p models.LearningPath
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("index: unmarshal path: %w", err)
	}
	return &p, nil
}
