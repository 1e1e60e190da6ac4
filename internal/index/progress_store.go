package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// ProgressRow is the persisted mastery state of a single note.
type ProgressRow struct {
	NotePath    string
	Mastery     models.MasteryLevel
	LastStudied *time.Time
}

// SetProgress inserts or replaces the progress entry for a note.
func (db *DB) SetProgress(p ProgressRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO progress (note_path, mastery, last_studied)
		VALUES (?, ?, ?)
		ON CONFLICT(note_path) DO UPDATE SET
			mastery      = excluded.mastery,
			last_studied = excluded.last_studied
	`, p.NotePath, string(p.Mastery), p.LastStudied)
	if err != nil {
		return fmt.Errorf("index: set progress: %w", err)
	}
	return nil
}

// GetProgress returns the progress entry for a note. Unknown notes report
// not-started rather than an error.
func (db *DB) GetProgress(notePath string) (ProgressRow, error) {
	row := db.conn.QueryRow(
		`SELECT note_path, mastery, last_studied FROM progress WHERE note_path = ?`, notePath)
	var p ProgressRow
	var mastery string
	err := row.Scan(&p.NotePath, &mastery, &p.LastStudied)
	if errors.Is(err, sql.ErrNoRows) {
		return ProgressRow{NotePath: notePath, Mastery: models.MasteryNotStarted}, nil
	}
	if err != nil {
		return ProgressRow{}, fmt.Errorf("index: get progress: %w", err)
	}
	p.Mastery = models.MasteryLevel(mastery)
	return p, nil
}

// AllProgress returns every stored progress entry keyed by note path.
func (db *DB) AllProgress() (map[string]ProgressRow, error) {
	rows, err := db.conn.Query(`SELECT note_path, mastery, last_studied FROM progress`)
	if err != nil {
		return nil, fmt.Errorf("index: all progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ProgressRow)
	for rows.Next() {
		var p ProgressRow
		var mastery string
		if err := rows.Scan(&p.NotePath, &mastery, &p.LastStudied); err != nil {
			return nil, err
		}
		p.Mastery = models.MasteryLevel(mastery)
		out[p.NotePath] = p
	}
	return out, rows.Err()
}
