package index

import "github.com/starford/raido/internal/models"

// NoteIndex is the note/link portion of the store. Consumers depend on this
// interface rather than the concrete *DB to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, links []string) error
	DeleteNote(path string) error
	GetNote(path string) (*NoteRow, error)
	AllNotes() ([]NoteRow, error)
	AllChecksums() (map[string]string, error)
	Links(source string) ([]string, error)
	Backlinks(target string) ([]string, error)
	Close() error
}

// PathStore persists learning-path aggregates.
type PathStore interface {
	SavePath(p models.LearningPath) error
	FindPath(id string) (*models.LearningPath, error)
	FindPathByGoal(goalPath string) (*models.LearningPath, error)
	ListPaths() ([]models.LearningPath, error)
	DeletePath(id string) error
}

// ProgressStore persists per-note mastery state.
type ProgressStore interface {
	SetProgress(p ProgressRow) error
	GetProgress(notePath string) (ProgressRow, error)
	AllProgress() (map[string]ProgressRow, error)
}

// Verify *DB satisfies the store contracts at compile time.
var (
	_ NoteIndex     = (*DB)(nil)
	_ PathStore     = (*DB)(nil)
	_ ProgressStore = (*DB)(nil)
)
