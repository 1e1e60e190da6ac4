package notesource

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
)

// testSource builds a vault on disk, indexes it, and returns a Source.
func testSource(t *testing.T, files map[string]string) *Vault {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	db, err := index.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return NewVault(store, db)
}

func TestGetNoteHydratesLinksAndBacklinks(t *testing.T) {
	src := testSource(t, map[string]string{
		"a.md": "# A\n\nSee [[b]].",
		"b.md": "# B\n\nBack to [[a]] and on to [[c]].",
		"c.md": "# C",
	})

	n, err := src.GetNote("b.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n.Title != "B" {
		t.Errorf("title = %q", n.Title)
	}
	if len(n.Links) != 2 || n.Links[0] != "a.md" || n.Links[1] != "c.md" {
		t.Errorf("links = %v, want [a.md c.md]", n.Links)
	}
	if len(n.Backlinks) != 1 || n.Backlinks[0] != "a.md" {
		t.Errorf("backlinks = %v, want [a.md]", n.Backlinks)
	}
	if n.Checksum == "" {
		t.Error("checksum not attached from index")
	}
}

func TestGetNoteTitleFallsBackToBasename(t *testing.T) {
	src := testSource(t, map[string]string{"go/Error Handling.md": "no heading here"})

	n, err := src.GetNote("go/Error Handling.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n.Title != "Error Handling" {
		t.Errorf("title = %q, want basename fallback", n.Title)
	}
}

func TestGetAllNotesExcludesFolders(t *testing.T) {
	src := testSource(t, map[string]string{
		"topics/a.md":    "# A",
		"topics/b.md":    "# B",
		"templates/t.md": "# Template",
	})

	notes, err := src.GetAllNotes("", []string{"templates"})
	if err != nil {
		t.Fatalf("GetAllNotes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	for _, n := range notes {
		if n.Path == "templates/t.md" {
			t.Error("excluded folder leaked into results")
		}
	}
}

func TestGetAllNotesScopedFolder(t *testing.T) {
	src := testSource(t, map[string]string{
		"go/a.md":   "# A",
		"rust/b.md": "# B",
	})

	notes, err := src.GetAllNotes("go", nil)
	if err != nil {
		t.Fatalf("GetAllNotes: %v", err)
	}
	if len(notes) != 1 || notes[0].Path != "go/a.md" {
		t.Errorf("notes = %+v, want only go/a.md", notes)
	}
}

func TestGetLinkedNotesSkipsDangling(t *testing.T) {
	src := testSource(t, map[string]string{
		"a.md": "Links to [[b]] and [[missing]].",
		"b.md": "# B",
	})

	linked, err := src.GetLinkedNotes("a.md")
	if err != nil {
		t.Fatalf("GetLinkedNotes: %v", err)
	}
	if len(linked) != 1 || linked[0].Path != "b.md" {
		t.Errorf("linked = %+v, want only b.md", linked)
	}
}

func TestGetBacklinks(t *testing.T) {
	src := testSource(t, map[string]string{
		"hub.md": "# Hub",
		"x.md":   "see [[hub]]",
		"y.md":   "also [[hub]]",
	})

	back, err := src.GetBacklinks("hub.md")
	if err != nil {
		t.Fatalf("GetBacklinks: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("got %d backlinks, want 2", len(back))
	}
	if back[0].Path != "x.md" || back[1].Path != "y.md" {
		t.Errorf("backlinks = %v, %v", back[0].Path, back[1].Path)
	}
}
