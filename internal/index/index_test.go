package index

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUpsert(t *testing.T, db *DB, path, title, cs string, links []string) {
	t.Helper()
	err := db.UpsertNote(NoteRow{
		Path:      path,
		Title:     title,
		Checksum:  cs,
		Tags:      []string{"test"},
		Body:      "body of " + title,
		UpdatedAt: time.Now(),
	}, links)
	if err != nil {
		t.Fatalf("UpsertNote(%s): %v", path, err)
	}
}

func TestUpsertAndGetNote(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "go/Basics.md", "Basics", "cs1", []string{"go/Install.md"})

	n, err := db.GetNote("go/Basics.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n.Title != "Basics" || n.Checksum != "cs1" {
		t.Errorf("got title=%q checksum=%q", n.Title, n.Checksum)
	}
	if len(n.Tags) != 1 || n.Tags[0] != "test" {
		t.Errorf("tags = %v, want [test]", n.Tags)
	}
	if n.Body == "" {
		t.Error("body should round-trip")
	}
}

func TestGetNoteNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetNote("nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertReplacesLinks(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.md", "A", "cs1", []string{"b.md", "c.md"})
	mustUpsert(t, db, "a.md", "A", "cs2", []string{"c.md"})

	links, err := db.Links("a.md")
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if len(links) != 1 || links[0] != "c.md" {
		t.Errorf("links = %v, want [c.md]", links)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.md", "A", "cs1", []string{"target.md"})
	mustUpsert(t, db, "b.md", "B", "cs2", []string{"target.md"})
	mustUpsert(t, db, "c.md", "C", "cs3", nil)

	back, err := db.Backlinks("target.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(back) != 2 || back[0] != "a.md" || back[1] != "b.md" {
		t.Errorf("backlinks = %v, want [a.md b.md]", back)
	}
}

func TestDeleteNoteRemovesAllRows(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.md", "A", "cs1", []string{"b.md"})
	if err := db.UpsertEmbedding("a.md", "cs1", []float32{1, 0}); err != nil {
		t.Fatalf("UpsertEmbedding: %v", err)
	}
	if err := db.SetProgress(ProgressRow{NotePath: "a.md", Mastery: models.MasteryInProgress}); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	if err := db.DeleteNote("a.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}

	if _, err := db.GetNote("a.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("note still present after delete: %v", err)
	}
	links, _ := db.Links("a.md")
	if len(links) != 0 {
		t.Errorf("links survived delete: %v", links)
	}
	vecs, _ := db.AllEmbeddings()
	if _, ok := vecs["a.md"]; ok {
		t.Error("embedding survived delete")
	}
	p, _ := db.GetProgress("a.md")
	if p.Mastery != models.MasteryNotStarted {
		t.Errorf("progress survived delete: %v", p.Mastery)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.md", "A", "cs-a", nil)
	mustUpsert(t, db, "b.md", "B", "cs-b", nil)

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(cs) != 2 || cs["a.md"] != "cs-a" || cs["b.md"] != "cs-b" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestPathStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	p := models.NewLearningPath("id-1", "go/Goal.md", "Goal", []models.LearningNode{
		{NotePath: "go/Basics.md", Title: "Basics", EstimatedMinutes: 30},
		{NotePath: "go/Goal.md", Title: "Goal", EstimatedMinutes: 45},
	})
	if err := db.SavePath(p); err != nil {
		t.Fatalf("SavePath: %v", err)
	}

	got, err := db.FindPath("id-1")
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if got.GoalPath != "go/Goal.md" || len(got.Nodes) != 2 {
		t.Errorf("got goal=%q nodes=%d", got.GoalPath, len(got.Nodes))
	}
	if got.Nodes[0].Order != 1 || got.Nodes[1].Order != 2 {
		t.Errorf("orders = %d, %d, want 1, 2", got.Nodes[0].Order, got.Nodes[1].Order)
	}
}

func TestFindPathByGoalReturnsLatest(t *testing.T) {
	db := testDB(t)
	older := models.NewLearningPath("id-old", "goal.md", "Goal", nil)
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := models.NewLearningPath("id-new", "goal.md", "Goal", nil)
	for _, p := range []models.LearningPath{older, newer} {
		if err := db.SavePath(p); err != nil {
			t.Fatalf("SavePath(%s): %v", p.ID, err)
		}
	}

	got, err := db.FindPathByGoal("goal.md")
	if err != nil {
		t.Fatalf("FindPathByGoal: %v", err)
	}
	if got.ID != "id-new" {
		t.Errorf("got %s, want id-new", got.ID)
	}
}

func TestListPaths(t *testing.T) {
	db := testDB(t)
	for _, id := range []string{"p1", "p2", "p3"} {
		if err := db.SavePath(models.NewLearningPath(id, id+"-goal.md", id, nil)); err != nil {
			t.Fatalf("SavePath(%s): %v", id, err)
		}
	}
	all, err := db.ListPaths()
	if err != nil {
		t.Fatalf("ListPaths: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d paths, want 3", len(all))
	}
}

func TestDeletePathUnknown(t *testing.T) {
	db := testDB(t)
	if err := db.DeletePath("ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestProgressUnknownDefaultsNotStarted(t *testing.T) {
	db := testDB(t)
	p, err := db.GetProgress("never-seen.md")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if p.Mastery != models.MasteryNotStarted {
		t.Errorf("mastery = %v, want not_started", p.Mastery)
	}
	if p.NotePath != "never-seen.md" {
		t.Errorf("note path = %q", p.NotePath)
	}
}

func TestProgressRoundTrip(t *testing.T) {
	db := testDB(t)
	studied := time.Now().UTC().Truncate(time.Second)
	row := ProgressRow{NotePath: "a.md", Mastery: models.MasteryCompleted, LastStudied: &studied}
	if err := db.SetProgress(row); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	got, err := db.GetProgress("a.md")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if got.Mastery != models.MasteryCompleted {
		t.Errorf("mastery = %v", got.Mastery)
	}
	if got.LastStudied == nil || !got.LastStudied.Equal(studied) {
		t.Errorf("last studied = %v, want %v", got.LastStudied, studied)
	}

	all, err := db.AllProgress()
	if err != nil {
		t.Fatalf("AllProgress: %v", err)
	}
	if len(all) != 1 || all["a.md"].Mastery != models.MasteryCompleted {
		t.Errorf("all progress = %v", all)
	}
}

func TestPendingEmbeddings(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "a.md", "A", "cs-a", nil)
	mustUpsert(t, db, "b.md", "B", "cs-b", nil)
	mustUpsert(t, db, "c.md", "C", "cs-c", nil)

	// a has a current vector, b has a stale one, c has none.
	if err := db.UpsertEmbedding("a.md", "cs-a", []float32{1}); err != nil {
		t.Fatalf("UpsertEmbedding: %v", err)
	}
	if err := db.UpsertEmbedding("b.md", "old-checksum", []float32{1}); err != nil {
		t.Fatalf("UpsertEmbedding: %v", err)
	}

	pending, err := db.PendingEmbeddings()
	if err != nil {
		t.Fatalf("PendingEmbeddings: %v", err)
	}
	if len(pending) != 2 || pending[0].Path != "b.md" || pending[1].Path != "c.md" {
		paths := make([]string, len(pending))
		for i, n := range pending {
			paths[i] = n.Path
		}
		t.Errorf("pending = %v, want [b.md c.md]", paths)
	}
}

func TestPruneEmbeddings(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, "kept.md", "Kept", "cs", nil)
	if err := db.UpsertEmbedding("kept.md", "cs", []float32{1}); err != nil {
		t.Fatalf("UpsertEmbedding: %v", err)
	}
	if err := db.UpsertEmbedding("orphan.md", "cs", []float32{1}); err != nil {
		t.Fatalf("UpsertEmbedding: %v", err)
	}

	if err := db.PruneEmbeddings(); err != nil {
		t.Fatalf("PruneEmbeddings: %v", err)
	}
	vecs, err := db.AllEmbeddings()
	if err != nil {
		t.Fatalf("AllEmbeddings: %v", err)
	}
	if _, ok := vecs["orphan.md"]; ok {
		t.Error("orphan vector not pruned")
	}
	if _, ok := vecs["kept.md"]; !ok {
		t.Error("kept vector pruned")
	}
}
