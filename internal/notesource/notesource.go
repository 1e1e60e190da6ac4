// Package notesource assembles full domain notes from the vault files and
// the link index.
package notesource

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/storage"
)

// Source hands out fully hydrated notes: parsed content plus links and
// backlinks resolved through the index.
type Source interface {
	// GetAllNotes returns every note under folder ("" means the whole
	// vault), skipping any note whose path starts with one of
	// excludeFolders.
	GetAllNotes(folder string, excludeFolders []string) ([]models.Note, error)
	// GetNote returns a single note by vault-relative path.
	GetNote(path string) (*models.Note, error)
	// GetLinkedNotes returns the notes the given note links to. Targets
	// that do not resolve to an indexed note are skipped.
	GetLinkedNotes(path string) ([]models.Note, error)
	// GetBacklinks returns the notes that link to the given note.
	GetBacklinks(path string) ([]models.Note, error)
}

// Vault implements Source over a storage provider and the SQLite index.
type Vault struct {
	store storage.Provider
	idx   index.NoteIndex
}

// NewVault creates a Source backed by store and idx.
func NewVault(store storage.Provider, idx index.NoteIndex) *Vault {
	return &Vault{store: store, idx: idx}
}

// GetAllNotes walks the vault folder and hydrates every note found.
func (v *Vault) GetAllNotes(folder string, excludeFolders []string) ([]models.Note, error) {
	metas, err := v.store.List(folder)
	if err != nil {
		return nil, fmt.Errorf("notesource: list %q: %w", folder, err)
	}

	var out []models.Note
	for _, m := range metas {
		if excluded(m.Path, excludeFolders) {
			continue
		}
		n, err := v.GetNote(m.Path)
		if err != nil {
			// A file may vanish between listing and reading.
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

// GetNote reads and parses the note at path and attaches its indexed links
// and backlinks.
func (v *Vault) GetNote(path string) (*models.Note, error) {
	data, err := v.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("notesource: read %s: %w", path, err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("notesource: parse %s: %w", path, err)
	}

	links, err := v.idx.Links(path)
	if err != nil {
		return nil, err
	}
	backlinks, err := v.idx.Backlinks(path)
	if err != nil {
		return nil, err
	}

	n := &models.Note{
		Path:        path,
		Basename:    filepath.Base(path),
		Title:       res.Title,
		Content:     res.Body,
		Frontmatter: res.Frontmatter,
		Links:       links,
		Backlinks:   backlinks,
		Tags:        res.Tags,
	}
	if row, err := v.idx.GetNote(path); err == nil {
		n.Checksum = row.Checksum
		n.UpdatedAt = row.UpdatedAt
	}
	if n.Title == "" {
		n.Title = n.DisplayTitle()
	}
	return n, nil
}

// GetLinkedNotes resolves the outgoing links of path into notes.
func (v *Vault) GetLinkedNotes(path string) ([]models.Note, error) {
	targets, err := v.idx.Links(path)
	if err != nil {
		return nil, err
	}
	return v.hydrate(targets)
}

// GetBacklinks resolves the notes linking to path.
func (v *Vault) GetBacklinks(path string) ([]models.Note, error) {
	sources, err := v.idx.Backlinks(path)
	if err != nil {
		return nil, err
	}
	return v.hydrate(sources)
}

func (v *Vault) hydrate(paths []string) ([]models.Note, error) {
	var out []models.Note
	for _, p := range paths {
		n, err := v.GetNote(p)
		if err != nil {
			// Dangling wikilinks are normal in a vault; skip them.
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func excluded(path string, excludeFolders []string) bool {
	for _, f := range excludeFolders {
		if f == "" {
			continue
		}
		prefix := strings.TrimSuffix(f, "/") + "/"
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
