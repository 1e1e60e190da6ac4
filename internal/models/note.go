// Package models defines the domain types for Raido.
package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Note represents a parsed Markdown file in the vault. The vault-relative
// path doubles as the note identifier everywhere in the system.
type Note struct {
	Path        string                 `json:"path"`
	Basename    string                 `json:"basename"`
	Title       string                 `json:"title,omitempty"`
	Content     string                 `json:"content,omitempty"`
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Links       []string               `json:"links,omitempty"`
	Backlinks   []string               `json:"backlinks,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Checksum    string                 `json:"checksum"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// DisplayTitle returns the note title, falling back to the basename without
// its extension when no title was derived from the content.
func (n *Note) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	return strings.TrimSuffix(n.Basename, filepath.Ext(n.Basename))
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
