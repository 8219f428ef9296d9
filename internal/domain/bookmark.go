package domain

import (
	"strings"
	"time"
)

// Bookmark represents a saved URL with its metadata.
//
// It is NOT tied to the API wire format, Redis or any external source.
// All inputs (API, seed file, remote document) are merged into this structure.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, assigned on creation.
	ID string `json:"id"`

	// ─────────────────────────────
	// Required content
	// ─────────────────────────────

	// URL is the full external URL. Always non-empty.
	URL string `json:"url"`

	// Title is the display title. Always non-empty.
	Title string `json:"title"`

	// ─────────────────────────────
	// Optional content
	// ─────────────────────────────

	// Description is free text shown in listings and matched by search.
	Description string `json:"description,omitempty"`

	// Favicon is a reference (URL) to the site icon.
	Favicon string `json:"favicon,omitempty"`

	// FolderID references the containing Folder.
	// Empty means the bookmark lives at the implicit root.
	FolderID string `json:"folderId,omitempty"`

	// Tags holds tag names. Duplicates are never stored; every name
	// corresponds to exactly one Tag entity.
	Tags []string `json:"tags"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is updated on any mutation. It drives last-write-wins
	// conflict resolution during sync.
	UpdatedAt time.Time `json:"updatedAt"`

	// ─────────────────────────────
	// Usage (advisory, never required for correctness)
	// ─────────────────────────────

	// VisitCount is the number of recorded visits.
	VisitCount int64 `json:"visitCount"`

	// LastVisitedAt is the last recorded visit, nil if never visited.
	LastVisitedAt *time.Time `json:"lastVisitedAt,omitempty"`
}

// Clone returns a deep copy of the bookmark.
func (b *Bookmark) Clone() *Bookmark {
	c := *b
	c.Tags = append([]string(nil), b.Tags...)
	if b.LastVisitedAt != nil {
		t := *b.LastVisitedAt
		c.LastVisitedAt = &t
	}
	return &c
}

// ContentEqual reports whether two bookmarks carry the same content,
// ignoring usage metadata and timestamps. Used to detect ambiguous
// sync ties (equal UpdatedAt, different content).
func (b *Bookmark) ContentEqual(o *Bookmark) bool {
	if b.URL != o.URL || b.Title != o.Title || b.Description != o.Description ||
		b.Favicon != o.Favicon || b.FolderID != o.FolderID {
		return false
	}
	if len(b.Tags) != len(o.Tags) {
		return false
	}
	for i := range b.Tags {
		if b.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}

// NormalizeTags trims, drops empties and removes duplicates while
// preserving first-occurrence order.
func NormalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
