package domain

import (
	"fmt"
	"time"
)

// DocumentVersion is the version tag written into every persisted document.
const DocumentVersion = "1.0"

// Document is the self-contained persisted snapshot of the full entity set.
// It is the unit exchanged with the remote store and written by backups.
type Document struct {
	Version      string      `json:"version"`
	LastModified time.Time   `json:"lastModified"`
	Bookmarks    []*Bookmark `json:"bookmarks"`
	Folders      []*Folder   `json:"folders"`
	Tags         []*Tag      `json:"tags"`
}

// NewDocument returns an empty document with the current version tag.
func NewDocument() *Document {
	return &Document{
		Version:   DocumentVersion,
		Bookmarks: []*Bookmark{},
		Folders:   []*Folder{},
		Tags:      []*Tag{},
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		Version:      d.Version,
		LastModified: d.LastModified,
		Bookmarks:    make([]*Bookmark, len(d.Bookmarks)),
		Folders:      make([]*Folder, len(d.Folders)),
		Tags:         make([]*Tag, len(d.Tags)),
	}
	for i, b := range d.Bookmarks {
		c.Bookmarks[i] = b.Clone()
	}
	for i, f := range d.Folders {
		c.Folders[i] = f.Clone()
	}
	for i, t := range d.Tags {
		c.Tags[i] = t.Clone()
	}
	return c
}

// Validate checks that the document is structurally sound: a version tag is
// present, every entity has an id, required fields are non-empty, ids are
// unique per collection and the folder tree is acyclic. Used before a
// restore or sync result fully replaces live state.
func (d *Document) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("document has no version tag")
	}
	seen := make(map[string]bool, len(d.Bookmarks))
	for _, b := range d.Bookmarks {
		if b.ID == "" || b.URL == "" || b.Title == "" {
			return fmt.Errorf("bookmark %q is missing required fields", b.ID)
		}
		if seen[b.ID] {
			return fmt.Errorf("duplicate bookmark id %q", b.ID)
		}
		seen[b.ID] = true
	}
	parents := make(map[string]string, len(d.Folders))
	for _, f := range d.Folders {
		if f.ID == "" || f.Name == "" {
			return fmt.Errorf("folder %q is missing required fields", f.ID)
		}
		if _, dup := parents[f.ID]; dup {
			return fmt.Errorf("duplicate folder id %q", f.ID)
		}
		parents[f.ID] = f.ParentID
	}
	// The folder tree must be acyclic: documents arrive from outside the
	// store's own cycle checks (remote sync, restored snapshots) and a
	// parent cycle would trap every tree walk. Walks are bounded so a
	// cycle not passing through the starting folder still terminates.
	for id := range parents {
		cur := parents[id]
		for steps := 0; cur != ""; steps++ {
			if cur == id || steps >= len(parents) {
				return fmt.Errorf("folder %q is its own ancestor", id)
			}
			cur = parents[cur]
		}
	}
	seen = make(map[string]bool, len(d.Tags))
	names := make(map[string]bool, len(d.Tags))
	for _, t := range d.Tags {
		if t.ID == "" || t.Name == "" {
			return fmt.Errorf("tag %q is missing required fields", t.ID)
		}
		if seen[t.ID] || names[t.Name] {
			return fmt.Errorf("duplicate tag %q", t.Name)
		}
		seen[t.ID] = true
		names[t.Name] = true
	}
	return nil
}

// SnapshotInfo is the metadata describing one backup snapshot.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Bookmarks int       `json:"bookmarks"`
	Folders   int       `json:"folders"`
	Tags      int       `json:"tags"`
}
