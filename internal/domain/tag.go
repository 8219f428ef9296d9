package domain

import "time"

// Tag labels bookmarks. The name is the effective business key: bookmarks
// reference tags by name, and names are unique case-sensitively.
type Tag struct {
	// ID is the canonical unique identifier, assigned on creation.
	ID string `json:"id"`

	// Name is the unique tag name. Always non-empty.
	Name string `json:"name"`

	// Color is a display attribute.
	Color string `json:"color,omitempty"`

	// UsageCount is the number of bookmarks carrying this tag.
	// Derived, never authoritative: recomputed from the bookmark set
	// whenever a document is built.
	UsageCount int `json:"usageCount"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is updated on any mutation. It drives last-write-wins
	// conflict resolution during sync.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy of the tag.
func (t *Tag) Clone() *Tag {
	c := *t
	return &c
}

// ContentEqual reports whether two tags carry the same content, ignoring
// timestamps and the derived usage count.
func (t *Tag) ContentEqual(o *Tag) bool {
	return t.Name == o.Name && t.Color == o.Color
}
