package domain

import "time"

// Folder groups bookmarks. Folders form a tree through ParentID; the tree
// is kept acyclic by the store on every parent update.
type Folder struct {
	// ID is the canonical unique identifier, assigned on creation.
	ID string `json:"id"`

	// Name is the display name. Always non-empty.
	Name string `json:"name"`

	// ParentID references the parent folder, empty for top level.
	ParentID string `json:"parentId,omitempty"`

	// Locked gates the folder's contents behind a password check.
	Locked bool `json:"locked"`

	// PasswordHash is the bcrypt hash of the folder password.
	// Present only while Locked is set. The raw password is never stored.
	PasswordHash string `json:"passwordHash,omitempty"`

	// Display attributes.
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`

	// SortOrder is the explicit position in folder listings.
	SortOrder int `json:"order"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is updated on any mutation. It drives last-write-wins
	// conflict resolution during sync.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy of the folder.
func (f *Folder) Clone() *Folder {
	c := *f
	return &c
}

// Sanitized returns a copy safe to put on the wire: the password hash is
// stripped so it is never transmitted outside the persisted document.
func (f *Folder) Sanitized() *Folder {
	c := *f
	c.PasswordHash = ""
	return &c
}

// ContentEqual reports whether two folders carry the same content,
// ignoring timestamps.
func (f *Folder) ContentEqual(o *Folder) bool {
	return f.Name == o.Name && f.ParentID == o.ParentID &&
		f.Locked == o.Locked && f.PasswordHash == o.PasswordHash &&
		f.Color == o.Color && f.Icon == o.Icon && f.SortOrder == o.SortOrder
}
