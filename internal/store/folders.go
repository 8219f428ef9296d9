package store

import (
	"strings"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/lock"
	"github.com/ysohn/markdrive/internal/logger"
)

// FolderInput carries the caller-settable fields of a folder.
// Lock state is not part of it: locking goes through LockFolder only.
type FolderInput struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	// SortOrder nil assigns the next free position on create and keeps
	// the current position on update. Any explicit value, including 0,
	// is stored as given.
	SortOrder *int `json:"order"`
}

func (in *FolderInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// CreateFolder validates the input and stores a new folder. An omitted
// sort order is assigned the next free position.
func (s *Store) CreateFolder(in FolderInput) (*domain.Folder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ParentID != "" && s.folders[in.ParentID] == nil {
		return nil, &domain.ValidationError{Field: "parentId", Reason: "references unknown folder " + in.ParentID}
	}

	now := s.now()
	f := &domain.Folder{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		ParentID:  in.ParentID,
		Color:     in.Color,
		Icon:      in.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.SortOrder != nil {
		f.SortOrder = *in.SortOrder
	} else {
		f.SortOrder = len(s.folders) + 1
	}
	s.folders[f.ID] = f
	s.touch()

	s.log.Info("folder created",
		logger.String("id", f.ID),
		logger.String("name", f.Name))
	return f.Clone(), nil
}

// UpdateFolder replaces the content of an existing folder. A parent update
// is rejected with CycleError if it would make the folder its own ancestor.
// Lock state carries over untouched.
func (s *Store) UpdateFolder(id string, in FolderInput) (*domain.Folder, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "folder", ID: id}
	}
	if in.ParentID != "" {
		if s.folders[in.ParentID] == nil {
			return nil, &domain.ValidationError{Field: "parentId", Reason: "references unknown folder " + in.ParentID}
		}
		if s.wouldCycleLocked(id, in.ParentID) {
			return nil, &domain.CycleError{FolderID: id, ParentID: in.ParentID}
		}
	}

	f.Name = strings.TrimSpace(in.Name)
	f.ParentID = in.ParentID
	f.Color = in.Color
	f.Icon = in.Icon
	if in.SortOrder != nil {
		f.SortOrder = *in.SortOrder
	}
	f.UpdatedAt = s.now()
	s.touch()

	s.log.Info("folder updated", logger.String("id", id))
	return f.Clone(), nil
}

// wouldCycleLocked reports whether setting parentID as the parent of
// folderID would make folderID its own ancestor. Walks the parent chain
// from parentID upward; visiting folderID means a cycle.
// Callers must hold s.mu.
func (s *Store) wouldCycleLocked(folderID, parentID string) bool {
	for cur := parentID; cur != ""; {
		if cur == folderID {
			return true
		}
		p, ok := s.folders[cur]
		if !ok {
			return false
		}
		cur = p.ParentID
	}
	return false
}

// DeleteFolder reassigns every bookmark referencing the folder to "no
// folder", reparents child folders to the deleted folder's parent, then
// removes the folder. The whole sequence runs under the mutation lock so
// no reader ever observes a bookmark pointing at a deleted folder.
// Bookmarks are never deleted as a side effect.
func (s *Store) DeleteFolder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return &domain.NotFoundError{Kind: "folder", ID: id}
	}

	now := s.now()
	reassigned := 0
	for _, b := range s.bookmarks {
		if b.FolderID == id {
			b.FolderID = ""
			b.UpdatedAt = now
			reassigned++
		}
	}
	for _, child := range s.folders {
		if child.ParentID == id {
			child.ParentID = f.ParentID
			child.UpdatedAt = now
		}
	}
	delete(s.folders, id)
	s.touch()

	s.log.Info("folder deleted",
		logger.String("id", id),
		logger.Int("bookmarks_reassigned", reassigned))
	return nil
}

// GetFolder returns a copy of the folder with the given id.
func (s *Store) GetFolder(id string) (*domain.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "folder", ID: id}
	}
	return f.Clone(), nil
}

// ListFolders returns all folders ordered by sort order, then name.
func (s *Store) ListFolders() []*domain.Folder {
	doc, _ := s.Snapshot()
	return doc.Folders
}

// LockFolder sets the lock flag and stores the bcrypt hash of the
// password. The raw password is never written anywhere.
func (s *Store) LockFolder(id, password string) error {
	if password == "" {
		return &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	hash, err := lock.HashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return &domain.NotFoundError{Kind: "folder", ID: id}
	}
	f.Locked = true
	f.PasswordHash = hash
	f.UpdatedAt = s.now()
	s.touch()

	s.log.Info("folder locked", logger.String("id", id))
	return nil
}

// UnlockCheck compares the supplied password against the stored hash.
// A mismatch returns false, never an error; only a missing folder fails.
// An unlocked folder always passes.
func (s *Store) UnlockCheck(id, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.folders[id]
	if !ok {
		return false, &domain.NotFoundError{Kind: "folder", ID: id}
	}
	if !f.Locked {
		return true, nil
	}
	return lock.VerifyPassword(f.PasswordHash, password), nil
}
