package store

import (
	"strings"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/logger"
)

// BookmarkInput carries the caller-settable fields of a bookmark.
type BookmarkInput struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Favicon     string   `json:"favicon"`
	FolderID    string   `json:"folderId"`
	Tags        []string `json:"tags"`
}

func (in *BookmarkInput) validate() error {
	if strings.TrimSpace(in.URL) == "" {
		return &domain.ValidationError{Field: "url", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Title) == "" {
		return &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// CreateBookmark validates the input, assigns an id and timestamps, and
// stores the bookmark. Tag names without a Tag entity are created
// implicitly so the two representations never drift.
func (s *Store) CreateBookmark(in BookmarkInput) (*domain.Bookmark, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.FolderID != "" && s.folders[in.FolderID] == nil {
		return nil, &domain.ValidationError{Field: "folderId", Reason: "references unknown folder " + in.FolderID}
	}

	now := s.now()
	b := &domain.Bookmark{
		ID:          newID(),
		URL:         strings.TrimSpace(in.URL),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Favicon:     in.Favicon,
		FolderID:    in.FolderID,
		Tags:        domain.NormalizeTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, name := range b.Tags {
		s.ensureTagLocked(name)
	}
	s.bookmarks[b.ID] = b
	s.touch()

	s.log.Info("bookmark created",
		logger.String("id", b.ID),
		logger.String("url", b.URL))
	return b.Clone(), nil
}

// UpdateBookmark replaces the content of an existing bookmark. Identity,
// creation timestamp and usage metadata are preserved.
func (s *Store) UpdateBookmark(id string, in BookmarkInput) (*domain.Bookmark, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "bookmark", ID: id}
	}
	if in.FolderID != "" && s.folders[in.FolderID] == nil {
		return nil, &domain.ValidationError{Field: "folderId", Reason: "references unknown folder " + in.FolderID}
	}

	b.URL = strings.TrimSpace(in.URL)
	b.Title = strings.TrimSpace(in.Title)
	b.Description = in.Description
	b.Favicon = in.Favicon
	b.FolderID = in.FolderID
	b.Tags = domain.NormalizeTags(in.Tags)
	b.UpdatedAt = s.now()
	for _, name := range b.Tags {
		s.ensureTagLocked(name)
	}
	s.touch()

	s.log.Info("bookmark updated", logger.String("id", id))
	return b.Clone(), nil
}

// DeleteBookmark removes a bookmark. Deleting an unknown id fails with
// NotFoundError; the operation is not a silent no-op.
func (s *Store) DeleteBookmark(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookmarks[id]; !ok {
		return &domain.NotFoundError{Kind: "bookmark", ID: id}
	}
	delete(s.bookmarks, id)
	s.touch()

	s.log.Info("bookmark deleted", logger.String("id", id))
	return nil
}

// GetBookmark returns a copy of the bookmark with the given id.
func (s *Store) GetBookmark(id string) (*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "bookmark", ID: id}
	}
	return b.Clone(), nil
}

// RecordVisit bumps the advisory usage metadata of a bookmark.
func (s *Store) RecordVisit(id string) (*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookmarks[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "bookmark", ID: id}
	}
	now := s.now()
	b.VisitCount++
	b.LastVisitedAt = &now
	b.UpdatedAt = now
	s.touch()
	return b.Clone(), nil
}
