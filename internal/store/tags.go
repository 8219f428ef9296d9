package store

import (
	"strings"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/logger"
)

// TagInput carries the caller-settable fields of a tag.
type TagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CreateTag stores a new tag. Names are unique case-sensitively; a
// duplicate fails with ConflictError.
func (s *Store) CreateTag(in TagInput) (*domain.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tagIDsByName[name]; ok {
		return nil, &domain.ConflictError{Kind: "tag", Name: name}
	}

	now := s.now()
	t := &domain.Tag{
		ID:        newID(),
		Name:      name,
		Color:     in.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tags[t.ID] = t
	s.tagIDsByName[name] = t.ID
	s.touch()

	s.log.Info("tag created",
		logger.String("id", t.ID),
		logger.String("name", name))
	return t.Clone(), nil
}

// DeleteTag removes the tag and strips its name from every bookmark's tag
// set. Both steps happen under the mutation lock; a reader never sees a
// bookmark carrying a tag name without a Tag entity.
func (s *Store) DeleteTag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tags[id]
	if !ok {
		return &domain.NotFoundError{Kind: "tag", ID: id}
	}

	now := s.now()
	stripped := 0
	for _, b := range s.bookmarks {
		kept := b.Tags[:0]
		removed := false
		for _, name := range b.Tags {
			if name == t.Name {
				removed = true
				continue
			}
			kept = append(kept, name)
		}
		if removed {
			b.Tags = kept
			b.UpdatedAt = now
			stripped++
		}
	}
	delete(s.tags, id)
	delete(s.tagIDsByName, t.Name)
	s.touch()

	s.log.Info("tag deleted",
		logger.String("id", id),
		logger.String("name", t.Name),
		logger.Int("bookmarks_stripped", stripped))
	return nil
}

// GetTag returns a copy of the tag with the given id, with its usage count
// recomputed.
func (s *Store) GetTag(id string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tags[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "tag", ID: id}
	}
	c := t.Clone()
	for _, b := range s.bookmarks {
		for _, name := range b.Tags {
			if name == t.Name {
				c.UsageCount++
				break
			}
		}
	}
	return c, nil
}

// ListTags returns all tags ordered by name with recomputed usage counts.
func (s *Store) ListTags() []*domain.Tag {
	doc, _ := s.Snapshot()
	return doc.Tags
}
