// Package store holds the authoritative in-memory entity state: bookmarks,
// folders and tags. Every mutating operation is serialized behind a single
// mutex so that multi-step invariants (folder deletion's reassign-then-remove,
// tag deletion's strip-then-remove) are never observed half-applied. Reads
// are served from deep-copied snapshots and never block behind network I/O.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/logger"
)

// ErrConcurrentMutation is returned by CommitMerged when local state moved
// on while a sync was in flight. The caller re-snapshots and re-merges.
var ErrConcurrentMutation = errors.New("store: state changed since snapshot")

// Store is the single source of truth for the entity set.
type Store struct {
	mu  sync.Mutex
	log logger.Logger
	now func() time.Time

	rev          uint64
	lastModified time.Time
	bookmarks    map[string]*domain.Bookmark
	folders      map[string]*domain.Folder
	tags         map[string]*domain.Tag // by id
	tagIDsByName map[string]string      // name -> id
}

// New creates an empty store.
func New(log logger.Logger) *Store {
	return &Store{
		log:          log,
		now:          time.Now,
		bookmarks:    make(map[string]*domain.Bookmark),
		folders:      make(map[string]*domain.Folder),
		tags:         make(map[string]*domain.Tag),
		tagIDsByName: make(map[string]string),
	}
}

// touch records a mutation: bumps the revision and the document timestamp.
// Callers must hold s.mu.
func (s *Store) touch() {
	s.rev++
	s.lastModified = s.now()
}

// Snapshot returns a deep copy of the full entity set as a persistable
// document, along with the revision it was taken at. Tag usage counts are
// recomputed from the bookmark set, never read from stored state.
func (s *Store) Snapshot() (*domain.Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked(), s.rev
}

func (s *Store) documentLocked() *domain.Document {
	doc := domain.NewDocument()
	doc.LastModified = s.lastModified

	usage := make(map[string]int, len(s.tags))
	for _, b := range s.bookmarks {
		doc.Bookmarks = append(doc.Bookmarks, b.Clone())
		for _, name := range b.Tags {
			usage[name]++
		}
	}
	for _, f := range s.folders {
		doc.Folders = append(doc.Folders, f.Clone())
	}
	for _, t := range s.tags {
		c := t.Clone()
		c.UsageCount = usage[t.Name]
		doc.Tags = append(doc.Tags, c)
	}

	sort.Slice(doc.Bookmarks, func(i, j int) bool {
		a, b := doc.Bookmarks[i], doc.Bookmarks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	sort.Slice(doc.Folders, func(i, j int) bool {
		a, b := doc.Folders[i], doc.Folders[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
	sort.Slice(doc.Tags, func(i, j int) bool {
		return doc.Tags[i].Name < doc.Tags[j].Name
	})
	return doc
}

// Replace swaps the full entity set for the document's contents.
// All-or-nothing: the document is validated and normalized first, and live
// state is untouched on any error. Used by restore and by the startup
// bootstrap from the remote store.
func (s *Store) Replace(doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(doc)
}

// CommitMerged applies a merged sync result, but only if no local mutation
// happened since the snapshot at baseRev was taken. Otherwise it fails with
// ErrConcurrentMutation and leaves state untouched.
func (s *Store) CommitMerged(doc *domain.Document, baseRev uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rev != baseRev {
		return ErrConcurrentMutation
	}
	return s.replaceLocked(doc)
}

func (s *Store) replaceLocked(doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	bookmarks := make(map[string]*domain.Bookmark, len(doc.Bookmarks))
	folders := make(map[string]*domain.Folder, len(doc.Folders))
	tags := make(map[string]*domain.Tag, len(doc.Tags))
	tagIDsByName := make(map[string]string, len(doc.Tags))

	for _, f := range doc.Folders {
		folders[f.ID] = f.Clone()
	}
	// A folder whose parent was deleted on the other side moves to the
	// top level, like a bookmark with a dangling folder reference.
	for _, f := range folders {
		if f.ParentID != "" && folders[f.ParentID] == nil {
			f.ParentID = ""
		}
	}
	for _, t := range doc.Tags {
		c := t.Clone()
		tags[c.ID] = c
		tagIDsByName[c.Name] = c.ID
	}
	now := s.now()
	for _, b := range doc.Bookmarks {
		c := b.Clone()
		// A dangling folder reference is coerced to "no folder".
		if c.FolderID != "" && folders[c.FolderID] == nil {
			c.FolderID = ""
		}
		c.Tags = domain.NormalizeTags(c.Tags)
		// Every tag name on a bookmark must have a Tag entity.
		for _, name := range c.Tags {
			if _, ok := tagIDsByName[name]; !ok {
				t := &domain.Tag{
					ID:        newID(),
					Name:      name,
					CreatedAt: now,
					UpdatedAt: now,
				}
				tags[t.ID] = t
				tagIDsByName[name] = t.ID
			}
		}
		bookmarks[c.ID] = c
	}

	s.bookmarks = bookmarks
	s.folders = folders
	s.tags = tags
	s.tagIDsByName = tagIDsByName
	if !doc.LastModified.IsZero() {
		s.lastModified = doc.LastModified
	}
	s.rev++
	return nil
}

// Empty reports whether the store holds no entities at all.
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookmarks) == 0 && len(s.folders) == 0 && len(s.tags) == 0
}

// Counts returns the entity counts, for diagnostics.
func (s *Store) Counts() (bookmarks, folders, tags int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookmarks), len(s.folders), len(s.tags)
}

// LastModified returns the document-level modification timestamp.
func (s *Store) LastModified() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastModified
}

// ensureTagLocked creates the Tag entity for a name attached to a bookmark
// when no such entity exists yet (implicit tag creation).
// Callers must hold s.mu.
func (s *Store) ensureTagLocked(name string) {
	if _, ok := s.tagIDsByName[name]; ok {
		return
	}
	now := s.now()
	t := &domain.Tag{
		ID:        newID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tags[t.ID] = t
	s.tagIDsByName[name] = t.ID
}
