// Package query derives read-only views over the entity store: folder and
// tag listings, free-text search and fuzzy suggestions. Every operation
// works on a consistent snapshot and applies the folder lock policy:
// locking affects visibility, not just mutation.
package query

import (
	"strings"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/lock"
	"github.com/ysohn/markdrive/internal/store"
)

// Engine resolves list/search requests against store snapshots.
type Engine struct {
	store    *store.Store
	sessions *lock.Keeper
}

// New creates a query engine over the given store and unlock sessions.
func New(s *store.Store, sessions *lock.Keeper) *Engine {
	return &Engine{store: s, sessions: sessions}
}

// hiddenFolders returns the ids of folders whose contents the session may
// not see: every folder that is locked and unverified, plus all of its
// descendants.
func hiddenFolders(doc *domain.Document, sessions *lock.Keeper, sessionID string) map[string]bool {
	byID := make(map[string]*domain.Folder, len(doc.Folders))
	for _, f := range doc.Folders {
		byID[f.ID] = f
	}

	hidden := make(map[string]bool)
	for _, f := range doc.Folders {
		// Walk the chain up. A folder is hidden if it or any ancestor
		// is locked and not verified in this session. The walk is
		// bounded by the folder count: documents are validated to be
		// acyclic, but a corrupt chain must not hang every read.
		steps := 0
		for cur := f; cur != nil && steps <= len(byID); cur, steps = byID[cur.ParentID], steps+1 {
			if cur.Locked && !sessions.Verified(sessionID, cur.ID) {
				hidden[f.ID] = true
				break
			}
			if cur.ParentID == "" {
				break
			}
		}
	}
	return hidden
}

// visible filters the document's bookmarks down to what the session may see.
func (e *Engine) visible(sessionID string) ([]*domain.Bookmark, *domain.Document) {
	doc, _ := e.store.Snapshot()
	hidden := hiddenFolders(doc, e.sessions, sessionID)
	if len(hidden) == 0 {
		return doc.Bookmarks, doc
	}
	out := make([]*domain.Bookmark, 0, len(doc.Bookmarks))
	for _, b := range doc.Bookmarks {
		if b.FolderID != "" && hidden[b.FolderID] {
			continue
		}
		out = append(out, b)
	}
	return out, doc
}

// ListAll returns all bookmarks except those inside locked folders the
// session has not unlocked.
func (e *Engine) ListAll(sessionID string) []*domain.Bookmark {
	bookmarks, _ := e.visible(sessionID)
	return bookmarks
}

// ListByFolder returns the bookmarks directly inside a folder. An unknown
// folder fails with NotFoundError; a locked folder the session has not
// verified fails with AccessDeniedError.
func (e *Engine) ListByFolder(sessionID, folderID string) ([]*domain.Bookmark, error) {
	doc, _ := e.store.Snapshot()

	var folder *domain.Folder
	for _, f := range doc.Folders {
		if f.ID == folderID {
			folder = f
			break
		}
	}
	if folder == nil {
		return nil, &domain.NotFoundError{Kind: "folder", ID: folderID}
	}
	if hiddenFolders(doc, e.sessions, sessionID)[folderID] {
		return nil, &domain.AccessDeniedError{FolderID: folderID}
	}

	out := make([]*domain.Bookmark, 0)
	for _, b := range doc.Bookmarks {
		if b.FolderID == folderID {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListByTag returns the visible bookmarks carrying the exact tag name.
// Matching is case-sensitive.
func (e *Engine) ListByTag(sessionID, tagName string) []*domain.Bookmark {
	bookmarks, _ := e.visible(sessionID)
	out := make([]*domain.Bookmark, 0)
	for _, b := range bookmarks {
		for _, name := range b.Tags {
			if name == tagName {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// Search returns the visible bookmarks where the query is a
// case-insensitive substring of the title, description, url or any tag
// name. An empty query returns the full unlocked set.
func (e *Engine) Search(sessionID, query string) []*domain.Bookmark {
	bookmarks, _ := e.visible(sessionID)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return bookmarks
	}

	out := make([]*domain.Bookmark, 0)
	for _, b := range bookmarks {
		if matches(b, query) {
			out = append(out, b)
		}
	}
	return out
}

func matches(b *domain.Bookmark, query string) bool {
	if strings.Contains(strings.ToLower(b.Title), query) ||
		strings.Contains(strings.ToLower(b.Description), query) ||
		strings.Contains(strings.ToLower(b.URL), query) {
		return true
	}
	for _, name := range b.Tags {
		if strings.Contains(strings.ToLower(name), query) {
			return true
		}
	}
	return false
}
