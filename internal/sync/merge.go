package sync

import (
	"time"

	"github.com/ysohn/markdrive/internal/domain"
)

// TieBreak selects what happens on an ambiguous conflict: identical
// modification timestamps with differing content.
type TieBreak int

const (
	// TieBreakRemote resolves ambiguous ties by preferring the remote
	// version. This is the declared default policy.
	TieBreakRemote TieBreak = iota
	// TieBreakError surfaces a SyncConflictError instead of resolving.
	TieBreakError
)

// merge reconciles the local and remote documents with per-entity
// last-write-wins on the modification timestamp.
//
// The watermark is the time of the last successful sync and resolves
// one-sided presence: an entity present on only one side is kept when it
// was modified after the watermark (a fresh addition) and dropped
// otherwise (the other side deleted it after having seen it). With a zero
// watermark (first sync) the result is a plain union.
func merge(local, remote *domain.Document, watermark time.Time, tb TieBreak) (*domain.Document, error) {
	out := domain.NewDocument()

	bookmarks, err := mergeEntities(local.Bookmarks, remote.Bookmarks, "bookmark", watermark, tb,
		func(b *domain.Bookmark) string { return b.ID },
		func(b *domain.Bookmark) time.Time { return b.UpdatedAt },
		(*domain.Bookmark).ContentEqual,
	)
	if err != nil {
		return nil, err
	}
	folders, err := mergeEntities(local.Folders, remote.Folders, "folder", watermark, tb,
		func(f *domain.Folder) string { return f.ID },
		func(f *domain.Folder) time.Time { return f.UpdatedAt },
		(*domain.Folder).ContentEqual,
	)
	if err != nil {
		return nil, err
	}
	// Tags are keyed by name, not id: bookmarks reference tags by name and
	// both replicas create the Tag entity implicitly, so the same name can
	// carry a different id on each side. Keying by id would merge those
	// into a duplicate-name document that no store accepts.
	tags, err := mergeEntities(local.Tags, remote.Tags, "tag", watermark, tb,
		func(t *domain.Tag) string { return t.Name },
		func(t *domain.Tag) time.Time { return t.UpdatedAt },
		(*domain.Tag).ContentEqual,
	)
	if err != nil {
		return nil, err
	}

	out.Bookmarks = bookmarks
	out.Folders = folders
	out.Tags = tags
	if remote.LastModified.After(local.LastModified) {
		out.LastModified = remote.LastModified
	} else {
		out.LastModified = local.LastModified
	}
	return out, nil
}

// mergeEntities merges one entity collection keyed by the given identity
// (id for bookmarks and folders, the unique name for tags). Local ordering
// is preserved for entities kept from the local side; remote-only entities
// follow.
func mergeEntities[T any](
	local, remote []*T,
	kind string,
	watermark time.Time,
	tb TieBreak,
	key func(*T) string,
	updated func(*T) time.Time,
	equal func(a, b *T) bool,
) ([]*T, error) {
	remoteByKey := make(map[string]*T, len(remote))
	for _, r := range remote {
		remoteByKey[key(r)] = r
	}
	localKeys := make(map[string]bool, len(local))

	out := make([]*T, 0, len(local)+len(remote))
	for _, l := range local {
		localKeys[key(l)] = true
		r, ok := remoteByKey[key(l)]
		if !ok {
			// Local only: fresh addition wins, stale entry was
			// deleted remotely.
			if updated(l).After(watermark) {
				out = append(out, l)
			}
			continue
		}
		lt, rt := updated(l), updated(r)
		switch {
		case lt.After(rt):
			out = append(out, l)
		case rt.After(lt):
			out = append(out, r)
		case equal(l, r):
			out = append(out, l)
		case tb == TieBreakRemote:
			out = append(out, r)
		default:
			return nil, &domain.SyncConflictError{Kind: kind, ID: key(l)}
		}
	}
	for _, r := range remote {
		if localKeys[key(r)] {
			continue
		}
		// Remote only: same rule, mirrored.
		if updated(r).After(watermark) {
			out = append(out, r)
		}
	}
	return out, nil
}
