package seedfile

import (
	"fmt"

	"github.com/ysohn/markdrive/internal/logger"
	"github.com/ysohn/markdrive/internal/store"
)

// seedOrder maps the file's order field onto the store input: 0 means the
// file did not set one and the store assigns a position.
func seedOrder(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

// Apply creates the seed entities through the store's regular operations
// so all invariants (validation, implicit tags, cycle checks) hold.
// Folders are referenced by name inside the file; entries referencing an
// unknown folder land at the root.
func Apply(cfg *SeedConfig, s *store.Store, log logger.Logger) error {
	folderIDs := make(map[string]string, len(cfg.Folders))

	// Two passes so a child can name a parent defined later in the file.
	for _, sf := range cfg.Folders {
		f, err := s.CreateFolder(store.FolderInput{
			Name:      sf.Name,
			Color:     sf.Color,
			Icon:      sf.Icon,
			SortOrder: seedOrder(sf.Order),
		})
		if err != nil {
			return fmt.Errorf("seed folder %q: %w", sf.Name, err)
		}
		folderIDs[sf.Name] = f.ID
	}
	for _, sf := range cfg.Folders {
		if sf.Parent == "" {
			continue
		}
		parentID, ok := folderIDs[sf.Parent]
		if !ok {
			log.Warn("seed folder references unknown parent",
				logger.String("folder", sf.Name),
				logger.String("parent", sf.Parent))
			continue
		}
		if _, err := s.UpdateFolder(folderIDs[sf.Name], store.FolderInput{
			Name:      sf.Name,
			ParentID:  parentID,
			Color:     sf.Color,
			Icon:      sf.Icon,
			SortOrder: seedOrder(sf.Order),
		}); err != nil {
			return fmt.Errorf("seed folder %q: %w", sf.Name, err)
		}
	}

	for _, st := range cfg.Tags {
		if _, err := s.CreateTag(store.TagInput{Name: st.Name, Color: st.Color}); err != nil {
			return fmt.Errorf("seed tag %q: %w", st.Name, err)
		}
	}

	for _, sb := range cfg.Bookmarks {
		if _, err := s.CreateBookmark(store.BookmarkInput{
			URL:         sb.URL,
			Title:       sb.Title,
			Description: sb.Description,
			FolderID:    folderIDs[sb.Folder],
			Tags:        sb.Tags,
		}); err != nil {
			return fmt.Errorf("seed bookmark %q: %w", sb.Title, err)
		}
	}

	log.Info("seed file applied",
		logger.Int("folders", len(cfg.Folders)),
		logger.Int("tags", len(cfg.Tags)),
		logger.Int("bookmarks", len(cfg.Bookmarks)))
	return nil
}
