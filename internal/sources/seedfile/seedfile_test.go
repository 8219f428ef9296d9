package seedfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ysohn/markdrive/internal/logger"
	"github.com/ysohn/markdrive/internal/store"
)

const sampleSeed = `
folders:
  - name: Dev
    color: "#00add8"
  - name: Go
    parent: Dev
    icon: gopher
tags:
  - name: reference
    color: "#888888"
bookmarks:
  - title: Go homepage
    url: https://go.dev
    folder: Go
    tags: [reference, golang]
  - title: Root level
    url: https://example.com
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}

func TestLoaderParsesSeed(t *testing.T) {
	cfg, err := NewLoader(writeSeed(t, sampleSeed)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Folders) != 2 || len(cfg.Tags) != 1 || len(cfg.Bookmarks) != 2 {
		t.Fatalf("parsed %d folders, %d tags, %d bookmarks", len(cfg.Folders), len(cfg.Tags), len(cfg.Bookmarks))
	}
	if cfg.Folders[1].Parent != "Dev" {
		t.Errorf("Folders[1].Parent = %q, want Dev", cfg.Folders[1].Parent)
	}
}

func TestLoaderErrors(t *testing.T) {
	if _, err := NewLoader("/nonexistent/seed.yaml").Load(); err == nil {
		t.Error("Load() on a missing file should fail")
	}
	if _, err := NewLoader(writeSeed(t, "folders: [not: {valid")).Load(); err == nil {
		t.Error("Load() on malformed yaml should fail")
	}
}

func TestApplyBuildsEntities(t *testing.T) {
	log := logger.New("error", false)
	s := store.New(log)

	cfg, err := NewLoader(writeSeed(t, sampleSeed)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := Apply(cfg, s, log); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	bookmarks, folders, tags := s.Counts()
	if bookmarks != 2 || folders != 2 {
		t.Fatalf("Counts() = %d bookmarks, %d folders", bookmarks, folders)
	}
	// "reference" declared plus "golang" created implicitly via a bookmark.
	if tags != 2 {
		t.Fatalf("tags = %d, want 2", tags)
	}

	// The child folder got wired to its named parent.
	var devID, goParent string
	for _, f := range s.ListFolders() {
		switch f.Name {
		case "Dev":
			devID = f.ID
		case "Go":
			goParent = f.ParentID
		}
	}
	if devID == "" || goParent != devID {
		t.Errorf("folder Go has parent %q, want the Dev folder %q", goParent, devID)
	}

	// The bookmark landed inside its named folder.
	doc, _ := s.Snapshot()
	for _, b := range doc.Bookmarks {
		if b.Title == "Go homepage" && b.FolderID == "" {
			t.Error("seed bookmark lost its folder assignment")
		}
		if b.Title == "Root level" && b.FolderID != "" {
			t.Error("folderless seed bookmark was assigned a folder")
		}
	}
}

func TestApplyUnknownParentLandsAtTop(t *testing.T) {
	log := logger.New("error", false)
	s := store.New(log)

	cfg := &SeedConfig{
		Folders: []SeedFolder{{Name: "Orphan", Parent: "Missing"}},
	}
	if err := Apply(cfg, s, log); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	list := s.ListFolders()
	if len(list) != 1 || list[0].ParentID != "" {
		t.Errorf("orphan folder = %+v, want top level", list[0])
	}
}
