package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/logger"
)

func newTestStore() *Store {
	return New(logger.New("error", false))
}

func position(n int) *int { return &n }

func mustCreate(t *testing.T, s *Store) *domain.Bookmark {
	t.Helper()
	b, err := s.CreateBookmark(BookmarkInput{URL: "https://go.dev", Title: "Go"})
	if err != nil {
		t.Fatalf("CreateBookmark() error = %v", err)
	}
	return b
}

func TestCreateBookmarkValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     BookmarkInput
		wantField string
	}{
		{
			name:      "missing url",
			input:     BookmarkInput{Title: "Go"},
			wantField: "url",
		},
		{
			name:      "missing title",
			input:     BookmarkInput{URL: "https://go.dev"},
			wantField: "title",
		},
		{
			name:      "blank title",
			input:     BookmarkInput{URL: "https://go.dev", Title: "   "},
			wantField: "title",
		},
		{
			name:      "unknown folder",
			input:     BookmarkInput{URL: "https://go.dev", Title: "Go", FolderID: "nope"},
			wantField: "folderId",
		},
	}

	s := newTestStore()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateBookmark(tt.input)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("CreateBookmark() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestBookmarkLifecycle(t *testing.T) {
	s := newTestStore()

	b, err := s.CreateBookmark(BookmarkInput{
		URL:   "https://go.dev",
		Title: "  Go  ",
		Tags:  []string{" go ", "lang", "go"},
	})
	if err != nil {
		t.Fatalf("CreateBookmark() error = %v", err)
	}
	if b.ID == "" {
		t.Fatal("CreateBookmark() assigned no id")
	}
	if b.Title != "Go" {
		t.Errorf("Title = %q, want trimmed %q", b.Title, "Go")
	}
	if len(b.Tags) != 2 || b.Tags[0] != "go" || b.Tags[1] != "lang" {
		t.Errorf("Tags = %v, want deduplicated [go lang]", b.Tags)
	}
	if b.CreatedAt.IsZero() || !b.CreatedAt.Equal(b.UpdatedAt) {
		t.Errorf("timestamps: created=%v updated=%v", b.CreatedAt, b.UpdatedAt)
	}

	// Tag entities were created implicitly for the attached names.
	tags := s.ListTags()
	if len(tags) != 2 {
		t.Fatalf("ListTags() returned %d tags, want 2", len(tags))
	}
	if tags[0].Name != "go" || tags[0].UsageCount != 1 {
		t.Errorf("tag[0] = %s usage=%d, want go usage=1", tags[0].Name, tags[0].UsageCount)
	}

	got, err := s.GetBookmark(b.ID)
	if err != nil {
		t.Fatalf("GetBookmark() error = %v", err)
	}
	if got.URL != b.URL {
		t.Errorf("GetBookmark().URL = %q, want %q", got.URL, b.URL)
	}

	upd, err := s.UpdateBookmark(b.ID, BookmarkInput{URL: "https://go.dev/doc", Title: "Go docs"})
	if err != nil {
		t.Fatalf("UpdateBookmark() error = %v", err)
	}
	if upd.ID != b.ID || !upd.CreatedAt.Equal(b.CreatedAt) {
		t.Error("UpdateBookmark() must preserve identity and creation time")
	}

	if err := s.DeleteBookmark(b.ID); err != nil {
		t.Fatalf("DeleteBookmark() error = %v", err)
	}
	if _, err := s.GetBookmark(b.ID); err == nil {
		t.Error("GetBookmark() after delete should fail")
	}
}

func TestDeleteBookmarkUnknownID(t *testing.T) {
	s := newTestStore()
	err := s.DeleteBookmark("ghost")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("DeleteBookmark(unknown) error = %v, want NotFoundError", err)
	}
	if nf.Kind != "bookmark" {
		t.Errorf("NotFoundError.Kind = %q, want bookmark", nf.Kind)
	}
}

func TestRecordVisit(t *testing.T) {
	s := newTestStore()
	b, _ := s.CreateBookmark(BookmarkInput{URL: "https://go.dev", Title: "Go"})

	for i := 0; i < 3; i++ {
		if _, err := s.RecordVisit(b.ID); err != nil {
			t.Fatalf("RecordVisit() error = %v", err)
		}
	}
	got, _ := s.GetBookmark(b.ID)
	if got.VisitCount != 3 {
		t.Errorf("VisitCount = %d, want 3", got.VisitCount)
	}
	if got.LastVisitedAt == nil {
		t.Error("LastVisitedAt not set")
	}
}

func TestFolderCycleRejected(t *testing.T) {
	s := newTestStore()
	a, _ := s.CreateFolder(FolderInput{Name: "a"})
	b, _ := s.CreateFolder(FolderInput{Name: "b", ParentID: a.ID})
	c, _ := s.CreateFolder(FolderInput{Name: "c", ParentID: b.ID})

	// a -> c would close the loop a -> b -> c -> a.
	_, err := s.UpdateFolder(a.ID, FolderInput{Name: "a", ParentID: c.ID})
	var cyc *domain.CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("UpdateFolder() error = %v, want CycleError", err)
	}

	// Self-parenting is the trivial cycle.
	if _, err := s.UpdateFolder(a.ID, FolderInput{Name: "a", ParentID: a.ID}); !errors.As(err, &cyc) {
		t.Errorf("self-parent error = %v, want CycleError", err)
	}

	// Moving c under a directly is fine (no cycle).
	if _, err := s.UpdateFolder(c.ID, FolderInput{Name: "c", ParentID: a.ID}); err != nil {
		t.Errorf("legal reparent failed: %v", err)
	}
}

func TestDeleteFolderReassigns(t *testing.T) {
	s := newTestStore()
	parent, _ := s.CreateFolder(FolderInput{Name: "parent"})
	mid, _ := s.CreateFolder(FolderInput{Name: "mid", ParentID: parent.ID})
	child, _ := s.CreateFolder(FolderInput{Name: "child", ParentID: mid.ID})
	b, _ := s.CreateBookmark(BookmarkInput{URL: "https://go.dev", Title: "Go", FolderID: mid.ID})

	if err := s.DeleteFolder(mid.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	// The bookmark survives at the root level.
	got, err := s.GetBookmark(b.ID)
	if err != nil {
		t.Fatalf("bookmark was deleted along with its folder: %v", err)
	}
	if got.FolderID != "" {
		t.Errorf("FolderID = %q, want empty after folder deletion", got.FolderID)
	}

	// The child folder moved up to the deleted folder's parent.
	gotChild, err := s.GetFolder(child.ID)
	if err != nil {
		t.Fatalf("GetFolder(child) error = %v", err)
	}
	if gotChild.ParentID != parent.ID {
		t.Errorf("child.ParentID = %q, want %q", gotChild.ParentID, parent.ID)
	}

	if _, err := s.GetFolder(mid.ID); err == nil {
		t.Error("deleted folder still present")
	}
}

func TestCreateTagDuplicate(t *testing.T) {
	s := newTestStore()
	if _, err := s.CreateTag(TagInput{Name: "rust"}); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	_, err := s.CreateTag(TagInput{Name: "rust"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("duplicate CreateTag() error = %v, want ConflictError", err)
	}
	// Case-sensitive uniqueness: a different casing is a different tag.
	if _, err := s.CreateTag(TagInput{Name: "Rust"}); err != nil {
		t.Errorf("CreateTag(Rust) error = %v, want nil", err)
	}
}

func TestDeleteTagStripsBookmarks(t *testing.T) {
	s := newTestStore()
	tag, _ := s.CreateTag(TagInput{Name: "rust"})
	b1, _ := s.CreateBookmark(BookmarkInput{URL: "https://rust-lang.org", Title: "Rust", Tags: []string{"rust", "lang"}})
	b2, _ := s.CreateBookmark(BookmarkInput{URL: "https://go.dev", Title: "Go", Tags: []string{"lang"}})

	if err := s.DeleteTag(tag.ID); err != nil {
		t.Fatalf("DeleteTag() error = %v", err)
	}

	got1, _ := s.GetBookmark(b1.ID)
	if len(got1.Tags) != 1 || got1.Tags[0] != "lang" {
		t.Errorf("bookmark tags = %v, want [lang]", got1.Tags)
	}
	got2, _ := s.GetBookmark(b2.ID)
	if len(got2.Tags) != 1 {
		t.Errorf("unrelated bookmark tags changed: %v", got2.Tags)
	}
	for _, tg := range s.ListTags() {
		if tg.Name == "rust" {
			t.Error("tag entity still present after delete")
		}
	}
}

func TestLockAndUnlockCheck(t *testing.T) {
	s := newTestStore()
	f, _ := s.CreateFolder(FolderInput{Name: "secret"})

	if err := s.LockFolder(f.ID, ""); err == nil {
		t.Error("LockFolder with empty password should fail")
	}
	if err := s.LockFolder(f.ID, "hunter2"); err != nil {
		t.Fatalf("LockFolder() error = %v", err)
	}

	got, _ := s.GetFolder(f.ID)
	if !got.Locked || got.PasswordHash == "" {
		t.Fatal("folder not locked or hash missing")
	}
	if got.PasswordHash == "hunter2" {
		t.Fatal("password stored in the clear")
	}

	ok, err := s.UnlockCheck(f.ID, "wrong")
	if err != nil || ok {
		t.Errorf("UnlockCheck(wrong) = %v, %v; want false, nil", ok, err)
	}
	ok, err = s.UnlockCheck(f.ID, "hunter2")
	if err != nil || !ok {
		t.Errorf("UnlockCheck(correct) = %v, %v; want true, nil", ok, err)
	}

	// Lock state carries across a content update.
	if _, err := s.UpdateFolder(f.ID, FolderInput{Name: "renamed"}); err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	got, _ = s.GetFolder(f.ID)
	if !got.Locked {
		t.Error("lock state lost on content update")
	}
}

func TestReplaceNormalizes(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	doc := domain.NewDocument()
	doc.Folders = append(doc.Folders, &domain.Folder{
		ID: "f1", Name: "tools", CreatedAt: now, UpdatedAt: now,
	})
	doc.Bookmarks = append(doc.Bookmarks,
		&domain.Bookmark{ID: "b1", URL: "https://go.dev", Title: "Go", FolderID: "f1", CreatedAt: now, UpdatedAt: now},
		&domain.Bookmark{ID: "b2", URL: "https://x.test", Title: "X", FolderID: "ghost", Tags: []string{"new"}, CreatedAt: now, UpdatedAt: now},
	)

	if err := s.Replace(doc); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	// Dangling folder reference coerced to "no folder".
	b2, _ := s.GetBookmark("b2")
	if b2.FolderID != "" {
		t.Errorf("b2.FolderID = %q, want empty", b2.FolderID)
	}
	// A Tag entity was materialized for the attached name.
	tags := s.ListTags()
	if len(tags) != 1 || tags[0].Name != "new" {
		t.Errorf("tags after Replace = %v, want [new]", tags)
	}
}

func TestReplaceRejectsInvalidDocument(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s)

	bad := domain.NewDocument()
	bad.Bookmarks = append(bad.Bookmarks, &domain.Bookmark{ID: "", URL: "https://x.test", Title: "X"})

	if err := s.Replace(bad); err == nil {
		t.Fatal("Replace() accepted a document with an id-less bookmark")
	}
	// Live state untouched.
	if n, _, _ := s.Counts(); n != 1 {
		t.Errorf("bookmark count = %d, want 1 (all-or-nothing)", n)
	}
}

func TestCommitMergedDetectsConcurrentMutation(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s)

	doc, rev := s.Snapshot()

	// A mutation lands while the "sync" holds its snapshot.
	mustCreate(t, s)

	if err := s.CommitMerged(doc, rev); !errors.Is(err, ErrConcurrentMutation) {
		t.Fatalf("CommitMerged() error = %v, want ErrConcurrentMutation", err)
	}

	// Re-snapshot and commit succeeds.
	doc, rev = s.Snapshot()
	if err := s.CommitMerged(doc, rev); err != nil {
		t.Fatalf("CommitMerged() after re-snapshot error = %v", err)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore()
	b := mustCreate(t, s)

	doc, _ := s.Snapshot()
	doc.Bookmarks[0].Title = "mutated"

	got, _ := s.GetBookmark(b.ID)
	if got.Title != "Go" {
		t.Error("mutating a snapshot leaked into live state")
	}
}

func TestSnapshotOrdering(t *testing.T) {
	s := newTestStore()
	s.now = func() time.Time { return time.Unix(1000, 0) }
	_, _ = s.CreateFolder(FolderInput{Name: "beta", SortOrder: position(2)})
	_, _ = s.CreateFolder(FolderInput{Name: "alpha", SortOrder: position(2)})
	_, _ = s.CreateFolder(FolderInput{Name: "zeta", SortOrder: position(1)})

	doc, _ := s.Snapshot()
	gotNames := []string{doc.Folders[0].Name, doc.Folders[1].Name, doc.Folders[2].Name}
	want := []string{"zeta", "alpha", "beta"}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("folder order = %v, want %v", gotNames, want)
		}
	}
}

func TestUpdateFolderSortOrder(t *testing.T) {
	s := newTestStore()
	f, err := s.CreateFolder(FolderInput{Name: "inbox", SortOrder: position(5)})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	// Omitted sort order keeps the current position.
	got, err := s.UpdateFolder(f.ID, FolderInput{Name: "renamed"})
	if err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	if got.SortOrder != 5 {
		t.Errorf("SortOrder after omitted order = %d, want 5", got.SortOrder)
	}

	// An explicit value replaces it, including position 0.
	got, err = s.UpdateFolder(f.ID, FolderInput{Name: "renamed", SortOrder: position(0)})
	if err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	if got.SortOrder != 0 {
		t.Errorf("SortOrder after explicit 0 = %d, want 0", got.SortOrder)
	}
}

func TestReplaceRejectsCyclicFolders(t *testing.T) {
	s := newTestStore()
	mustCreate(t, s)
	now := time.Now()

	// Two folders with each other as parent: nothing the store's own
	// operations can produce, but a remote document or snapshot can
	// carry it.
	doc := domain.NewDocument()
	doc.Folders = append(doc.Folders,
		&domain.Folder{ID: "f1", Name: "a", ParentID: "f2", CreatedAt: now, UpdatedAt: now},
		&domain.Folder{ID: "f2", Name: "b", ParentID: "f1", CreatedAt: now, UpdatedAt: now},
	)

	if err := s.Replace(doc); err == nil {
		t.Fatal("Replace() accepted a document with a folder cycle")
	}
	// Live state untouched.
	if n, _, _ := s.Counts(); n != 1 {
		t.Errorf("bookmark count = %d, want 1 (all-or-nothing)", n)
	}

	self := domain.NewDocument()
	self.Folders = append(self.Folders,
		&domain.Folder{ID: "f1", Name: "a", ParentID: "f1", CreatedAt: now, UpdatedAt: now},
	)
	if err := s.Replace(self); err == nil {
		t.Fatal("Replace() accepted a self-parented folder")
	}
}

func TestReplaceNormalizesDanglingParent(t *testing.T) {
	s := newTestStore()
	now := time.Now()

	doc := domain.NewDocument()
	doc.Folders = append(doc.Folders,
		&domain.Folder{ID: "f1", Name: "orphan", ParentID: "gone", CreatedAt: now, UpdatedAt: now},
	)

	if err := s.Replace(doc); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	got, err := s.GetFolder("f1")
	if err != nil {
		t.Fatalf("GetFolder() error = %v", err)
	}
	if got.ParentID != "" {
		t.Errorf("ParentID = %q, want empty (moved to top level)", got.ParentID)
	}
}
