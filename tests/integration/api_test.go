package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/routes"
	"github.com/ysohn/markdrive/internal/lock"
	"github.com/ysohn/markdrive/internal/logger"
	"github.com/ysohn/markdrive/internal/query"
	"github.com/ysohn/markdrive/internal/remote"
	"github.com/ysohn/markdrive/internal/store"
	msync "github.com/ysohn/markdrive/internal/sync"
)

// memRemote keeps the remote document in memory so the full API can be
// exercised without a Redis server.
type memRemote struct {
	doc       *domain.Document
	snapshots map[string]*domain.Document
	infos     []domain.SnapshotInfo
}

var _ remote.Store = (*memRemote)(nil)

func (m *memRemote) LoadDocument(ctx context.Context) (*domain.Document, error) {
	if m.doc == nil {
		return nil, remote.ErrNotFound
	}
	return m.doc.Clone(), nil
}

func (m *memRemote) SaveDocument(ctx context.Context, doc *domain.Document) error {
	m.doc = doc.Clone()
	return nil
}

func (m *memRemote) SaveSnapshot(ctx context.Context, info domain.SnapshotInfo, doc *domain.Document) error {
	if m.snapshots == nil {
		m.snapshots = make(map[string]*domain.Document)
	}
	m.snapshots[info.ID] = doc.Clone()
	m.infos = append(m.infos, info)
	return nil
}

func (m *memRemote) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	return append([]domain.SnapshotInfo(nil), m.infos...), nil
}

func (m *memRemote) LoadSnapshot(ctx context.Context, id string) (*domain.Document, error) {
	doc, ok := m.snapshots[id]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *memRemote) Ping(ctx context.Context) error { return nil }

type env struct {
	router *chi.Mux
	store  *store.Store
	remote *memRemote
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logger.New("error", false)
	s := store.New(log)
	sessions := lock.NewKeeper(lock.KeeperConfig{})
	rem := &memRemote{}

	d := deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		TimeNow:         time.Now,
		Store:           s,
		Query:           query.New(s, sessions),
		Sessions:        sessions,
		Coordinator:     msync.New(s, rem, log, msync.Options{}),
		UnlockBurst:     10,
		UnlockPerMinute: 60,
	}

	r := chi.NewRouter()
	routes.RegisterAll(r, d)
	return &env{router: r, store: s, remote: rem}
}

func (e *env) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func (e *env) mustDo(t *testing.T, method, path string, body any, wantStatus int) map[string]any {
	t.Helper()
	rec, decoded := e.do(t, method, path, body, nil)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s = %d, want %d (body %s)", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	return decoded
}

func TestBookmarkAndFolderFlow(t *testing.T) {
	e := newEnv(t)

	folder := e.mustDo(t, http.MethodPost, "/api/folders", map[string]any{"name": "Reading"}, http.StatusCreated)
	folderID, _ := folder["id"].(string)
	if folderID == "" {
		t.Fatalf("folder response missing id: %v", folder)
	}

	bookmark := e.mustDo(t, http.MethodPost, "/api/bookmarks", map[string]any{
		"url":      "https://go.dev/blog",
		"title":    "The Go Blog",
		"folderId": folderID,
		"tags":     []string{"go", "reading"},
	}, http.StatusCreated)
	bookmarkID, _ := bookmark["id"].(string)

	list := e.mustDo(t, http.MethodGet, "/api/bookmarks?folder="+folderID, nil, http.StatusOK)
	if int(list["count"].(float64)) != 1 {
		t.Fatalf("folder listing count = %v, want 1", list["count"])
	}

	// Tags created implicitly by the bookmark show up in the tag listing.
	tags := e.mustDo(t, http.MethodGet, "/api/tags", nil, http.StatusOK)
	if int(tags["count"].(float64)) != 2 {
		t.Fatalf("tag count = %v, want 2", tags["count"])
	}

	byTag := e.mustDo(t, http.MethodGet, "/api/bookmarks?tag=go", nil, http.StatusOK)
	if int(byTag["count"].(float64)) != 1 {
		t.Fatalf("tag listing count = %v, want 1", byTag["count"])
	}

	e.mustDo(t, http.MethodPost, "/api/bookmarks/"+bookmarkID+"/visit", nil, http.StatusOK)
	got := e.mustDo(t, http.MethodGet, "/api/bookmarks/"+bookmarkID, nil, http.StatusOK)
	if int(got["visitCount"].(float64)) != 1 {
		t.Errorf("visitCount = %v, want 1", got["visitCount"])
	}

	// Deleting the folder keeps the bookmark, reassigned to top level.
	e.mustDo(t, http.MethodDelete, "/api/folders/"+folderID, nil, http.StatusNoContent)
	got = e.mustDo(t, http.MethodGet, "/api/bookmarks/"+bookmarkID, nil, http.StatusOK)
	if fid, ok := got["folderId"]; ok && fid != "" {
		t.Errorf("folderId after folder delete = %v, want empty", fid)
	}
}

func TestLockedFolderOverAPI(t *testing.T) {
	e := newEnv(t)

	folder := e.mustDo(t, http.MethodPost, "/api/folders", map[string]any{"name": "Private"}, http.StatusCreated)
	folderID := folder["id"].(string)
	e.mustDo(t, http.MethodPost, "/api/bookmarks", map[string]any{
		"url":      "https://bank.example",
		"title":    "Bank",
		"folderId": folderID,
	}, http.StatusCreated)

	locked := e.mustDo(t, http.MethodPost, "/api/folders/"+folderID+"/lock", map[string]any{"password": "hunter2"}, http.StatusOK)
	if _, leaked := locked["passwordHash"]; leaked {
		t.Fatal("lock response exposed passwordHash")
	}

	// The subtree disappears from anonymous reads.
	list := e.mustDo(t, http.MethodGet, "/api/bookmarks", nil, http.StatusOK)
	if int(list["count"].(float64)) != 0 {
		t.Fatalf("anonymous bookmark count = %v, want 0", list["count"])
	}
	rec, _ := e.do(t, http.MethodGet, "/api/bookmarks?folder="+folderID, nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("locked folder listing = %d, want 403", rec.Code)
	}

	rec, _ = e.do(t, http.MethodPost, "/api/folders/"+folderID+"/unlock", map[string]any{"password": "wrong"}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong password = %d, want 403", rec.Code)
	}

	unlocked := e.mustDo(t, http.MethodPost, "/api/folders/"+folderID+"/unlock", map[string]any{"password": "hunter2"}, http.StatusOK)
	token, _ := unlocked["sessionToken"].(string)
	if token == "" {
		t.Fatalf("unlock response missing sessionToken: %v", unlocked)
	}

	rec, decoded := e.do(t, http.MethodGet, "/api/bookmarks?folder="+folderID, nil, map[string]string{"X-Session-Token": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("verified folder listing = %d, want 200", rec.Code)
	}
	if int(decoded["count"].(float64)) != 1 {
		t.Errorf("verified bookmark count = %v, want 1", decoded["count"])
	}
}

func TestSearchAndSuggestOverAPI(t *testing.T) {
	e := newEnv(t)

	for i, title := range []string{"Grafana dashboards", "Kubernetes docs", "Go generics proposal"} {
		e.mustDo(t, http.MethodPost, "/api/bookmarks", map[string]any{
			"url":   fmt.Sprintf("https://site%d.example", i),
			"title": title,
		}, http.StatusCreated)
	}

	found := e.mustDo(t, http.MethodGet, "/api/search?q=docs", nil, http.StatusOK)
	if int(found["count"].(float64)) != 1 {
		t.Fatalf("search count = %v, want 1", found["count"])
	}

	suggested := e.mustDo(t, http.MethodGet, "/api/suggest?q=gfna", nil, http.StatusOK)
	list, _ := suggested["suggestions"].([]any)
	if len(list) == 0 {
		t.Fatal("no suggestions returned")
	}
	top := list[0].(map[string]any)["bookmark"].(map[string]any)
	if top["title"] != "Grafana dashboards" {
		t.Errorf("top suggestion = %v, want Grafana dashboards", top["title"])
	}
}

func TestSyncAndBackupOverAPI(t *testing.T) {
	e := newEnv(t)

	e.mustDo(t, http.MethodPost, "/api/bookmarks", map[string]any{
		"url":   "https://go.dev",
		"title": "Go",
	}, http.StatusCreated)

	e.mustDo(t, http.MethodPost, "/api/sync", nil, http.StatusOK)
	if e.remote.doc == nil || len(e.remote.doc.Bookmarks) != 1 {
		t.Fatal("sync did not push the bookmark to the remote store")
	}

	status := e.mustDo(t, http.MethodGet, "/api/sync/status", nil, http.StatusOK)
	if status["state"] != "idle" {
		t.Errorf("sync state = %v, want idle", status["state"])
	}

	created := e.mustDo(t, http.MethodPost, "/api/backups", nil, http.StatusCreated)
	snapID, _ := created["id"].(string)
	if snapID == "" {
		t.Fatalf("backup response missing id: %v", created)
	}

	backups := e.mustDo(t, http.MethodGet, "/api/backups", nil, http.StatusOK)
	if int(backups["count"].(float64)) != 1 {
		t.Fatalf("backup count = %v, want 1", backups["count"])
	}

	// Mutate, then restore the snapshot and verify the mutation is gone.
	extra := e.mustDo(t, http.MethodPost, "/api/bookmarks", map[string]any{
		"url":   "https://later.example",
		"title": "Added after backup",
	}, http.StatusCreated)
	e.mustDo(t, http.MethodPost, "/api/backups/"+snapID+"/restore", nil, http.StatusOK)

	rec, _ := e.do(t, http.MethodGet, "/api/bookmarks/"+extra["id"].(string), nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("post-snapshot bookmark after restore = %d, want 404", rec.Code)
	}
	list := e.mustDo(t, http.MethodGet, "/api/bookmarks", nil, http.StatusOK)
	if int(list["count"].(float64)) != 1 {
		t.Errorf("bookmark count after restore = %v, want 1", list["count"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t)

	rec, decoded := e.do(t, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", rec.Code)
	}
	if decoded["status"] != "ok" {
		t.Errorf("healthz status = %v, want ok", decoded["status"])
	}

	// No Redis client configured in tests, so readiness reports down.
	rec, decoded = e.do(t, http.MethodGet, "/readyz", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503", rec.Code)
	}
	if decoded["ready"] != false {
		t.Errorf("readyz ready = %v, want false", decoded["ready"])
	}
}
