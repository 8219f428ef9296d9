package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/logger"
)

type syncStatusResponse struct {
	State      string `json:"state"`
	LastSyncAt string `json:"last_sync_at,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// TriggerSync runs a sync now. A sync already in flight is rejected with
// a 409; the caller retries later instead of queueing behind it.
func TriggerSync(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Coordinator.Sync(r.Context()); err != nil {
			d.Logger.Warn("manual sync failed", logger.Error(err))
			writeError(w, err)
			return
		}

		state, last, _ := d.Coordinator.Status()
		writeJSON(w, http.StatusOK, syncStatusResponse{
			State:      string(state),
			LastSyncAt: last.Format(time.RFC3339),
		})
	}
}

func SyncStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, last, lastErr := d.Coordinator.Status()

		resp := syncStatusResponse{State: string(state)}
		if !last.IsZero() {
			resp.LastSyncAt = last.Format(time.RFC3339)
		}
		if lastErr != nil {
			resp.LastError = lastErr.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type backupListResponse struct {
	Snapshots []domain.SnapshotInfo `json:"snapshots"`
	Count     int                   `json:"count"`
}

// CreateBackup writes a point-in-time snapshot of the current collection
// to the remote store. It never mutates local state.
func CreateBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := d.Coordinator.Backup(r.Context())
		if err != nil {
			d.Logger.Error("backup failed", logger.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, info)
	}
}

func ListBackups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := d.Coordinator.ListBackups(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, backupListResponse{Snapshots: list, Count: len(list)})
	}
}

// RestoreBackup replaces the whole collection with the snapshot's
// contents. A snapshot that fails validation leaves local state untouched.
func RestoreBackup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Coordinator.Restore(r.Context(), id); err != nil {
			d.Logger.Error("restore failed",
				logger.String("snapshot_id", id),
				logger.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"restored": id})
	}
}
