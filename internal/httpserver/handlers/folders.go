package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/logger"
	"github.com/ysohn/markdrive/internal/store"
	"github.com/ysohn/markdrive/internal/utils"
)

type folderListResponse struct {
	Folders []*domain.Folder `json:"folders"`
	Count   int              `json:"count"`
}

// Folder password hashes live only in the persisted document; every
// folder leaving over HTTP goes through Sanitized first.
func sanitizeAll(list []*domain.Folder) []*domain.Folder {
	out := make([]*domain.Folder, len(list))
	for i, f := range list {
		out[i] = f.Sanitized()
	}
	return out
}

func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := sanitizeAll(d.Store.ListFolders())
		writeJSON(w, http.StatusOK, folderListResponse{Folders: list, Count: len(list)})
	}
}

func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.FolderInput
		if !decodeJSON(w, r, &in) {
			return
		}

		f, err := d.Store.CreateFolder(in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, f.Sanitized())
	}
}

func GetFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := d.Store.GetFolder(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f.Sanitized())
	}
}

func UpdateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.FolderInput
		if !decodeJSON(w, r, &in) {
			return
		}

		f, err := d.Store.UpdateFolder(chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f.Sanitized())
	}
}

// DeleteFolder removes the folder. Its bookmarks drop back to the root
// level and its subfolders move up to the deleted folder's parent.
func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := d.Store.DeleteFolder(id); err != nil {
			writeError(w, err)
			return
		}
		d.Sessions.Revoke(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

type lockRequest struct {
	Password string `json:"password"`
}

type unlockResponse struct {
	SessionToken string `json:"sessionToken"`
}

// LockFolder sets a password on the folder and hides its contents from
// queries. Any previously granted unlock sessions for it are revoked.
func LockFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req lockRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := d.Store.LockFolder(id, req.Password); err != nil {
			writeError(w, err)
			return
		}
		d.Sessions.Revoke(id)

		f, err := d.Store.GetFolder(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f.Sanitized())
	}
}

// UnlockFolder verifies the password and grants the session access to the
// folder's contents. A wrong password is a plain 403; the response never
// says whether the folder exists behind it.
func UnlockFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req lockRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		ok, err := d.Store.UnlockCheck(id, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			d.Logger.Warn("folder unlock rejected",
				logger.String("folder_id", id),
				logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)))
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "wrong password"})
			return
		}

		token := d.Sessions.Grant(sessionID(r), id)
		writeJSON(w, http.StatusOK, unlockResponse{SessionToken: token})
	}
}
