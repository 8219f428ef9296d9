package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/store"
)

type bookmarkListResponse struct {
	Bookmarks []*domain.Bookmark `json:"bookmarks"`
	Count     int                `json:"count"`
}

// ListBookmarks returns the visible bookmarks. Optional filters:
// ?folder={id} restricts to one folder, ?tag={name} to one tag.
// Bookmarks inside locked folders are omitted unless the session
// has verified the folder's password.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := sessionID(r)

		var (
			list []*domain.Bookmark
			err  error
		)
		switch {
		case r.URL.Query().Has("folder"):
			list, err = d.Query.ListByFolder(sid, r.URL.Query().Get("folder"))
		case r.URL.Query().Has("tag"):
			list = d.Query.ListByTag(sid, r.URL.Query().Get("tag"))
		default:
			list = d.Query.ListAll(sid)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, bookmarkListResponse{Bookmarks: list, Count: len(list)})
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.BookmarkInput
		if !decodeJSON(w, r, &in) {
			return
		}

		b, err := d.Store.CreateBookmark(in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Store.GetBookmark(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.BookmarkInput
		if !decodeJSON(w, r, &in) {
			return
		}

		b, err := d.Store.UpdateBookmark(chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.DeleteBookmark(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RecordVisit bumps the bookmark's visit counter and last-visited time.
// The browser client calls this when the user opens a bookmark.
func RecordVisit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Store.RecordVisit(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
