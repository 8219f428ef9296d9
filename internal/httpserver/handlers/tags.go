package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/store"
)

type tagListResponse struct {
	Tags  []*domain.Tag `json:"tags"`
	Count int           `json:"count"`
}

func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := d.Store.ListTags()
		writeJSON(w, http.StatusOK, tagListResponse{Tags: list, Count: len(list)})
	}
}

func CreateTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.TagInput
		if !decodeJSON(w, r, &in) {
			return
		}

		tag, err := d.Store.CreateTag(in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tag)
	}
}

func GetTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := d.Store.GetTag(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tag)
	}
}

// DeleteTag removes the tag entity and strips its name from every
// bookmark in the same operation.
func DeleteTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.DeleteTag(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
