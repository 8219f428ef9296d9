package handlers

import (
	"net/http"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
)

// Metadata fetches title, description and favicon for a URL so the client
// can prefill the bookmark form. An unreachable page still answers 200
// with host-derived fallbacks; only a malformed URL is an error.
func Metadata(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("url")
		if raw == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
			return
		}

		meta, err := d.Metadata.Fetch(r.Context(), raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid url"})
			return
		}
		writeJSON(w, http.StatusOK, meta)
	}
}
