package handlers

import (
	"net/http"
	"strconv"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/query"
)

const defaultSuggestLimit = 10

type suggestResponse struct {
	Suggestions []query.Suggestion `json:"suggestions"`
	Count       int                `json:"count"`
}

// Search matches the query case-insensitively as a substring of title,
// description, URL, or any tag. An empty query returns everything the
// session may see.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := d.Query.Search(sessionID(r), r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, bookmarkListResponse{Bookmarks: list, Count: len(list)})
	}
}

// Suggest ranks bookmark titles against the query with fuzzy matching,
// for type-ahead in the client.
func Suggest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultSuggestLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		matches := d.Query.Suggest(sessionID(r), r.URL.Query().Get("q"), limit)
		writeJSON(w, http.StatusOK, suggestResponse{Suggestions: matches, Count: len(matches)})
	}
}
