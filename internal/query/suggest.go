package query

import (
	"github.com/sahilm/fuzzy"

	"github.com/ysohn/markdrive/internal/domain"
)

// Suggestion is one fuzzy title match.
type Suggestion struct {
	Bookmark *domain.Bookmark `json:"bookmark"`
	Score    int              `json:"score"`
}

// bookmarkTitles implements fuzzy.Source over a bookmark slice.
type bookmarkTitles []*domain.Bookmark

func (bt bookmarkTitles) String(i int) string { return bt[i].Title }
func (bt bookmarkTitles) Len() int            { return len(bt) }

// Suggest fuzzy-matches the query against visible bookmark titles and
// returns up to limit suggestions, best score first.
func (e *Engine) Suggest(sessionID, query string, limit int) []Suggestion {
	if query == "" {
		return nil
	}

	bookmarks, _ := e.visible(sessionID)
	matches := fuzzy.FindFrom(query, bookmarkTitles(bookmarks))

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Suggestion, len(matches))
	for i, m := range matches {
		out[i] = Suggestion{
			Bookmark: bookmarks[m.Index],
			Score:    m.Score,
		}
	}
	return out
}
