package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/handlers"
	"github.com/ysohn/markdrive/internal/httpserver/mw"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	sub := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	sub.Get("/api/search", handlers.Search(d))
	sub.Get("/api/suggest", handlers.Suggest(d))
}
