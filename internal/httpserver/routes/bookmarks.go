package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/handlers"
	"github.com/ysohn/markdrive/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Get("/{id}", handlers.GetBookmark(d))
		r.Put("/{id}", handlers.UpdateBookmark(d))
		r.Delete("/{id}", handlers.DeleteBookmark(d))
		r.Post("/{id}/visit", handlers.RecordVisit(d))
	})
}
