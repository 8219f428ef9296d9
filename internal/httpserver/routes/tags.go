package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/handlers"
	"github.com/ysohn/markdrive/internal/httpserver/mw"
)

func init() { Register(registerTags) }

func registerTags(r chi.Router, d deps.Deps) {
	r.Route("/api/tags", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/", handlers.ListTags(d))
		r.Post("/", handlers.CreateTag(d))
		r.Get("/{id}", handlers.GetTag(d))
		r.Delete("/{id}", handlers.DeleteTag(d))
	})
}
