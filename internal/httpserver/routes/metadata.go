package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/handlers"
	"github.com/ysohn/markdrive/internal/httpserver/mw"
)

func init() { Register(registerMetadata) }

func registerMetadata(r chi.Router, d deps.Deps) {
	if d.Metadata == nil {
		return
	}
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/api/metadata", handlers.Metadata(d))
}
