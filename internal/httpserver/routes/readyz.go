package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/handlers"
	"github.com/ysohn/markdrive/internal/httpserver/mw"
)

func init() { Register(registerReadyz) }

func registerReadyz(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AdminCIDRS, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
}
