package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/handlers"
	"github.com/ysohn/markdrive/internal/httpserver/mw"
)

func init() { Register(registerFolders) }

func registerFolders(r chi.Router, d deps.Deps) {
	r.Route("/api/folders", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/", handlers.ListFolders(d))
		r.Post("/", handlers.CreateFolder(d))
		r.Get("/{id}", handlers.GetFolder(d))
		r.Put("/{id}", handlers.UpdateFolder(d))
		r.Delete("/{id}", handlers.DeleteFolder(d))
		r.Post("/{id}/lock", handlers.LockFolder(d))

		// Password attempts are throttled per client IP.
		r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.UnlockBurst,
			RefillPerIPPerMin: d.UnlockPerMinute,
			TrustProxy:        d.TrustProxy,
		})).Post("/{id}/unlock", handlers.UnlockFolder(d))
	})
}
