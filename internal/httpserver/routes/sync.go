package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ysohn/markdrive/internal/httpserver/deps"
	"github.com/ysohn/markdrive/internal/httpserver/handlers"
	"github.com/ysohn/markdrive/internal/httpserver/mw"
)

func init() { Register(registerSync) }

// Sync and backup endpoints touch the remote store; they can be fenced
// off to admin networks via MARKDRIVE_ADMIN_CIDRS.
func registerSync(r chi.Router, d deps.Deps) {
	admin := r.With(
		mw.AllowOnlyCIDRS(d.AdminCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	)

	admin.Post("/api/sync", handlers.TriggerSync(d))
	admin.Get("/api/sync/status", handlers.SyncStatus(d))

	admin.Post("/api/backups", handlers.CreateBackup(d))
	admin.Get("/api/backups", handlers.ListBackups(d))
	admin.Post("/api/backups/{id}/restore", handlers.RestoreBackup(d))
}
