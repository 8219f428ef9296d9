package deps

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ysohn/markdrive/internal/lock"
	"github.com/ysohn/markdrive/internal/logger"
	"github.com/ysohn/markdrive/internal/metadata"
	"github.com/ysohn/markdrive/internal/query"
	"github.com/ysohn/markdrive/internal/store"
	msync "github.com/ysohn/markdrive/internal/sync"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AdminCIDRS   []string         // IPs allowed to hit sync/backup/restore endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Store       *store.Store       // Entity store (single source of truth)
	Query       *query.Engine      // Read side: listing, filtering, search, suggestions
	Sessions    *lock.Keeper       // Folder unlock sessions
	Coordinator *msync.Coordinator // Remote sync and backups
	Metadata    *metadata.Fetcher  // URL metadata fetches (nil disables the endpoint)
	RedisClient *redis.Client      // Redis client connection (readiness checks)

	UnlockBurst     int // password attempts allowed per IP before throttling
	UnlockPerMinute int // sustained password attempts per minute after the burst
}
