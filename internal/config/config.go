package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SeedFile        string        // path to an optional YAML seed applied on first start (empty = no seed)
	SyncInterval    time.Duration // interval between background syncs (0 = manual sync only)
	SessionTTL      time.Duration // idle TTL for folder unlock sessions
	MetadataTimeout time.Duration // timeout for URL metadata fetches

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)

	// Unlock attempt limiting (per client IP)
	UnlockBurst     int // attempts allowed before throttling kicks in
	UnlockPerMinute int // sustained attempts per minute after the burst

	AllowedOrigins []string // CORS origins for the browser client ("*" = any)
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AdminCIDRS     []string // optional, restrict sync/backup endpoints to specific IPs
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MARKDRIVE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("MARKDRIVE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MARKDRIVE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MARKDRIVE_PRETTY_LOG", true),

		// Core behavior
		SeedFile:        getenv("MARKDRIVE_SEED_FILE", ""), // Optional, empty = no seeding
		SyncInterval:    mustDuration("MARKDRIVE_SYNC_INTERVAL", 15*time.Minute),
		SessionTTL:      mustDuration("MARKDRIVE_SESSION_TTL", 30*time.Minute),
		MetadataTimeout: mustDuration("MARKDRIVE_METADATA_TIMEOUT", 5*time.Second),

		// Redis settings
		RedisAddr:             requireEnv("MARKDRIVE_REDIS_ADDR"),
		RedisUser:             getenv("MARKDRIVE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("MARKDRIVE_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("MARKDRIVE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("MARKDRIVE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),

		// Unlock attempts
		UnlockBurst:     getenvInt("MARKDRIVE_UNLOCK_BURST", 5),
		UnlockPerMinute: getenvInt("MARKDRIVE_UNLOCK_PER_MINUTE", 10),

		// Access restrictions
		AllowedOrigins: splitAndTrim(getenv("MARKDRIVE_ALLOWED_ORIGINS", "*")),
		AllowedHosts:   splitAndTrim(getenv("MARKDRIVE_ALLOWED_HOSTS", "")),
		AdminCIDRS:     splitAndTrim(getenv("MARKDRIVE_ADMIN_CIDRS", "")),
		TrustProxy:     mustBool("MARKDRIVE_TRUST_PROXY", false),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: MARKDRIVE_REDIS_PASSWORD is required when MARKDRIVE_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
