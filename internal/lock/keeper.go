package lock

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Keeper tracks which locked folders a session has verified with a
// successful password check. Sessions are identified by an opaque token
// and expire after an idle TTL; expired sessions are swept lazily.
type Keeper struct {
	cfg       KeeperConfig
	mu        sync.Mutex
	sessions  map[string]*session
	lastSweep time.Time
}

type KeeperConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxEntries    int
}

type session struct {
	folders  map[string]bool
	lastSeen time.Time
}

// NewKeeper creates a session keeper with sane defaults filled in.
func NewKeeper(cfg KeeperConfig) *Keeper {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Keeper{
		cfg:       cfg,
		sessions:  make(map[string]*session, 64),
		lastSweep: time.Now(),
	}
}

// Grant records a successful unlock of folderID for the given session.
// If sessionID is empty a fresh token is generated. The (possibly new)
// token is returned.
func (k *Keeper) Grant(sessionID, folderID string) string {
	now := time.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	k.sweepMaybeLocked(now)

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s := k.sessions[sessionID]
	if s == nil {
		if k.cfg.MaxEntries > 0 && len(k.sessions) >= k.cfg.MaxEntries {
			k.sweepLocked(now)
		}
		s = &session{folders: make(map[string]bool, 4)}
		k.sessions[sessionID] = s
	}
	s.folders[folderID] = true
	s.lastSeen = now
	return sessionID
}

// Verified reports whether the session has unlocked folderID.
func (k *Keeper) Verified(sessionID, folderID string) bool {
	if sessionID == "" {
		return false
	}
	now := time.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	k.sweepMaybeLocked(now)

	s := k.sessions[sessionID]
	if s == nil || now.Sub(s.lastSeen) > k.cfg.IdleTTL {
		return false
	}
	s.lastSeen = now
	return s.folders[folderID]
}

// Revoke drops every session's grant for folderID. Called when a folder's
// password changes so old verifications cannot outlive the new password.
func (k *Keeper) Revoke(folderID string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, s := range k.sessions {
		delete(s.folders, folderID)
	}
}

func (k *Keeper) sweepMaybeLocked(now time.Time) {
	if now.Sub(k.lastSweep) >= k.cfg.SweepInterval {
		k.sweepLocked(now)
	}
}

func (k *Keeper) sweepLocked(now time.Time) {
	ttl := k.cfg.IdleTTL
	for id, s := range k.sessions {
		if now.Sub(s.lastSeen) > ttl {
			delete(k.sessions, id)
		}
	}
	k.lastSweep = now
}
