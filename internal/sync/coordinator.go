// Package sync reconciles the entity store with the remote durable store
// and manages point-in-time backups. One sync runs at a time; requests
// arriving while a sync is in flight are rejected, never queued.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/logger"
	"github.com/ysohn/markdrive/internal/remote"
	"github.com/ysohn/markdrive/internal/store"
)

// State is the coordinator's sync state.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
)

const (
	// DefaultRetries bounds the attempts against transient remote
	// failures before a terminal SyncError is surfaced.
	DefaultRetries = 3
	// retryBaseDelay grows linearly per attempt.
	retryBaseDelay = 200 * time.Millisecond
)

// Coordinator drives sync, backup and restore against the remote store.
type Coordinator struct {
	store    *store.Store
	remote   remote.Store
	log      logger.Logger
	tieBreak TieBreak
	retries  int

	interval time.Duration
	trigger  chan struct{}
	stopCh   chan struct{}

	mu         stdsync.Mutex
	state      State
	watermark  time.Time
	lastSyncAt time.Time
	lastErr    error
}

// Options tune the coordinator. Zero values select the defaults.
type Options struct {
	TieBreak TieBreak
	Retries  int
	Interval time.Duration
	Trigger  chan struct{}

	// Watermark seeds the deletion watermark when local state was
	// bootstrapped from an already-synced document. Without it the
	// first sync after a restart treats the whole remote document as
	// fresh additions and resurrects anything deleted locally since
	// startup. Zero means a true first sync (plain union).
	Watermark time.Time
}

// New creates a coordinator in the idle state.
func New(s *store.Store, r remote.Store, log logger.Logger, opts Options) *Coordinator {
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	return &Coordinator{
		store:     s,
		remote:    r,
		log:       log,
		tieBreak:  opts.TieBreak,
		retries:   opts.Retries,
		interval:  opts.Interval,
		trigger:   opts.Trigger,
		stopCh:    make(chan struct{}),
		state:     StateIdle,
		watermark: opts.Watermark,
	}
}

// Status returns the current state, the time of the last successful sync
// and the error recorded by the last failed one.
func (c *Coordinator) Status() (State, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.lastSyncAt, c.lastErr
}

// Sync pushes local changes to the remote store and pulls remote ones,
// resolving conflicts by per-entity last-write-wins. It snapshots local
// state and releases the store's lock for the whole network phase, then
// applies the merged result back transactionally. A cancelled context
// leaves local state exactly as it was.
func (c *Coordinator) Sync(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSyncing {
		c.mu.Unlock()
		return &domain.SyncInProgressError{}
	}
	c.state = StateSyncing
	watermark := c.watermark
	c.mu.Unlock()

	err := c.syncOnce(ctx, watermark)

	c.mu.Lock()
	c.state = StateIdle
	c.lastErr = err
	if err == nil {
		c.lastSyncAt = time.Now()
		c.watermark = c.lastSyncAt
	}
	c.mu.Unlock()
	return err
}

func (c *Coordinator) syncOnce(ctx context.Context, watermark time.Time) error {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		err := c.attempt(ctx, watermark)
		if err == nil {
			return nil
		}
		// Conflicts and cancellations are terminal, not transient.
		var conflict *domain.SyncConflictError
		if errors.As(err, &conflict) || ctx.Err() != nil {
			return err
		}
		lastErr = err
		c.log.Warn("sync attempt failed",
			logger.Int("attempt", attempt),
			logger.Error(err))

		if attempt < c.retries {
			select {
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return &domain.SyncError{Attempts: c.retries, Err: lastErr}
}

func (c *Coordinator) attempt(ctx context.Context, watermark time.Time) error {
	remoteDoc, err := c.remote.LoadDocument(ctx)
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			return fmt.Errorf("pull failed: %w", err)
		}
		remoteDoc = domain.NewDocument()
	}

	local, rev := c.store.Snapshot()

	merged, err := merge(local, remoteDoc, watermark, c.tieBreak)
	if err != nil {
		return err
	}
	// Never push a document the store itself would reject: a bad merge
	// result must not poison the remote copy for the next bootstrap.
	if err := merged.Validate(); err != nil {
		return fmt.Errorf("merge produced an invalid document: %w", err)
	}

	// Nothing is written past a cancelled context.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.remote.SaveDocument(ctx, merged); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	if err := c.store.CommitMerged(merged, rev); err != nil {
		// A local mutation slipped in during the network phase;
		// the next attempt re-snapshots and re-merges.
		return fmt.Errorf("apply failed: %w", err)
	}

	c.log.Info("sync completed",
		logger.Int("bookmarks", len(merged.Bookmarks)),
		logger.Int("folders", len(merged.Folders)),
		logger.Int("tags", len(merged.Tags)))
	return nil
}

// Backup writes an immutable, timestamped snapshot of the full entity set
// to the remote store. Live state is never mutated.
func (c *Coordinator) Backup(ctx context.Context) (domain.SnapshotInfo, error) {
	doc, _ := c.store.Snapshot()
	info := domain.SnapshotInfo{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Bookmarks: len(doc.Bookmarks),
		Folders:   len(doc.Folders),
		Tags:      len(doc.Tags),
	}
	if err := c.remote.SaveSnapshot(ctx, info, doc); err != nil {
		return domain.SnapshotInfo{}, fmt.Errorf("backup failed: %w", err)
	}

	c.log.Info("backup created",
		logger.String("snapshot_id", info.ID),
		logger.Int("bookmarks", info.Bookmarks))
	return info, nil
}

// ListBackups returns snapshot metadata ordered by creation time,
// newest first.
func (c *Coordinator) ListBackups(ctx context.Context) ([]domain.SnapshotInfo, error) {
	infos, err := c.remote.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Restore fully replaces live state with a snapshot's contents. It is
// all-or-nothing: a corrupt or inapplicable snapshot fails with
// RestoreError and live state stays untouched.
func (c *Coordinator) Restore(ctx context.Context, snapshotID string) error {
	doc, err := c.remote.LoadSnapshot(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return &domain.NotFoundError{Kind: "snapshot", ID: snapshotID}
		}
		return &domain.RestoreError{SnapshotID: snapshotID, Reason: err.Error()}
	}
	if err := doc.Validate(); err != nil {
		return &domain.RestoreError{SnapshotID: snapshotID, Reason: err.Error()}
	}
	if err := c.store.Replace(doc); err != nil {
		return &domain.RestoreError{SnapshotID: snapshotID, Reason: err.Error()}
	}

	c.log.Info("snapshot restored", logger.String("snapshot_id", snapshotID))
	return nil
}

// Start begins periodic background syncs. A manual trigger channel fires
// an immediate sync; a sync already in flight makes the tick a no-op.
func (c *Coordinator) Start(ctx context.Context) {
	if c.interval <= 0 {
		return
	}
	ticker := time.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.runBackground(ctx)
			case <-c.trigger:
				c.log.Info("manual sync triggered")
				c.runBackground(ctx)
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the periodic sync loop.
func (c *Coordinator) Stop() {
	close(c.stopCh)
}

func (c *Coordinator) runBackground(ctx context.Context) {
	err := c.Sync(ctx)
	if err == nil {
		return
	}
	var inProgress *domain.SyncInProgressError
	if errors.As(err, &inProgress) {
		return
	}
	c.log.Error("background sync failed", logger.Error(err))
}
