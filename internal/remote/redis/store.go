// Package redis implements the remote durable store on a Redis backend.
// The live document and every snapshot are stored as JSON values, with a
// set holding all snapshot ids.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ysohn/markdrive/internal/domain"
	"github.com/ysohn/markdrive/internal/remote"
)

// Store handles Redis operations for the document and snapshots.
type Store struct {
	client *goredis.Client
}

var _ remote.Store = (*Store)(nil)

// NewStore creates a Redis-backed remote store.
func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

// snapshotEnvelope is the persisted form of one backup: metadata plus the
// full document, in a single value.
type snapshotEnvelope struct {
	Info     domain.SnapshotInfo `json:"info"`
	Document *domain.Document    `json:"document"`
}

// LoadDocument fetches the live document.
func (s *Store) LoadDocument(ctx context.Context) (*domain.Document, error) {
	data, err := s.client.Get(ctx, KeyDocument).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, remote.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// SaveDocument replaces the live document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := s.client.Set(ctx, KeyDocument, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// SaveSnapshot stores an immutable backup snapshot and registers its id.
func (s *Store) SaveSnapshot(ctx context.Context, info domain.SnapshotInfo, doc *domain.Document) error {
	data, err := json.Marshal(snapshotEnvelope{Info: info, Document: doc})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", info.ID, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, SnapshotKey(info.ID), data, 0)
	pipe.SAdd(ctx, KeyAllSnapshots, info.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", info.ID, err)
	}
	return nil
}

// ListSnapshots returns metadata for all stored snapshots. Snapshots whose
// value cannot be read are skipped.
func (s *Store) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	ids, err := s.client.SMembers(ctx, KeyAllSnapshots).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot IDs: %w", err)
	}

	infos := make([]domain.SnapshotInfo, 0, len(ids))
	for _, id := range ids {
		env, err := s.loadEnvelope(ctx, id)
		if err != nil {
			continue
		}
		infos = append(infos, env.Info)
	}
	return infos, nil
}

// LoadSnapshot fetches one snapshot's document.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (*domain.Document, error) {
	env, err := s.loadEnvelope(ctx, id)
	if err != nil {
		return nil, err
	}
	return env.Document, nil
}

func (s *Store) loadEnvelope(ctx context.Context, id string) (*snapshotEnvelope, error) {
	data, err := s.client.Get(ctx, SnapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, remote.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", id, err)
	}
	return &env, nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
