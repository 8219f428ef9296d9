// Package remote defines the contract with the remote durable store the
// sync coordinator reconciles against. The store holds one live document
// plus immutable backup snapshots.
package remote

import (
	"context"
	"errors"

	"github.com/ysohn/markdrive/internal/domain"
)

// ErrNotFound is returned when the requested document or snapshot does not
// exist in the remote store.
var ErrNotFound = errors.New("remote: not found")

// Store is the remote durable store.
type Store interface {
	// LoadDocument fetches the live document, or ErrNotFound if the
	// remote store was never written.
	LoadDocument(ctx context.Context) (*domain.Document, error)

	// SaveDocument replaces the live document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveSnapshot stores an immutable backup snapshot.
	SaveSnapshot(ctx context.Context, info domain.SnapshotInfo, doc *domain.Document) error

	// ListSnapshots returns metadata of all snapshots, unordered.
	ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error)

	// LoadSnapshot fetches one snapshot's document, or ErrNotFound.
	LoadSnapshot(ctx context.Context, id string) (*domain.Document, error)

	// Ping reports whether the remote store is reachable.
	Ping(ctx context.Context) error
}
