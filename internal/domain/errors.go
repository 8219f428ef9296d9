package domain

import "fmt"

// ValidationError reports malformed input: a required field missing or empty.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to a nonexistent entity.
type NotFoundError struct {
	Kind string // "bookmark" | "folder" | "tag" | "snapshot"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ConflictError reports a duplicate unique key, e.g. a tag name.
type ConflictError struct {
	Kind string
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.Name)
}

// CycleError reports a folder parent update that would make a folder its
// own ancestor.
type CycleError struct {
	FolderID string
	ParentID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("folder %s cannot have %s as parent: cycle", e.FolderID, e.ParentID)
}

// AccessDeniedError reports an attempt to read a locked folder's contents
// without a successful password check in the current session. It carries
// nothing beyond the folder id and the fact that it is locked.
type AccessDeniedError struct {
	FolderID string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("folder %s is locked", e.FolderID)
}

// SyncInProgressError reports a sync request arriving while another sync
// is running. Such requests are rejected, never queued.
type SyncInProgressError struct{}

func (e *SyncInProgressError) Error() string {
	return "sync already in progress"
}

// SyncConflictError reports an ambiguous sync tie: identical modification
// timestamps with differing content, with the tie-break policy set to fail.
type SyncConflictError struct {
	Kind string
	ID   string
}

func (e *SyncConflictError) Error() string {
	return fmt.Sprintf("sync conflict on %s %s: equal timestamps, different content", e.Kind, e.ID)
}

// SyncError is the terminal error surfaced after retry exhaustion.
type SyncError struct {
	Attempts int
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// RestoreError reports a snapshot that is corrupt or could not be applied.
// A failed restore never partially applies.
type RestoreError struct {
	SnapshotID string
	Reason     string
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore of snapshot %s failed: %s", e.SnapshotID, e.Reason)
}
