package redis

const (
	// KeyDocument is the key holding the live document.
	KeyDocument = "markdrive:document"
	// KeyPrefixSnapshot is the prefix for snapshot keys.
	KeyPrefixSnapshot = "markdrive:snapshot:"
	// KeyAllSnapshots is the key for the set of all snapshot IDs.
	KeyAllSnapshots = "markdrive:snapshots:all"
)

// SnapshotKey returns the Redis key for a snapshot by ID.
func SnapshotKey(id string) string {
	return KeyPrefixSnapshot + id
}
