package collection

import "errors"

var (
	// ErrOwnerNotFound means the owner id does not exist.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrRecordNotFound means the referenced attachment id is not in the
	// owner's collection.
	ErrRecordNotFound = errors.New("attachment not found")

	// ErrNotOwned means the record is not a member of the collection being
	// operated on. This is a caller bug or a stale reference and is never
	// silently corrected.
	ErrNotOwned = errors.New("attachment does not belong to this owner")

	// ErrStorageFailure means a file store write failed during attach. All
	// bytes written in the same call have been rolled back.
	ErrStorageFailure = errors.New("file store operation failed")

	// ErrPersistenceFailure means the gateway save failed after file store
	// writes succeeded. Those writes have been rolled back.
	ErrPersistenceFailure = errors.New("failed to persist owner")
)

// CleanupWarning reports a non-fatal failure to delete now-orphaned bytes
// after a logically successful detach or purge. The logical state is already
// durable, so the operation does not fail.
type CleanupWarning struct {
	StorageKey string `json:"storage_key"`
	Reason     string `json:"reason"`
}
