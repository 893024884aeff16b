package collection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
)

// FileStore stores and deletes the physical bytes behind a record. Storage
// keys are opaque to the engine.
type FileStore interface {
	Store(ctx context.Context, r io.Reader, suggestedName, contentType string) (string, error)
	Delete(ctx context.Context, storageKey string) error
}

// Gateway loads and saves an owner together with its attachment rows.
//
// Save is contractually obligated to create rows for new records, update
// existing ones, and delete rows the collection no longer references — the
// engine removes a record from the in-memory collection and relies on Save to
// translate "no longer referenced" into "deleted row". DeleteOwner must
// cascade to every attachment row of the owner.
type Gateway interface {
	Load(ctx context.Context, ownerID uuid.UUID) (*OwnedCollection, error)
	Save(ctx context.Context, col *OwnedCollection) (*OwnedCollection, error)
	DeleteOwner(ctx context.Context, ownerID uuid.UUID) error
}

// Upload describes one asset to attach.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Kind        MediaKind
}

// Mutator is the transactional envelope around OwnedCollection operations.
// File store writes happen before the single Gateway.Save so a partial
// failure has a well-defined rollback point; compensation is a delete, never
// a retry. All operations are synchronous and single-attempt.
type Mutator struct {
	files   FileStore
	gateway Gateway
}

func NewMutator(files FileStore, gateway Gateway) *Mutator {
	return &Mutator{files: files, gateway: gateway}
}

// Attach stores each upload and appends it to the owner's collection, then
// persists the owner once. If any store call fails, every byte written in
// this call is rolled back and nothing is persisted. If the save fails after
// the writes succeeded, the writes are rolled back as well.
func (m *Mutator) Attach(ctx context.Context, ownerID uuid.UUID, uploads []Upload) (*OwnedCollection, error) {
	col, err := m.gateway.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stored := make([]string, 0, len(uploads))
	rollback := func() {
		for _, key := range stored {
			if derr := m.files.Delete(ctx, key); derr != nil {
				log.Printf("WARN: failed to roll back stored object %s: %v", key, derr)
			}
		}
	}

	for _, up := range uploads {
		key, serr := m.files.Store(ctx, bytes.NewReader(up.Data), up.Filename, up.ContentType)
		if serr != nil {
			rollback()
			return nil, fmt.Errorf("%w: store %s: %v", ErrStorageFailure, up.Filename, serr)
		}
		stored = append(stored, key)
		col.Add(&Record{
			StorageKey: key,
			Filename:   up.Filename,
			MimeType:   up.ContentType,
			SizeBytes:  int64(len(up.Data)),
			Kind:       up.Kind,
		})
	}

	saved, err := m.gateway.Save(ctx, col)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return saved, nil
}

// Detach removes one record and persists the owner before touching bytes.
// The logical removal is durable first; a byte-delete failure afterwards is a
// collected warning, not a rollback — re-attaching would surprise the caller
// more than a dangling object does.
func (m *Mutator) Detach(ctx context.Context, ownerID, recordID uuid.UUID) (*OwnedCollection, []CleanupWarning, error) {
	col, err := m.gateway.Load(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	rec := col.Find(recordID)
	if rec == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
	}
	key := rec.StorageKey
	col.Remove(rec)

	saved, err := m.gateway.Save(ctx, col)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	var warnings []CleanupWarning
	if derr := m.files.Delete(ctx, key); derr != nil {
		log.Printf("WARN: detached %s but could not delete object %s: %v", recordID, key, derr)
		warnings = append(warnings, CleanupWarning{StorageKey: key, Reason: derr.Error()})
	}
	return saved, warnings, nil
}

// Promote makes the given record the cover item and persists the owner.
// Returns ErrNotOwned when the record is not in the owner's collection.
func (m *Mutator) Promote(ctx context.Context, ownerID, recordID uuid.UUID) (*OwnedCollection, error) {
	col, err := m.gateway.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := col.SetPrimaryByID(recordID); err != nil {
		return nil, err
	}
	saved, err := m.gateway.Save(ctx, col)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return saved, nil
}

// Reorder rewrites the owner's attachment order and persists it.
func (m *Mutator) Reorder(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (*OwnedCollection, error) {
	col, err := m.gateway.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	col.Reorder(ids)
	saved, err := m.gateway.Save(ctx, col)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return saved, nil
}

// Purge detaches every attachment of the owner, deletes the bytes
// best-effort, and persists the now-empty owner. Individual byte-delete
// failures are collected and reported, never fatal.
func (m *Mutator) Purge(ctx context.Context, ownerID uuid.UUID) ([]CleanupWarning, error) {
	col, err := m.gateway.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	detached := col.Clear()

	var warnings []CleanupWarning
	for _, r := range detached {
		if derr := m.files.Delete(ctx, r.StorageKey); derr != nil {
			log.Printf("WARN: purge of %s could not delete object %s: %v", ownerID, r.StorageKey, derr)
			warnings = append(warnings, CleanupWarning{StorageKey: r.StorageKey, Reason: derr.Error()})
		}
	}

	if _, err := m.gateway.Save(ctx, col); err != nil {
		return warnings, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return warnings, nil
}

// Destroy deletes the owner entirely. The gateway cascades the attachment
// rows; byte deletion runs afterwards, best-effort, one call per former
// member.
func (m *Mutator) Destroy(ctx context.Context, ownerID uuid.UUID) ([]CleanupWarning, error) {
	col, err := m.gateway.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	members := col.Records()

	if err := m.gateway.DeleteOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	var warnings []CleanupWarning
	for _, r := range members {
		if derr := m.files.Delete(ctx, r.StorageKey); derr != nil {
			log.Printf("WARN: deleted owner %s but could not delete object %s: %v", ownerID, r.StorageKey, derr)
			warnings = append(warnings, CleanupWarning{StorageKey: r.StorageKey, Reason: derr.Error()})
		}
	}
	return warnings, nil
}
