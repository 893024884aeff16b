package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
)

// fakeFileStore keeps bytes in memory and can be told to fail the Nth store
// or the delete of selected keys.
type fakeFileStore struct {
	objects     map[string][]byte
	storeCalls  int
	failStoreAt int // 1-based; 0 means never fail
	failDeletes map[string]bool
	deleteCalls []string
	nextKey     int
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{objects: map[string][]byte{}, failDeletes: map[string]bool{}}
}

func (f *fakeFileStore) Store(ctx context.Context, r io.Reader, suggestedName, contentType string) (string, error) {
	f.storeCalls++
	if f.failStoreAt > 0 && f.storeCalls >= f.failStoreAt {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.nextKey++
	key := fmt.Sprintf("media/%d-%s", f.nextKey, suggestedName)
	f.objects[key] = data
	return key, nil
}

func (f *fakeFileStore) Delete(ctx context.Context, storageKey string) error {
	f.deleteCalls = append(f.deleteCalls, storageKey)
	if f.failDeletes[storageKey] {
		return errors.New("object locked")
	}
	delete(f.objects, storageKey)
	return nil
}

// fakeGateway persists collections in memory, assigning ids on save the way
// the real gateway does. Load hands out copies so in-flight mutations never
// leak into "persisted" state.
type fakeGateway struct {
	owners   map[uuid.UUID][]*Record
	failSave bool
}

func newFakeGateway(ownerIDs ...uuid.UUID) *fakeGateway {
	g := &fakeGateway{owners: map[uuid.UUID][]*Record{}}
	for _, id := range ownerIDs {
		g.owners[id] = nil
	}
	return g
}

func copyRecords(records []*Record) []*Record {
	out := make([]*Record, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}

func (g *fakeGateway) Load(ctx context.Context, ownerID uuid.UUID) (*OwnedCollection, error) {
	rows, ok := g.owners[ownerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOwnerNotFound, ownerID)
	}
	return New(ownerID, copyRecords(rows)), nil
}

func (g *fakeGateway) Save(ctx context.Context, col *OwnedCollection) (*OwnedCollection, error) {
	if g.failSave {
		return nil, errors.New("connection reset")
	}
	if _, ok := g.owners[col.OwnerID()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrOwnerNotFound, col.OwnerID())
	}
	records := col.Records()
	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
	}
	g.owners[col.OwnerID()] = copyRecords(records)
	return g.Load(ctx, col.OwnerID())
}

func (g *fakeGateway) DeleteOwner(ctx context.Context, ownerID uuid.UUID) error {
	if _, ok := g.owners[ownerID]; !ok {
		return fmt.Errorf("%w: %s", ErrOwnerNotFound, ownerID)
	}
	delete(g.owners, ownerID)
	return nil
}

func upload(name string) Upload {
	return Upload{Filename: name, ContentType: "image/jpeg", Data: []byte(name + "-bytes"), Kind: KindPhoto}
}

func TestAttach_FirstUploadBecomesPrimary(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)

	col, err := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg")})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	got := col.Records()
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !got[0].Primary || got[1].Primary {
		t.Fatal("exactly the first upload into an empty owner must be primary")
	}
	for _, r := range got {
		if r.ID == uuid.Nil {
			t.Fatal("save must assign ids")
		}
	}
	if len(files.objects) != 2 {
		t.Fatalf("expected 2 stored objects, got %d", len(files.objects))
	}
}

func TestAttach_UnknownOwner(t *testing.T) {
	m := NewMutator(newFakeFileStore(), newFakeGateway())

	_, err := m.Attach(context.Background(), uuid.New(), []Upload{upload("a.jpg")})
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestAttach_StorageFailureRollsBackEarlierWrites(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	files.failStoreAt = 2
	m := NewMutator(files, gw)

	_, err := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg")})
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}
	if len(files.objects) != 0 {
		t.Fatalf("expected no residual bytes, got %d objects", len(files.objects))
	}
	persisted, _ := gw.Load(context.Background(), owner)
	if persisted.Len() != 0 {
		t.Fatalf("persisted collection must be unchanged, got %d records", persisted.Len())
	}
}

func TestAttach_PersistenceFailureRollsBackAllWrites(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	gw.failSave = true
	m := NewMutator(files, gw)

	_, err := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg")})
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if len(files.objects) != 0 {
		t.Fatalf("expected compensating deletes for all stored bytes, got %d objects", len(files.objects))
	}
}

func TestDetach_RemovesRowThenBytes(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)

	col, err := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg")})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	victim := col.Records()[1]

	after, warnings, err := m.Detach(context.Background(), owner, victim.ID)
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if after.Len() != 1 {
		t.Fatalf("expected 1 record left, got %d", after.Len())
	}
	if _, ok := files.objects[victim.StorageKey]; ok {
		t.Fatal("detached object bytes must be deleted")
	}
}

func TestDetach_PrimaryRemovalPromotesSuccessor(t *testing.T) {
	owner := uuid.New()
	m := NewMutator(newFakeFileStore(), newFakeGateway(owner))

	col, _ := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg"), upload("c.jpg")})
	primary := col.Records()[0]

	after, _, err := m.Detach(context.Background(), owner, primary.ID)
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	got := after.Records()
	if len(got) != 2 || !got[0].Primary || got[1].Primary {
		t.Fatal("the new first record must carry the primary flag after the cover is detached")
	}
}

func TestDetach_UnknownRecord(t *testing.T) {
	owner := uuid.New()
	m := NewMutator(newFakeFileStore(), newFakeGateway(owner))

	_, _, err := m.Detach(context.Background(), owner, uuid.New())
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDetach_ByteDeleteFailureIsWarningNotError(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)

	col, _ := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg")})
	victim := col.Records()[1]
	files.failDeletes[victim.StorageKey] = true

	after, warnings, err := m.Detach(context.Background(), owner, victim.ID)
	if err != nil {
		t.Fatalf("logical removal is durable, cleanup failure must not fail the call: %v", err)
	}
	if len(warnings) != 1 || warnings[0].StorageKey != victim.StorageKey {
		t.Fatalf("expected one cleanup warning for %s, got %v", victim.StorageKey, warnings)
	}
	if after.Len() != 1 {
		t.Fatalf("row removal must stick, got %d records", after.Len())
	}
}

func TestPromote_ExclusiveAndPersisted(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)

	col, _ := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg"), upload("c.jpg")})
	b := col.Records()[1]

	after, err := m.Promote(context.Background(), owner, b.ID)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	for _, r := range after.Records() {
		if r.ID == b.ID && !r.Primary {
			t.Fatal("promoted record must be primary")
		}
		if r.ID != b.ID && r.Primary {
			t.Fatal("promotion must clear every other member")
		}
	}

	// Same state after promoting twice.
	again, err := m.Promote(context.Background(), owner, b.ID)
	if err != nil {
		t.Fatalf("second promote: %v", err)
	}
	if p := again.Primary(); p == nil || p.ID != b.ID {
		t.Fatal("promote must be idempotent")
	}
}

func TestPromote_ForeignRecordRejectedWithoutStateChange(t *testing.T) {
	ownerX, ownerY := uuid.New(), uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(ownerX, ownerY)
	m := NewMutator(files, gw)

	colX, _ := m.Attach(context.Background(), ownerX, []Upload{upload("x.jpg")})
	colY, _ := m.Attach(context.Background(), ownerY, []Upload{upload("y1.jpg"), upload("y2.jpg")})
	foreign := colY.Records()[1]

	_, err := m.Promote(context.Background(), ownerX, foreign.ID)
	if !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}

	// Neither owner's persisted collection moved.
	afterX, _ := gw.Load(context.Background(), ownerX)
	afterY, _ := gw.Load(context.Background(), ownerY)
	if p := afterX.Primary(); p == nil || p.ID != colX.Records()[0].ID {
		t.Fatal("ownerX collection must be unchanged")
	}
	if p := afterY.Primary(); p == nil || p.ID != colY.Records()[0].ID {
		t.Fatal("ownerY collection must be unchanged")
	}
}

func TestReorder_PersistsNewOrderAndKeepsPrimary(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)

	col, _ := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg"), upload("c.jpg")})
	ids := col.Records()
	a, b, c := ids[0], ids[1], ids[2]

	after, err := m.Reorder(context.Background(), owner, []uuid.UUID{c.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got := after.Records()
	if got[0].ID != c.ID || got[1].ID != a.ID || got[2].ID != b.ID {
		t.Fatal("expected persisted order [c a b]")
	}
	if p := after.Primary(); p == nil || p.ID != a.ID {
		t.Fatal("reorder must not move the primary flag")
	}

	// Reload to prove the order survived persistence, not just the snapshot.
	reloaded, _ := gw.Load(context.Background(), owner)
	rel := reloaded.Records()
	if rel[0].ID != c.ID || rel[1].ID != a.ID || rel[2].ID != b.ID {
		t.Fatal("reloaded order must match the reorder")
	}
}

func TestPurge_DeletesBytesBestEffortAndEmptiesOwner(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)

	col, _ := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg"), upload("c.jpg")})
	files.failDeletes[col.Records()[1].StorageKey] = true

	warnings, err := m.Purge(context.Background(), owner)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 collected warning, got %d", len(warnings))
	}
	after, _ := gw.Load(context.Background(), owner)
	if after.Len() != 0 {
		t.Fatalf("owner must be empty after purge, got %d", after.Len())
	}
}

func TestDestroy_CascadesRowsAndDeletesEachObject(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)

	if _, err := m.Attach(context.Background(), owner, []Upload{upload("a.jpg"), upload("b.jpg"), upload("c.jpg")}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	files.deleteCalls = nil

	warnings, err := m.Destroy(context.Background(), owner)
	if err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if _, err := gw.Load(context.Background(), owner); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatal("owner rows must be gone after destroy")
	}
	if len(files.deleteCalls) != 3 {
		t.Fatalf("expected 3 byte deletes, one per former attachment, got %d", len(files.deleteCalls))
	}
	if len(files.objects) != 0 {
		t.Fatalf("expected no residual objects, got %d", len(files.objects))
	}
}

func TestInvariant_HoldsAfterEveryOperation(t *testing.T) {
	owner := uuid.New()
	files, gw := newFakeFileStore(), newFakeGateway(owner)
	m := NewMutator(files, gw)
	ctx := context.Background()

	check := func(step string) {
		t.Helper()
		col, err := gw.Load(ctx, owner)
		if err != nil {
			t.Fatalf("%s: load: %v", step, err)
		}
		want := 0
		if col.Len() > 0 {
			want = 1
		}
		if got := countPrimaries(col); got != want {
			t.Fatalf("%s: expected %d primary, got %d", step, want, got)
		}
	}

	col, err := m.Attach(ctx, owner, []Upload{upload("a.jpg"), upload("b.jpg"), upload("c.jpg")})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	check("attach")

	records := col.Records()
	if _, err := m.Promote(ctx, owner, records[2].ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	check("promote")

	if _, err := m.Reorder(ctx, owner, []uuid.UUID{records[1].ID, records[2].ID, records[0].ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	check("reorder")

	if _, _, err := m.Detach(ctx, owner, records[2].ID); err != nil {
		t.Fatalf("detach primary: %v", err)
	}
	check("detach primary")

	if _, _, err := m.Detach(ctx, owner, records[0].ID); err != nil {
		t.Fatalf("detach non-primary: %v", err)
	}
	check("detach non-primary")

	if _, err := m.Purge(ctx, owner); err != nil {
		t.Fatalf("purge: %v", err)
	}
	check("purge")
}
