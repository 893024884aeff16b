package collection

import (
	"testing"

	"github.com/google/uuid"
)

func newRecord(name string) *Record {
	return &Record{
		ID:         uuid.New(),
		StorageKey: "gallery/" + name,
		Filename:   name,
		MimeType:   "image/jpeg",
		Kind:       KindPhoto,
	}
}

// countPrimaries is the invariant check used throughout: non-empty
// collections carry exactly one primary, empty ones carry none.
func countPrimaries(c *OwnedCollection) int {
	n := 0
	for _, r := range c.Records() {
		if r.Primary {
			n++
		}
	}
	return n
}

func assertInvariant(t *testing.T, c *OwnedCollection) {
	t.Helper()
	want := 0
	if c.Len() > 0 {
		want = 1
	}
	if got := countPrimaries(c); got != want {
		t.Fatalf("expected %d primary, got %d (len=%d)", want, got, c.Len())
	}
}

func TestAdd_FirstRecordBecomesPrimary(t *testing.T) {
	c := New(uuid.New(), nil)
	a := newRecord("a.jpg")
	c.Add(a)

	if !a.Primary {
		t.Fatal("first record added to an empty collection must become primary")
	}
	assertInvariant(t, c)
}

func TestAdd_LaterRecordsStayNonPrimary(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b := newRecord("a.jpg"), newRecord("b.jpg")
	c.Add(a)
	c.Add(b)

	if b.Primary {
		t.Fatal("second record must not be primary")
	}
	if !a.Primary {
		t.Fatal("first record must stay primary")
	}
	if b.SortKey <= a.SortKey {
		t.Fatalf("append must sort after existing tail: a=%d b=%d", a.SortKey, b.SortKey)
	}
	assertInvariant(t, c)
}

func TestAdd_IncomingPrimaryDemotesOthers(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b := newRecord("a.jpg"), newRecord("b.jpg")
	c.Add(a)
	b.Primary = true
	c.Add(b)

	if a.Primary {
		t.Fatal("existing primary must be demoted by an incoming primary")
	}
	if !b.Primary {
		t.Fatal("incoming primary flag must be honored")
	}
	assertInvariant(t, c)
}

func TestAddAll_OnlyFirstGetsEmptyPromotion(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b, d := newRecord("a.jpg"), newRecord("b.jpg"), newRecord("c.jpg")
	c.AddAll([]*Record{a, b, d})

	if !a.Primary || b.Primary || d.Primary {
		t.Fatalf("only the first of a batch into an empty collection becomes primary: a=%v b=%v c=%v",
			a.Primary, b.Primary, d.Primary)
	}
	assertInvariant(t, c)
}

func TestRemove_PrimaryPromotesFirstRemaining(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b, d := newRecord("a.jpg"), newRecord("b.jpg"), newRecord("c.jpg")
	c.AddAll([]*Record{a, b, d})

	if !c.Remove(a) {
		t.Fatal("remove of a member must report true")
	}
	got := c.Records()
	if len(got) != 2 || !got[0].Is(b) || !got[1].Is(d) {
		t.Fatalf("expected [b c] after removing a, got %d records", len(got))
	}
	if !b.Primary {
		t.Fatal("first remaining record must be promoted when the primary is removed")
	}
	assertInvariant(t, c)
}

func TestRemove_NonPrimaryLeavesPrimaryUntouched(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b, d := newRecord("a.jpg"), newRecord("b.jpg"), newRecord("c.jpg")
	c.AddAll([]*Record{a, b, d})

	c.Remove(b)
	if !a.Primary {
		t.Fatal("removing a non-primary must not move the primary flag")
	}
	assertInvariant(t, c)
}

func TestRemove_LastRecordLeavesNoPrimary(t *testing.T) {
	c := New(uuid.New(), nil)
	a := newRecord("a.jpg")
	c.Add(a)
	c.Remove(a)

	if c.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", c.Len())
	}
	if a.Primary {
		t.Fatal("a detached record must not keep its primary flag")
	}
	assertInvariant(t, c)
}

func TestRemove_DoesNotRenumberSurvivors(t *testing.T) {
	owner := uuid.New()
	a := &Record{ID: uuid.New(), SortKey: 0, Primary: true}
	b := &Record{ID: uuid.New(), SortKey: 3}
	d := &Record{ID: uuid.New(), SortKey: 7}
	c := New(owner, []*Record{a, b, d})

	c.Remove(b)
	got := c.Records()
	if got[0].SortKey != 0 || got[1].SortKey != 7 {
		t.Fatalf("remove must leave gaps alone, got keys %d,%d", got[0].SortKey, got[1].SortKey)
	}
}

func TestRemoveByID_MissingReturnsFalse(t *testing.T) {
	c := New(uuid.New(), nil)
	c.Add(newRecord("a.jpg"))

	if c.RemoveByID(uuid.New()) {
		t.Fatal("removing an unknown id must return false, not panic or error")
	}
	if c.Len() != 1 {
		t.Fatalf("collection must be unchanged, got len %d", c.Len())
	}
}

func TestSetPrimary_IsExclusive(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b, d := newRecord("a.jpg"), newRecord("b.jpg"), newRecord("c.jpg")
	c.AddAll([]*Record{a, b, d})

	if err := c.SetPrimary(b); err != nil {
		t.Fatalf("set primary on a member: %v", err)
	}
	if a.Primary || !b.Primary || d.Primary {
		t.Fatalf("exactly b must be primary: a=%v b=%v c=%v", a.Primary, b.Primary, d.Primary)
	}
	assertInvariant(t, c)
}

func TestSetPrimary_Idempotent(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b := newRecord("a.jpg"), newRecord("b.jpg")
	c.AddAll([]*Record{a, b})

	if err := c.SetPrimaryByID(b.ID); err != nil {
		t.Fatalf("first promote: %v", err)
	}
	if err := c.SetPrimaryByID(b.ID); err != nil {
		t.Fatalf("second promote: %v", err)
	}
	if !b.Primary || a.Primary {
		t.Fatal("promoting twice must equal promoting once")
	}
	assertInvariant(t, c)
}

func TestSetPrimary_RejectsNonMember(t *testing.T) {
	c := New(uuid.New(), nil)
	c.Add(newRecord("a.jpg"))
	stranger := newRecord("x.jpg")

	if err := c.SetPrimary(stranger); err != ErrNotOwned {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	assertInvariant(t, c)
}

func TestPrimary_FallsBackToFirstForLegacyRows(t *testing.T) {
	// Rows migrated from before the invariant can carry no flag at all.
	a := &Record{ID: uuid.New(), SortKey: 1}
	b := &Record{ID: uuid.New(), SortKey: 2}
	c := New(uuid.New(), []*Record{b, a})

	p := c.Primary()
	if p == nil || !p.Is(a) {
		t.Fatal("with no flagged member the first in sort order must stand in")
	}
}

func TestPrimary_EmptyCollectionIsNil(t *testing.T) {
	c := New(uuid.New(), nil)
	if c.Primary() != nil {
		t.Fatal("empty collection has no primary")
	}
}

func TestReorder_PermutesAndKeepsPrimary(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b, d := newRecord("a.jpg"), newRecord("b.jpg"), newRecord("c.jpg")
	c.AddAll([]*Record{a, b, d})

	c.Reorder([]uuid.UUID{d.ID, a.ID, b.ID})

	got := c.Records()
	if !got[0].Is(d) || !got[1].Is(a) || !got[2].Is(b) {
		t.Fatal("expected order [c a b]")
	}
	for i, r := range got {
		if r.SortKey != i {
			t.Fatalf("sort keys must match new positions, got %d at %d", r.SortKey, i)
		}
	}
	if !a.Primary {
		t.Fatal("reorder must not touch the primary flag")
	}
	assertInvariant(t, c)
}

func TestReorder_UnmentionedMembersKeepRelativeOrderAtEnd(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b, d, e := newRecord("a.jpg"), newRecord("b.jpg"), newRecord("c.jpg"), newRecord("d.jpg")
	c.AddAll([]*Record{a, b, d, e})

	c.Reorder([]uuid.UUID{e.ID})

	got := c.Records()
	if !got[0].Is(e) || !got[1].Is(a) || !got[2].Is(b) || !got[3].Is(d) {
		t.Fatal("expected [d a b c]: mentioned first, the rest in old relative order")
	}
}

func TestReorder_IgnoresUnknownAndDuplicateIDs(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b := newRecord("a.jpg"), newRecord("b.jpg")
	c.AddAll([]*Record{a, b})

	c.Reorder([]uuid.UUID{uuid.New(), b.ID, b.ID, a.ID})

	got := c.Records()
	if len(got) != 2 || !got[0].Is(b) || !got[1].Is(a) {
		t.Fatalf("expected [b a], got %d records", len(got))
	}
}

func TestClear_DetachesEverything(t *testing.T) {
	c := New(uuid.New(), nil)
	a, b := newRecord("a.jpg"), newRecord("b.jpg")
	c.AddAll([]*Record{a, b})

	detached := c.Clear()
	if len(detached) != 2 {
		t.Fatalf("expected 2 detached records, got %d", len(detached))
	}
	if c.Len() != 0 {
		t.Fatal("collection must be empty after clear")
	}
	if a.Primary || b.Primary {
		t.Fatal("detached records must not keep primary flags")
	}
	assertInvariant(t, c)
}

func TestRecordIs_IdentityNotValue(t *testing.T) {
	fresh1 := &Record{Filename: "same.jpg"}
	fresh2 := &Record{Filename: "same.jpg"}
	if fresh1.Is(fresh2) {
		t.Fatal("two unpersisted records with equal fields are distinct")
	}
	if !fresh1.Is(fresh1) {
		t.Fatal("a record is itself")
	}

	id := uuid.New()
	p1 := &Record{ID: id}
	p2 := &Record{ID: id}
	if !p1.Is(p2) {
		t.Fatal("persisted records with the same id are the same record")
	}
}

func TestNew_SortsStableBySortKey(t *testing.T) {
	owner := uuid.New()
	// b and c share a sort key; their loaded order must survive.
	a := &Record{ID: uuid.New(), SortKey: 5}
	b := &Record{ID: uuid.New(), SortKey: 2}
	d := &Record{ID: uuid.New(), SortKey: 2}
	c := New(owner, []*Record{a, b, d})

	got := c.Records()
	if !got[0].Is(b) || !got[1].Is(d) || !got[2].Is(a) {
		t.Fatal("expected stable sort by sort key: [b c a]")
	}
}
