package collection

import (
	"sort"

	"github.com/google/uuid"
)

// OwnedCollection holds the ordered attachment list for one owner and is the
// only place allowed to flip primary flags. When the collection is non-empty,
// exactly one member is primary; when empty, none is.
//
// Not safe for concurrent use: the surrounding request/transaction boundary
// serializes writers per owner.
type OwnedCollection struct {
	ownerID uuid.UUID
	records []*Record
}

// New builds a collection from loaded records, ordered by sort key. The sort
// is stable so rows with equal keys keep their loaded order.
func New(ownerID uuid.UUID, records []*Record) *OwnedCollection {
	c := &OwnedCollection{
		ownerID: ownerID,
		records: append([]*Record(nil), records...),
	}
	sort.SliceStable(c.records, func(i, j int) bool {
		return c.records[i].SortKey < c.records[j].SortKey
	})
	return c
}

func (c *OwnedCollection) OwnerID() uuid.UUID { return c.ownerID }

func (c *OwnedCollection) Len() int { return len(c.records) }

// Records returns the members in collection order.
func (c *OwnedCollection) Records() []*Record {
	return append([]*Record(nil), c.records...)
}

// Find returns the member with the given id, or nil. Unpersisted members
// (id still uuid.Nil) are never addressable by id.
func (c *OwnedCollection) Find(id uuid.UUID) *Record {
	if id == uuid.Nil {
		return nil
	}
	for _, r := range c.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (c *OwnedCollection) indexOf(r *Record) int {
	for i, m := range c.records {
		if m.Is(r) {
			return i
		}
	}
	return -1
}

// Add appends a record to the end of the collection. The first record added
// to an empty collection becomes primary; this is a business rule, kept as an
// explicit branch rather than a field default so it stays visible. A record
// arriving with Primary already set demotes every existing member, so the
// collection can never hold two primaries.
func (c *OwnedCollection) Add(r *Record) {
	if len(c.records) == 0 {
		r.Primary = true
		c.records = append(c.records, r)
		return
	}
	if last := c.records[len(c.records)-1]; r.SortKey <= last.SortKey {
		r.SortKey = last.SortKey + 1
	}
	if r.Primary {
		for _, m := range c.records {
			m.Primary = false
		}
	}
	c.records = append(c.records, r)
}

// AddAll appends records in the given order. Only the first append can hit
// the empty-collection promotion.
func (c *OwnedCollection) AddAll(records []*Record) {
	for _, r := range records {
		c.Add(r)
	}
}

// Remove removes a member by identity and reports whether it was present.
// When the primary leaves a non-empty remnant, the current first element is
// promoted. Ties between equal sort keys are broken by list position, never
// by timestamp, so promotion is deterministic. Surviving sort keys are not
// renumbered; gaps are legal.
func (c *OwnedCollection) Remove(r *Record) bool {
	i := c.indexOf(r)
	if i < 0 {
		return false
	}
	wasPrimary := c.records[i].Primary
	c.records[i].Primary = false
	c.records = append(c.records[:i], c.records[i+1:]...)
	if wasPrimary && len(c.records) > 0 {
		c.records[0].Primary = true
	}
	return true
}

// RemoveByID removes the member with the given id. Returns false, rather
// than an error, when no member matches.
func (c *OwnedCollection) RemoveByID(id uuid.UUID) bool {
	r := c.Find(id)
	if r == nil {
		return false
	}
	return c.Remove(r)
}

// SetPrimary marks r as the cover item. Every other member is cleared in the
// same pass, so two primaries are structurally impossible. Idempotent when r
// is already primary. Returns ErrNotOwned when r is not a member.
func (c *OwnedCollection) SetPrimary(r *Record) error {
	if c.indexOf(r) < 0 {
		return ErrNotOwned
	}
	for _, m := range c.records {
		m.Primary = m.Is(r)
	}
	return nil
}

// SetPrimaryByID is SetPrimary looked up by id.
func (c *OwnedCollection) SetPrimaryByID(id uuid.UUID) error {
	r := c.Find(id)
	if r == nil {
		return ErrNotOwned
	}
	return c.SetPrimary(r)
}

// Primary returns the member flagged primary. Rows migrated from before the
// invariant may carry no flag at all; the first member stands in for those.
// Nil when the collection is empty.
func (c *OwnedCollection) Primary() *Record {
	for _, r := range c.records {
		if r.Primary {
			return r
		}
	}
	if len(c.records) > 0 {
		return c.records[0]
	}
	return nil
}

// Reorder rewrites the collection order to match ids. Members not mentioned
// keep their current relative order, appended at the end. Sort keys are
// rewritten to the new positions. The primary flag is not touched.
func (c *OwnedCollection) Reorder(ids []uuid.UUID) {
	placed := make(map[uuid.UUID]bool, len(ids))
	next := make([]*Record, 0, len(c.records))
	for _, id := range ids {
		if placed[id] {
			continue
		}
		if r := c.Find(id); r != nil {
			placed[id] = true
			next = append(next, r)
		}
	}
	for _, r := range c.records {
		if r.ID == uuid.Nil || !placed[r.ID] {
			next = append(next, r)
		}
	}
	for i, r := range next {
		r.SortKey = i
	}
	c.records = next
}

// Clear detaches every member and returns them in former order. Physical
// bytes are the caller's responsibility.
func (c *OwnedCollection) Clear() []*Record {
	detached := c.records
	for _, r := range detached {
		r.Primary = false
	}
	c.records = nil
	return detached
}
