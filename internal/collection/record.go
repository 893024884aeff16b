package collection

import (
	"github.com/google/uuid"
)

// MediaKind tags a record with the type of asset it references. It is used
// for filtering and serving, never for invariant enforcement.
type MediaKind string

const (
	KindPhoto MediaKind = "photo"
	KindVideo MediaKind = "video"
	KindLogo  MediaKind = "logo"
)

// Record is one attached asset inside an owner's collection. ID stays
// uuid.Nil until the gateway has persisted the record.
type Record struct {
	ID         uuid.UUID `json:"id"`
	StorageKey string    `json:"storage_key"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Kind       MediaKind `json:"kind"`
	SortKey    int       `json:"sort_key"`
	Primary    bool      `json:"primary"`
}

// Is reports whether other is the same record. Equality is identity-based:
// pointer identity before an ID has been assigned, ID equality after. Two
// unpersisted records with identical fields are still distinct.
func (r *Record) Is(other *Record) bool {
	if r == other {
		return r != nil
	}
	if r == nil || other == nil {
		return false
	}
	return r.ID != uuid.Nil && r.ID == other.ID
}
