package models

import (
	"time"

	"github.com/google/uuid"
)

type PhotoStatus string

const (
	PhotoStatusPending    PhotoStatus = "pending"
	PhotoStatusProcessing PhotoStatus = "processing"
	PhotoStatusCompleted  PhotoStatus = "completed"
	PhotoStatusFailed     PhotoStatus = "failed"
)

// Album is a named collection of photos. Slug is the stable external-facing
// identifier used in URLs; ID is internal. DeletedAt marks soft deletion —
// a deleted album is not resolvable through any lookup.
type Album struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Slug      string     `json:"slug" db:"slug"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Photo is one uploaded image in exactly one album. ContentHash is present
// only when the uploader supplied or computed one. A photo with non-nil
// DeletedAt never appears in duplicate matches or search results.
type Photo struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	AlbumID     uuid.UUID   `json:"album_id" db:"album_id"`
	Filename    string      `json:"filename" db:"filename"`
	SizeBytes   int64       `json:"size_bytes" db:"size_bytes"`
	ContentHash *string     `json:"content_hash,omitempty" db:"content_hash"`
	Status      PhotoStatus `json:"status" db:"status"`
	ObjectKey   string      `json:"-" db:"object_key"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time  `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Active reports whether the photo is not soft-deleted.
func (p *Photo) Active() bool {
	return p.DeletedAt == nil
}

// FaceEmbedding is a fixed-dimension face vector attached to a photo,
// produced once by the extraction service during ingest.
type FaceEmbedding struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PhotoID   uuid.UUID `json:"photo_id" db:"photo_id"`
	Embedding []float32 `json:"-" db:"embedding"`
	BBox      []int32   `json:"bbox" db:"bbox"` // x1, y1, x2, y2
	DetScore  float32   `json:"det_score" db:"det_score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
