// Package engine decides whether an uploaded image duplicates an existing
// photo and finds photos containing a face similar to a query face. Both
// pipelines are stateless and read-only over the catalog: they can run
// concurrently without coordination, and every blocking call takes a
// context for timeout and cancellation.
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/your-org/prism/internal/models"
)

// Catalog is the album-scoped, soft-delete-aware view of the photo store.
// It exposes exactly the query shapes the engine needs, nothing more.
type Catalog interface {
	// AlbumByID returns the active album or ErrAlbumNotFound.
	AlbumByID(ctx context.Context, id uuid.UUID) (*models.Album, error)

	// AlbumBySlug returns the active album or ErrAlbumNotFound.
	AlbumBySlug(ctx context.Context, slug string) (*models.Album, error)

	// PhotoByHash returns the active photo in the album with the exact
	// content hash, or (nil, nil) when there is none. When several rows
	// match, the one with the lowest id wins.
	PhotoByHash(ctx context.Context, albumID uuid.UUID, hash string) (*models.Photo, error)

	// PhotosByNameAndSize returns active photos in the album matching both
	// filename and byte size exactly, ordered by id ascending.
	PhotosByNameAndSize(ctx context.Context, albumID uuid.UUID, filename string, size int64) ([]models.Photo, error)

	// CompletedPhotosByIDs returns the subset of the given photos that are
	// active and in completed status.
	CompletedPhotosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Photo, error)
}

// VectorSearcher runs approximate nearest-neighbor matching over stored
// face embeddings, scoped to one album.
type VectorSearcher interface {
	// SearchEmbeddings returns up to limit candidates whose normalized
	// cosine similarity to query is at least threshold, best first.
	SearchEmbeddings(ctx context.Context, albumID uuid.UUID, query []float32, threshold float64, limit int) ([]Candidate, error)
}

// Extractor is the external face embedding service. Zero detected faces is
// a valid response, not an error.
type Extractor interface {
	ExtractFaces(ctx context.Context, image []byte) ([]Face, error)
}

// Face is one detected face in a query image.
type Face struct {
	Embedding []float32
	BBox      []int32
	DetScore  float32
}

// Candidate is a raw vector store hit, before hydration.
type Candidate struct {
	PhotoID    uuid.UUID
	Similarity float64
}

// MatchStrategy records which duplicate check produced a match.
type MatchStrategy string

const (
	// MatchByHash: content hash equality. Near-zero false positive rate;
	// treated as certain duplication regardless of filename or size.
	MatchByHash MatchStrategy = "hash"

	// MatchByNameSize: filename plus byte size equality. Heuristic only —
	// two distinct files can coincidentally share both.
	MatchByNameSize MatchStrategy = "name_size"
)

// MatchedPhoto is the summary of an existing photo a candidate duplicates.
type MatchedPhoto struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
}

// DuplicateResult is the verdict of one duplicate resolution call.
type DuplicateResult struct {
	IsDuplicate  bool          `json:"is_duplicate"`
	MatchedPhoto *MatchedPhoto `json:"matched_photo,omitempty"`
	Strategy     MatchStrategy `json:"strategy,omitempty"`
}

// FaceMatch is one face search result, hydrated with the full photo record.
type FaceMatch struct {
	Photo      models.Photo `json:"photo"`
	Similarity float64      `json:"similarity"`
}
