package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DuplicateResolver decides whether a candidate file already exists in an
// album. It only reads the catalog and never computes a content hash —
// that responsibility stays with the uploader.
type DuplicateResolver struct {
	catalog Catalog
}

func NewDuplicateResolver(catalog Catalog) *DuplicateResolver {
	return &DuplicateResolver{catalog: catalog}
}

// Resolve runs the two-stage duplicate cascade against the album:
//
//  1. If hash is non-empty, look for an active photo with the exact same
//     content hash. A hit is authoritative and short-circuits stage 2.
//  2. Otherwise look for an active photo matching filename and size
//     exactly. This is a lower-confidence heuristic kept for callers that
//     cannot supply a hash.
//
// The album must already be validated as active by the caller; an unknown
// album surfaces as ErrAlbumNotFound from the catalog.
func (r *DuplicateResolver) Resolve(ctx context.Context, albumID uuid.UUID, filename string, size int64, hash string) (DuplicateResult, error) {
	if filename == "" {
		return DuplicateResult{}, fmt.Errorf("%w: empty filename", ErrInvalidInput)
	}
	if size < 0 {
		return DuplicateResult{}, fmt.Errorf("%w: negative size %d", ErrInvalidInput, size)
	}

	if hash != "" {
		photo, err := r.catalog.PhotoByHash(ctx, albumID, hash)
		if err != nil {
			return DuplicateResult{}, fmt.Errorf("hash lookup: %w", err)
		}
		if photo != nil {
			return DuplicateResult{
				IsDuplicate:  true,
				MatchedPhoto: &MatchedPhoto{ID: photo.ID, Filename: photo.Filename},
				Strategy:     MatchByHash,
			}, nil
		}
	}

	photos, err := r.catalog.PhotosByNameAndSize(ctx, albumID, filename, size)
	if err != nil {
		return DuplicateResult{}, fmt.Errorf("name+size lookup: %w", err)
	}
	if len(photos) > 0 {
		// Catalog orders by id ascending; the first row is the match.
		first := photos[0]
		return DuplicateResult{
			IsDuplicate:  true,
			MatchedPhoto: &MatchedPhoto{ID: first.ID, Filename: first.Filename},
			Strategy:     MatchByNameSize,
		}, nil
	}

	return DuplicateResult{IsDuplicate: false}, nil
}
