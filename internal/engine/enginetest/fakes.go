// Package enginetest provides in-memory fakes for the engine's
// collaborator interfaces.
package enginetest

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/models"
)

// FakeCatalog is an in-memory engine.Catalog with the same soft-delete and
// tie-break semantics as the real store.
type FakeCatalog struct {
	Albums []models.Album
	Photos []models.Photo

	// Error injection
	AlbumErr     error
	HashErr      error
	NameSizeErr  error
	CompletedErr error
}

var _ engine.Catalog = (*FakeCatalog)(nil)

func (f *FakeCatalog) AlbumByID(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	if f.AlbumErr != nil {
		return nil, f.AlbumErr
	}
	for i := range f.Albums {
		a := &f.Albums[i]
		if a.ID == id && a.DeletedAt == nil {
			return a, nil
		}
	}
	return nil, engine.ErrAlbumNotFound
}

func (f *FakeCatalog) AlbumBySlug(ctx context.Context, slug string) (*models.Album, error) {
	if f.AlbumErr != nil {
		return nil, f.AlbumErr
	}
	for i := range f.Albums {
		a := &f.Albums[i]
		if a.Slug == slug && a.DeletedAt == nil {
			return a, nil
		}
	}
	return nil, engine.ErrAlbumNotFound
}

func (f *FakeCatalog) PhotoByHash(ctx context.Context, albumID uuid.UUID, hash string) (*models.Photo, error) {
	if f.HashErr != nil {
		return nil, f.HashErr
	}
	var matches []models.Photo
	for _, p := range f.Photos {
		if p.AlbumID == albumID && p.Active() && p.ContentHash != nil && *p.ContentHash == hash {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sortByID(matches)
	return &matches[0], nil
}

func (f *FakeCatalog) PhotosByNameAndSize(ctx context.Context, albumID uuid.UUID, filename string, size int64) ([]models.Photo, error) {
	if f.NameSizeErr != nil {
		return nil, f.NameSizeErr
	}
	var matches []models.Photo
	for _, p := range f.Photos {
		if p.AlbumID == albumID && p.Active() && p.Filename == filename && p.SizeBytes == size {
			matches = append(matches, p)
		}
	}
	sortByID(matches)
	return matches, nil
}

func (f *FakeCatalog) CompletedPhotosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Photo, error) {
	if f.CompletedErr != nil {
		return nil, f.CompletedErr
	}
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var matches []models.Photo
	for _, p := range f.Photos {
		if wanted[p.ID] && p.Active() && p.Status == models.PhotoStatusCompleted {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func sortByID(photos []models.Photo) {
	sort.Slice(photos, func(i, j int) bool {
		return photos[i].ID.String() < photos[j].ID.String()
	})
}

// FakeExtractor returns a canned face list or an injected error.
type FakeExtractor struct {
	Faces []engine.Face
	Err   error

	Calls int
}

var _ engine.Extractor = (*FakeExtractor)(nil)

func (f *FakeExtractor) ExtractFaces(ctx context.Context, image []byte) ([]engine.Face, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Faces, nil
}

// FakeVectorSearcher serves canned candidates, applying the same threshold
// and cap filtering the real vector store would.
type FakeVectorSearcher struct {
	Candidates []engine.Candidate
	Err        error

	LastAlbumID   uuid.UUID
	LastQuery     []float32
	LastThreshold float64
	LastLimit     int
}

var _ engine.VectorSearcher = (*FakeVectorSearcher)(nil)

func (f *FakeVectorSearcher) SearchEmbeddings(ctx context.Context, albumID uuid.UUID, query []float32, threshold float64, limit int) ([]engine.Candidate, error) {
	f.LastAlbumID = albumID
	f.LastQuery = query
	f.LastThreshold = threshold
	f.LastLimit = limit
	if f.Err != nil {
		return nil, f.Err
	}
	var out []engine.Candidate
	for _, c := range f.Candidates {
		if c.Similarity >= threshold {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
