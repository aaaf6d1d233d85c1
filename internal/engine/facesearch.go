package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// SearchOptions configure the vector matching stage. Zero values fall back
// to the defaults below, so an empty struct is usable.
type SearchOptions struct {
	// Threshold is the minimum normalized cosine similarity, on (0,1].
	// Zero means "use DefaultThreshold"; an accept-everything search is
	// not representable, which keeps result sets bounded by similarity
	// and not only by MaxCandidates.
	Threshold float64
	// MaxCandidates caps how many hits the vector store may return.
	MaxCandidates int
}

const (
	DefaultThreshold     = 0.6
	DefaultMaxCandidates = 50
)

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	return o
}

// FaceSearch finds photos in an album containing a face similar to the one
// in a query image. All collaborators are injected; the search itself
// keeps no state between calls.
type FaceSearch struct {
	catalog   Catalog
	extractor Extractor
	vectors   VectorSearcher
	opts      SearchOptions
}

func NewFaceSearch(catalog Catalog, extractor Extractor, vectors VectorSearcher, opts SearchOptions) *FaceSearch {
	return &FaceSearch{
		catalog:   catalog,
		extractor: extractor,
		vectors:   vectors,
		opts:      opts.withDefaults(),
	}
}

// Search resolves the album slug, extracts a face embedding from the query
// image, matches it against stored embeddings and hydrates the winners.
//
// Two outcomes return an empty slice with a nil error: no face detected in
// the query image, and no candidate clearing the similarity threshold.
// Everything else that goes wrong carries one of the package error kinds.
func (s *FaceSearch) Search(ctx context.Context, albumSlug string, image []byte) ([]FaceMatch, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", ErrInvalidInput)
	}

	album, err := s.catalog.AlbumBySlug(ctx, albumSlug)
	if err != nil {
		return nil, fmt.Errorf("resolve album %q: %w", albumSlug, err)
	}

	faces, err := s.extractor.ExtractFaces(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("extract embedding: %w", err)
	}
	if len(faces) == 0 {
		return []FaceMatch{}, nil
	}
	// Multiple faces in the query image: only the first detected face is
	// used. Multi-face search is out of scope.
	query := faces[0].Embedding

	candidates, err := s.vectors.SearchEmbeddings(ctx, album.ID, query, s.opts.Threshold, s.opts.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("vector match: %w", err)
	}
	if len(candidates) == 0 {
		return []FaceMatch{}, nil
	}

	return s.hydrate(ctx, candidates)
}

// hydrate loads full photo records for the candidate ids and drops any
// candidate whose photo has not finished processing. A photo can carry an
// embedding before the rest of its ingest work is done; it must not be
// surfaced until status is completed.
func (s *FaceSearch) hydrate(ctx context.Context, candidates []Candidate) ([]FaceMatch, error) {
	ids := make([]uuid.UUID, 0, len(candidates))
	similarity := make(map[uuid.UUID]float64, len(candidates))
	for _, c := range candidates {
		// A photo with several matching faces keeps its best score.
		if prev, ok := similarity[c.PhotoID]; !ok || c.Similarity > prev {
			if !ok {
				ids = append(ids, c.PhotoID)
			}
			similarity[c.PhotoID] = c.Similarity
		}
	}

	photos, err := s.catalog.CompletedPhotosByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate candidates: %w", err)
	}

	matches := make([]FaceMatch, 0, len(photos))
	for _, p := range photos {
		matches = append(matches, FaceMatch{Photo: p, Similarity: similarity[p.ID]})
	}

	// Descending similarity; ties broken by photo id ascending so repeated
	// calls return the same ordering.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Photo.ID.String() < matches[j].Photo.ID.String()
	})

	return matches, nil
}
