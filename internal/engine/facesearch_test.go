package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/engine/enginetest"
	"github.com/your-org/prism/internal/models"
)

const slug = "holiday-2024"

func activeAlbum() models.Album {
	return models.Album{ID: albumID, Slug: slug, Name: "Holiday 2024"}
}

func completedPhoto(id string) models.Photo {
	return models.Photo{
		ID:      uuid.MustParse(id),
		AlbumID: albumID,
		Status:  models.PhotoStatusCompleted,
	}
}

func queryFace() []engine.Face {
	return []engine.Face{{Embedding: []float32{0.1, 0.2, 0.3}, DetScore: 0.99}}
}

func TestSearch_NoFaceDetectedIsEmptySuccess(t *testing.T) {
	catalog := &enginetest.FakeCatalog{Albums: []models.Album{activeAlbum()}}
	extractor := &enginetest.FakeExtractor{Faces: nil}
	vectors := &enginetest.FakeVectorSearcher{}
	search := engine.NewFaceSearch(catalog, extractor, vectors, engine.SearchOptions{})

	matches, err := search.Search(context.Background(), slug, []byte("jpeg bytes"))
	require.NoError(t, err)

	assert.Empty(t, matches)
	assert.Equal(t, 1, extractor.Calls)
	// The vector store is never consulted without a query face.
	assert.Zero(t, vectors.LastLimit)
}

func TestSearch_ThresholdFiltersCandidates(t *testing.T) {
	p3 := completedPhoto("bbbbbbbb-0000-0000-0000-000000000003")
	p4 := completedPhoto("bbbbbbbb-0000-0000-0000-000000000004")
	catalog := &enginetest.FakeCatalog{
		Albums: []models.Album{activeAlbum()},
		Photos: []models.Photo{p3, p4},
	}
	vectors := &enginetest.FakeVectorSearcher{Candidates: []engine.Candidate{
		{PhotoID: p3.ID, Similarity: 0.81},
		{PhotoID: p4.ID, Similarity: 0.55},
	}}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{Faces: queryFace()}, vectors,
		engine.SearchOptions{Threshold: 0.6})

	matches, err := search.Search(context.Background(), slug, []byte("img"))
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, p3.ID, matches[0].Photo.ID)
	assert.InDelta(t, 0.81, matches[0].Similarity, 1e-9)
}

func TestSearch_OrdersBySimilarityThenID(t *testing.T) {
	pa := completedPhoto("bbbbbbbb-0000-0000-0000-00000000000a")
	pb := completedPhoto("bbbbbbbb-0000-0000-0000-00000000000b")
	pc := completedPhoto("bbbbbbbb-0000-0000-0000-00000000000c")
	catalog := &enginetest.FakeCatalog{
		Albums: []models.Album{activeAlbum()},
		Photos: []models.Photo{pa, pb, pc},
	}
	vectors := &enginetest.FakeVectorSearcher{Candidates: []engine.Candidate{
		{PhotoID: pc.ID, Similarity: 0.7},
		{PhotoID: pa.ID, Similarity: 0.7},
		{PhotoID: pb.ID, Similarity: 0.9},
	}}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{Faces: queryFace()}, vectors,
		engine.SearchOptions{})

	matches, err := search.Search(context.Background(), slug, []byte("img"))
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, pb.ID, matches[0].Photo.ID)
	// Equal similarity: photo id ascending.
	assert.Equal(t, pa.ID, matches[1].Photo.ID)
	assert.Equal(t, pc.ID, matches[2].Photo.ID)
}

func TestSearch_ExcludesUnprocessedPhotos(t *testing.T) {
	p5 := completedPhoto("bbbbbbbb-0000-0000-0000-000000000005")
	p5.Status = models.PhotoStatusProcessing
	catalog := &enginetest.FakeCatalog{
		Albums: []models.Album{activeAlbum()},
		Photos: []models.Photo{p5},
	}
	vectors := &enginetest.FakeVectorSearcher{Candidates: []engine.Candidate{
		{PhotoID: p5.ID, Similarity: 0.9},
	}}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{Faces: queryFace()}, vectors,
		engine.SearchOptions{})

	matches, err := search.Search(context.Background(), slug, []byte("img"))
	require.NoError(t, err)

	assert.Empty(t, matches)
}

func TestSearch_ExcludesSoftDeletedPhotos(t *testing.T) {
	deleted := time.Now()
	p := completedPhoto("bbbbbbbb-0000-0000-0000-000000000006")
	p.DeletedAt = &deleted
	catalog := &enginetest.FakeCatalog{
		Albums: []models.Album{activeAlbum()},
		Photos: []models.Photo{p},
	}
	vectors := &enginetest.FakeVectorSearcher{Candidates: []engine.Candidate{
		{PhotoID: p.ID, Similarity: 0.95},
	}}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{Faces: queryFace()}, vectors,
		engine.SearchOptions{})

	matches, err := search.Search(context.Background(), slug, []byte("img"))
	require.NoError(t, err)

	assert.Empty(t, matches)
}

func TestSearch_AlbumNotFound(t *testing.T) {
	search := engine.NewFaceSearch(&enginetest.FakeCatalog{}, &enginetest.FakeExtractor{}, &enginetest.FakeVectorSearcher{},
		engine.SearchOptions{})

	_, err := search.Search(context.Background(), "missing", []byte("img"))
	assert.ErrorIs(t, err, engine.ErrAlbumNotFound)
}

func TestSearch_SoftDeletedAlbumNotResolvable(t *testing.T) {
	deleted := time.Now()
	album := activeAlbum()
	album.DeletedAt = &deleted
	catalog := &enginetest.FakeCatalog{Albums: []models.Album{album}}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{}, &enginetest.FakeVectorSearcher{},
		engine.SearchOptions{})

	_, err := search.Search(context.Background(), slug, []byte("img"))
	assert.ErrorIs(t, err, engine.ErrAlbumNotFound)
}

func TestSearch_ExtractorFailurePropagates(t *testing.T) {
	catalog := &enginetest.FakeCatalog{Albums: []models.Album{activeAlbum()}}
	extractor := &enginetest.FakeExtractor{Err: engine.ErrExtractorUnavailable}
	search := engine.NewFaceSearch(catalog, extractor, &enginetest.FakeVectorSearcher{},
		engine.SearchOptions{})

	_, err := search.Search(context.Background(), slug, []byte("img"))
	assert.ErrorIs(t, err, engine.ErrExtractorUnavailable)
}

func TestSearch_VectorStoreFailurePropagates(t *testing.T) {
	catalog := &enginetest.FakeCatalog{Albums: []models.Album{activeAlbum()}}
	vectors := &enginetest.FakeVectorSearcher{Err: engine.ErrCatalogUnavailable}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{Faces: queryFace()}, vectors,
		engine.SearchOptions{})

	_, err := search.Search(context.Background(), slug, []byte("img"))
	assert.ErrorIs(t, err, engine.ErrCatalogUnavailable)
}

func TestSearch_EmptyImageRejected(t *testing.T) {
	search := engine.NewFaceSearch(&enginetest.FakeCatalog{}, &enginetest.FakeExtractor{}, &enginetest.FakeVectorSearcher{},
		engine.SearchOptions{})

	_, err := search.Search(context.Background(), slug, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestSearch_UsesFirstDetectedFaceOnly(t *testing.T) {
	catalog := &enginetest.FakeCatalog{Albums: []models.Album{activeAlbum()}}
	extractor := &enginetest.FakeExtractor{Faces: []engine.Face{
		{Embedding: []float32{1, 0, 0}},
		{Embedding: []float32{0, 1, 0}},
	}}
	vectors := &enginetest.FakeVectorSearcher{}
	search := engine.NewFaceSearch(catalog, extractor, vectors, engine.SearchOptions{})

	_, err := search.Search(context.Background(), slug, []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 0, 0}, vectors.LastQuery)
}

func TestSearch_DefaultOptions(t *testing.T) {
	catalog := &enginetest.FakeCatalog{Albums: []models.Album{activeAlbum()}}
	vectors := &enginetest.FakeVectorSearcher{}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{Faces: queryFace()}, vectors,
		engine.SearchOptions{})

	_, err := search.Search(context.Background(), slug, []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, engine.DefaultThreshold, vectors.LastThreshold)
	assert.Equal(t, engine.DefaultMaxCandidates, vectors.LastLimit)
}

func TestSearch_KeepsBestScorePerPhoto(t *testing.T) {
	p := completedPhoto("bbbbbbbb-0000-0000-0000-000000000009")
	catalog := &enginetest.FakeCatalog{
		Albums: []models.Album{activeAlbum()},
		Photos: []models.Photo{p},
	}
	// Two faces of the same photo cleared the threshold.
	vectors := &enginetest.FakeVectorSearcher{Candidates: []engine.Candidate{
		{PhotoID: p.ID, Similarity: 0.72},
		{PhotoID: p.ID, Similarity: 0.91},
	}}
	search := engine.NewFaceSearch(catalog, &enginetest.FakeExtractor{Faces: queryFace()}, vectors,
		engine.SearchOptions{})

	matches, err := search.Search(context.Background(), slug, []byte("img"))
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.InDelta(t, 0.91, matches[0].Similarity, 1e-9)
}
