package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/models"
	"github.com/your-org/prism/pkg/dto"
)

type fakeAlbumStore struct {
	albums  []models.Album
	counts  map[uuid.UUID]int
	deleted []uuid.UUID

	countErr  error
	deleteErr error
}

func (f *fakeAlbumStore) CreateAlbum(ctx context.Context, slug, name string) (*models.Album, error) {
	a := models.Album{ID: uuid.New(), Slug: slug, Name: name, CreatedAt: time.Now()}
	f.albums = append(f.albums, a)
	return &a, nil
}

func (f *fakeAlbumStore) ListAlbums(ctx context.Context) ([]models.Album, error) {
	return f.albums, nil
}

func (f *fakeAlbumStore) AlbumBySlug(ctx context.Context, slug string) (*models.Album, error) {
	for i := range f.albums {
		if f.albums[i].Slug == slug {
			return &f.albums[i], nil
		}
	}
	return nil, engine.ErrAlbumNotFound
}

func (f *fakeAlbumStore) DeleteAlbum(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAlbumStore) CountPhotos(ctx context.Context, albumID uuid.UUID) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[albumID], nil
}

type fakeAlbumObjects struct {
	keys []string

	listPrefix string
	deleted    []string

	listErr   error
	deleteErr error
}

func (f *fakeAlbumObjects) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	f.listPrefix = prefix
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.keys, nil
}

func (f *fakeAlbumObjects) DeleteObjects(ctx context.Context, keys []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, keys...)
	return nil
}

func albumRouter(db AlbumStore, objects AlbumObjects) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAlbumHandler(db, objects)
	r.GET("/albums", h.List)
	r.GET("/albums/:slug", h.Get)
	r.DELETE("/albums/:slug", h.Delete)
	return r
}

func TestAlbumDelete_PurgesStoredObjects(t *testing.T) {
	albumID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	store := &fakeAlbumStore{
		albums: []models.Album{{ID: albumID, Slug: "trip", Name: "Trip"}},
		counts: map[uuid.UUID]int{},
	}
	objects := &fakeAlbumObjects{keys: []string{
		"photos/" + albumID.String() + "/a_one.jpg",
		"photos/" + albumID.String() + "/b_two.jpg",
	}}

	req := httptest.NewRequest(http.MethodDelete, "/albums/trip", nil)
	w := httptest.NewRecorder()
	albumRouter(store, objects).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []uuid.UUID{albumID}, store.deleted)
	assert.Equal(t, "photos/"+albumID.String()+"/", objects.listPrefix)
	assert.Equal(t, objects.keys, objects.deleted)
}

func TestAlbumDelete_PurgeFailureStillDeletes(t *testing.T) {
	albumID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	store := &fakeAlbumStore{
		albums: []models.Album{{ID: albumID, Slug: "trip", Name: "Trip"}},
		counts: map[uuid.UUID]int{},
	}
	objects := &fakeAlbumObjects{
		keys:      []string{"photos/" + albumID.String() + "/a_one.jpg"},
		deleteErr: errors.New("minio down"),
	}

	req := httptest.NewRequest(http.MethodDelete, "/albums/trip", nil)
	w := httptest.NewRecorder()
	albumRouter(store, objects).ServeHTTP(w, req)

	// The catalog soft-delete is what makes photos unresolvable; a failed
	// object purge degrades storage hygiene, not correctness.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{albumID}, store.deleted)
	assert.Empty(t, objects.deleted)
}

func TestAlbumList_IncludesPhotoCounts(t *testing.T) {
	first := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	second := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	store := &fakeAlbumStore{
		albums: []models.Album{
			{ID: first, Slug: "trip", Name: "Trip"},
			{ID: second, Slug: "empty", Name: "Empty"},
		},
		counts: map[uuid.UUID]int{first: 3},
	}

	req := httptest.NewRequest(http.MethodGet, "/albums", nil)
	w := httptest.NewRecorder()
	albumRouter(store, &fakeAlbumObjects{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Albums []dto.AlbumResponse `json:"albums"`
		Total  int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, 3, resp.Albums[0].PhotoCount)
	assert.Equal(t, 0, resp.Albums[1].PhotoCount)
}

func TestAlbumGet_IncludesPhotoCount(t *testing.T) {
	albumID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	store := &fakeAlbumStore{
		albums: []models.Album{{ID: albumID, Slug: "trip", Name: "Trip"}},
		counts: map[uuid.UUID]int{albumID: 7},
	}

	req := httptest.NewRequest(http.MethodGet, "/albums/trip", nil)
	w := httptest.NewRecorder()
	albumRouter(store, &fakeAlbumObjects{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.AlbumResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.PhotoCount)
}
