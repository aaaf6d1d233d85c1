package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/prism/internal/models"
	"github.com/your-org/prism/pkg/dto"
)

// AlbumStore is the slice of the catalog the album handlers need.
type AlbumStore interface {
	CreateAlbum(ctx context.Context, slug, name string) (*models.Album, error)
	ListAlbums(ctx context.Context) ([]models.Album, error)
	AlbumBySlug(ctx context.Context, slug string) (*models.Album, error)
	DeleteAlbum(ctx context.Context, id uuid.UUID) error
	CountPhotos(ctx context.Context, albumID uuid.UUID) (int, error)
}

// AlbumObjects lets album deletion purge the album's stored files by
// key prefix.
type AlbumObjects interface {
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

type AlbumHandler struct {
	db      AlbumStore
	objects AlbumObjects
}

func NewAlbumHandler(db AlbumStore, objects AlbumObjects) *AlbumHandler {
	return &AlbumHandler{db: db, objects: objects}
}

func (h *AlbumHandler) Create(c *gin.Context) {
	var req dto.CreateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	album, err := h.db.CreateAlbum(c.Request.Context(), req.Slug, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.AlbumResponse{
		ID:        album.ID,
		Slug:      album.Slug,
		Name:      album.Name,
		CreatedAt: album.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

func (h *AlbumHandler) List(c *gin.Context) {
	albums, err := h.db.ListAlbums(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.AlbumResponse, 0, len(albums))
	for i := range albums {
		ar, err := h.albumResponse(c.Request.Context(), &albums[i])
		if err != nil {
			respondError(c, err)
			return
		}
		resp = append(resp, ar)
	}

	c.JSON(http.StatusOK, gin.H{"albums": resp, "total": len(resp)})
}

func (h *AlbumHandler) Get(c *gin.Context) {
	album, err := h.db.AlbumBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.albumResponse(c.Request.Context(), album)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Delete soft-deletes an album. Its photos stop being resolvable through
// duplicate checks and face search immediately; the stored files are
// purged best-effort, since the catalog row is the source of truth.
func (h *AlbumHandler) Delete(c *gin.Context) {
	album, err := h.db.AlbumBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.DeleteAlbum(c.Request.Context(), album.ID); err != nil {
		respondError(c, err)
		return
	}

	h.purgeObjects(c.Request.Context(), album.ID)

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AlbumHandler) purgeObjects(ctx context.Context, albumID uuid.UUID) {
	prefix := "photos/" + albumID.String() + "/"
	keys, err := h.objects.ListObjects(ctx, prefix)
	if err != nil {
		slog.Warn("list album objects for purge", "album_id", albumID, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := h.objects.DeleteObjects(ctx, keys); err != nil {
		slog.Warn("purge album objects", "album_id", albumID, "error", err)
	}
}

func (h *AlbumHandler) albumResponse(ctx context.Context, a *models.Album) (dto.AlbumResponse, error) {
	count, err := h.db.CountPhotos(ctx, a.ID)
	if err != nil {
		return dto.AlbumResponse{}, err
	}
	return dto.AlbumResponse{
		ID:         a.ID,
		Slug:       a.Slug,
		Name:       a.Name,
		PhotoCount: count,
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}
