package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/models"
	"github.com/your-org/prism/internal/observability"
	"github.com/your-org/prism/pkg/dto"
)

// PhotoStore is the slice of the catalog the photo handlers need.
type PhotoStore interface {
	AlbumBySlug(ctx context.Context, slug string) (*models.Album, error)
	CreatePhoto(ctx context.Context, p *models.Photo) error
	GetPhoto(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListPhotos(ctx context.Context, albumID uuid.UUID) ([]models.Photo, error)
	CountFaces(ctx context.Context, photoID uuid.UUID) (int, error)
}

// PhotoObjects stores uploaded photo bytes.
type PhotoObjects interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
}

// TaskPublisher enqueues a photo for ingest processing.
type TaskPublisher interface {
	PublishIngestTask(ctx context.Context, task models.IngestTask) error
}

type PhotoHandler struct {
	db       PhotoStore
	objects  PhotoObjects
	producer TaskPublisher
	resolver *engine.DuplicateResolver
}

func NewPhotoHandler(db PhotoStore, objects PhotoObjects, producer TaskPublisher, resolver *engine.DuplicateResolver) *PhotoHandler {
	return &PhotoHandler{db: db, objects: objects, producer: producer, resolver: resolver}
}

// Upload accepts a multipart photo upload. The content hash is computed
// here, on the uploader side of the boundary — the duplicate resolver only
// consumes it. A duplicate hit rejects the upload with 409 and the match.
func (h *PhotoHandler) Upload(c *gin.Context) {
	album, err := h.db.AlbumBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read photo failed"})
		return
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	result, err := h.resolver.Resolve(c.Request.Context(), album.ID, header.Filename, int64(len(data)), hash)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.IsDuplicate {
		observability.DuplicatesDetected.WithLabelValues(string(result.Strategy)).Inc()
		c.JSON(http.StatusConflict, dto.DuplicateCheckResponse{
			IsDuplicate: true,
			MatchedPhoto: &dto.MatchedPhotoResponse{
				ID:       result.MatchedPhoto.ID,
				Filename: result.MatchedPhoto.Filename,
			},
			Strategy: string(result.Strategy),
		})
		return
	}

	objectKey := "photos/" + album.ID.String() + "/" + uuid.New().String() + "_" + header.Filename
	if err := h.objects.PutObject(c.Request.Context(), objectKey, data, header.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store photo failed"})
		return
	}

	photo := &models.Photo{
		AlbumID:     album.ID,
		Filename:    header.Filename,
		SizeBytes:   int64(len(data)),
		ContentHash: &hash,
		ObjectKey:   objectKey,
	}
	if err := h.db.CreatePhoto(c.Request.Context(), photo); err != nil {
		// Keep the catalog authoritative: drop the orphaned object.
		_ = h.objects.DeleteObject(c.Request.Context(), objectKey)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	task := models.IngestTask{
		PhotoID:   photo.ID,
		AlbumID:   album.ID,
		ObjectKey: objectKey,
		Enqueued:  time.Now(),
	}
	if err := h.producer.PublishIngestTask(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue ingest task failed"})
		return
	}

	observability.UploadsTotal.WithLabelValues(album.Slug).Inc()

	c.JSON(http.StatusCreated, photoResponse(photo))
}

// CheckDuplicate is the dry-run duplicate resolution endpoint: it consults
// the resolver without uploading anything.
func (h *PhotoHandler) CheckDuplicate(c *gin.Context) {
	album, err := h.db.AlbumBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.DuplicateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.resolver.Resolve(c.Request.Context(), album.ID, req.Filename, req.Size, req.Hash)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.DuplicateCheckResponse{
		IsDuplicate: result.IsDuplicate,
		Strategy:    string(result.Strategy),
	}
	if result.MatchedPhoto != nil {
		resp.MatchedPhoto = &dto.MatchedPhotoResponse{
			ID:       result.MatchedPhoto.ID,
			Filename: result.MatchedPhoto.Filename,
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PhotoHandler) List(c *gin.Context) {
	album, err := h.db.AlbumBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	photos, err := h.db.ListPhotos(c.Request.Context(), album.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.PhotoResponse, 0, len(photos))
	for i := range photos {
		resp = append(resp, photoResponse(&photos[i]))
	}

	c.JSON(http.StatusOK, gin.H{"photos": resp, "total": len(resp)})
}

func (h *PhotoHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	photo, err := h.db.GetPhoto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if photo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	faces, err := h.db.CountFaces(c.Request.Context(), photo.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := photoResponse(photo)
	resp.FaceCount = faces
	c.JSON(http.StatusOK, resp)
}

func photoResponse(p *models.Photo) dto.PhotoResponse {
	resp := dto.PhotoResponse{
		ID:        p.ID,
		AlbumID:   p.AlbumID,
		Filename:  p.Filename,
		SizeBytes: p.SizeBytes,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if p.ContentHash != nil {
		resp.ContentHash = *p.ContentHash
	}
	return resp
}
