// Package ingest runs the post-upload pipeline: fetch the stored object,
// extract face embeddings through the external service and move the photo
// to its terminal status.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/models"
	"github.com/your-org/prism/internal/observability"
)

// Store is the slice of the catalog the processor writes to.
type Store interface {
	UpdatePhotoStatus(ctx context.Context, id uuid.UUID, status models.PhotoStatus) error
	AddFaceEmbedding(ctx context.Context, fe *models.FaceEmbedding) error
}

// ObjectStore fetches original photo bytes.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// EventPublisher announces terminal photo statuses.
type EventPublisher interface {
	PublishProcessedEvent(ctx context.Context, ev models.ProcessedEvent) error
}

type Processor struct {
	store     Store
	objects   ObjectStore
	extractor engine.Extractor
	events    EventPublisher
}

func NewProcessor(store Store, objects ObjectStore, extractor engine.Extractor, events EventPublisher) *Processor {
	return &Processor{store: store, objects: objects, extractor: extractor, events: events}
}

// Process handles one ingest task. A photo with no detectable faces still
// completes: it simply never matches a face search. Extraction transport
// failures return an error so the queue redelivers the task.
func (p *Processor) Process(ctx context.Context, task models.IngestTask) error {
	if err := p.store.UpdatePhotoStatus(ctx, task.PhotoID, models.PhotoStatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	data, err := p.objects.GetObject(ctx, task.ObjectKey)
	if err != nil {
		p.fail(ctx, task, fmt.Sprintf("fetch object: %v", err))
		return fmt.Errorf("fetch object %s: %w", task.ObjectKey, err)
	}

	start := time.Now()
	faces, err := p.extractor.ExtractFaces(ctx, data)
	observability.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.fail(ctx, task, fmt.Sprintf("extract faces: %v", err))
		return fmt.Errorf("extract faces for %s: %w", task.PhotoID, err)
	}

	for _, face := range faces {
		fe := &models.FaceEmbedding{
			PhotoID:   task.PhotoID,
			Embedding: face.Embedding,
			BBox:      face.BBox,
			DetScore:  face.DetScore,
		}
		if err := p.store.AddFaceEmbedding(ctx, fe); err != nil {
			p.fail(ctx, task, fmt.Sprintf("store embedding: %v", err))
			return fmt.Errorf("store embedding for %s: %w", task.PhotoID, err)
		}
	}

	if err := p.store.UpdatePhotoStatus(ctx, task.PhotoID, models.PhotoStatusCompleted); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	observability.PhotosProcessed.WithLabelValues(string(models.PhotoStatusCompleted)).Inc()
	p.publish(ctx, task, models.PhotoStatusCompleted, len(faces), "")

	slog.Info("photo processed", "photo_id", task.PhotoID, "faces", len(faces))
	return nil
}

func (p *Processor) fail(ctx context.Context, task models.IngestTask, reason string) {
	if err := p.store.UpdatePhotoStatus(ctx, task.PhotoID, models.PhotoStatusFailed); err != nil {
		slog.Error("mark photo failed", "photo_id", task.PhotoID, "error", err)
	}
	observability.PhotosProcessed.WithLabelValues(string(models.PhotoStatusFailed)).Inc()
	p.publish(ctx, task, models.PhotoStatusFailed, 0, reason)
}

func (p *Processor) publish(ctx context.Context, task models.IngestTask, status models.PhotoStatus, faceCount int, errMsg string) {
	ev := models.ProcessedEvent{
		PhotoID:   task.PhotoID,
		AlbumID:   task.AlbumID,
		Status:    status,
		FaceCount: faceCount,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
	if err := p.events.PublishProcessedEvent(ctx, ev); err != nil {
		slog.Warn("publish processed event", "photo_id", task.PhotoID, "error", err)
	}
}
