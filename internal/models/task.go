package models

import (
	"time"

	"github.com/google/uuid"
)

// IngestTask is the message published to NATS when an upload is accepted.
// The worker fetches the object, extracts face embeddings and moves the
// photo to its terminal status.
type IngestTask struct {
	PhotoID   uuid.UUID `json:"photo_id"`
	AlbumID   uuid.UUID `json:"album_id"`
	ObjectKey string    `json:"object_key"`
	Enqueued  time.Time `json:"enqueued"`
}

// ProcessedEvent is published after ingest finishes, successfully or not.
// The API consumes it to notify WebSocket subscribers.
type ProcessedEvent struct {
	PhotoID   uuid.UUID   `json:"photo_id"`
	AlbumID   uuid.UUID   `json:"album_id"`
	Status    PhotoStatus `json:"status"`
	FaceCount int         `json:"face_count"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
