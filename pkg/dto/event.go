package dto

import "github.com/google/uuid"

// WSEvent wraps a message pushed to WebSocket subscribers. AlbumID lets
// clients subscribe to a single album's events.
type WSEvent struct {
	Type    string      `json:"type"`
	AlbumID uuid.UUID   `json:"album_id"`
	Data    interface{} `json:"data"`
}

type PhotoProcessedEvent struct {
	PhotoID   uuid.UUID `json:"photo_id"`
	AlbumID   uuid.UUID `json:"album_id"`
	Status    string    `json:"status"`
	FaceCount int       `json:"face_count"`
	Error     string    `json:"error,omitempty"`
	Timestamp string    `json:"timestamp"`
}
