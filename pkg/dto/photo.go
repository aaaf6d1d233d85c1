package dto

import "github.com/google/uuid"

type PhotoResponse struct {
	ID          uuid.UUID `json:"id"`
	AlbumID     uuid.UUID `json:"album_id"`
	Filename    string    `json:"filename"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentHash string    `json:"content_hash,omitempty"`
	Status      string    `json:"status"`
	// FaceCount is populated on the photo detail endpoint only.
	FaceCount int    `json:"face_count,omitempty"`
	CreatedAt string `json:"created_at"`
}

// DuplicateCheckRequest is the dry-run duplicate resolution input. Hash is
// optional: when absent, only the filename+size heuristic runs.
type DuplicateCheckRequest struct {
	Filename string `json:"filename" binding:"required"`
	Size     int64  `json:"size"`
	Hash     string `json:"hash,omitempty"`
}

type MatchedPhotoResponse struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
}

type DuplicateCheckResponse struct {
	IsDuplicate  bool                  `json:"is_duplicate"`
	MatchedPhoto *MatchedPhotoResponse `json:"matched_photo,omitempty"`
	Strategy     string                `json:"strategy,omitempty"`
}
