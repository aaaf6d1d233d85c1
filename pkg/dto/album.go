package dto

import "github.com/google/uuid"

type CreateAlbumRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type AlbumResponse struct {
	ID         uuid.UUID `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	PhotoCount int       `json:"photo_count"`
	CreatedAt  string    `json:"created_at"`
}
