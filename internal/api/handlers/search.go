package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/observability"
	"github.com/your-org/prism/pkg/dto"
)

type SearchHandler struct {
	search *engine.FaceSearch
}

func NewSearchHandler(search *engine.FaceSearch) *SearchHandler {
	return &SearchHandler{search: search}
}

// SearchFace finds photos in the album containing a face similar to the
// one in the uploaded query image. An empty result list is a success: it
// means no face was detected or nothing cleared the threshold.
func (h *SearchHandler) SearchFace(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	observability.FaceSearchesTotal.Inc()
	start := time.Now()

	matches, err := h.search.Search(c.Request.Context(), c.Param("slug"), image)
	if err != nil {
		respondError(c, err)
		return
	}

	observability.FaceSearchDuration.Observe(time.Since(start).Seconds())

	results := make([]dto.FaceSearchResult, 0, len(matches))
	for i := range matches {
		results = append(results, dto.FaceSearchResult{
			Photo:      photoResponse(&matches[i].Photo),
			Similarity: matches[i].Similarity,
		})
	}

	c.JSON(http.StatusOK, dto.FaceSearchResponse{Results: results, Total: len(results)})
}
