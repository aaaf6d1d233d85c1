package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/prism/internal/extractor"
	"github.com/your-org/prism/internal/queue"
	"github.com/your-org/prism/internal/storage"
)

type SystemHandler struct {
	db        *storage.PostgresStore
	minio     *storage.MinIOStore
	producer  *queue.Producer
	extractor *extractor.Client
}

func NewSystemHandler(db *storage.PostgresStore, minio *storage.MinIOStore, producer *queue.Producer, ex *extractor.Client) *SystemHandler {
	return &SystemHandler{db: db, minio: minio, producer: producer, extractor: ex}
}

func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SystemHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	// Check Postgres
	if err := h.db.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	// Check MinIO
	if err := h.minio.Ping(ctx); err != nil {
		checks["minio"] = err.Error()
		healthy = false
	} else {
		checks["minio"] = "ok"
	}

	// Check NATS
	if err := h.producer.Ping(); err != nil {
		checks["nats"] = err.Error()
		healthy = false
	} else {
		checks["nats"] = "ok"
	}

	// Check extractor. Face search degrades without it but uploads and
	// duplicate checks still work, so it does not flip readiness.
	if err := h.extractor.Ping(ctx); err != nil {
		checks["extractor"] = err.Error()
	} else {
		checks["extractor"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": map[bool]string{true: "ready", false: "not ready"}[healthy],
		"checks": checks,
	})
}
