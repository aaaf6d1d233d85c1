package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/prism/internal/api/handlers"
	"github.com/your-org/prism/internal/api/ws"
	"github.com/your-org/prism/internal/auth"
	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/extractor"
	"github.com/your-org/prism/internal/queue"
	"github.com/your-org/prism/internal/storage"
)

type RouterConfig struct {
	APIKey    string
	DB        *storage.PostgresStore
	MinIO     *storage.MinIOStore
	Producer  *queue.Producer
	Extractor *extractor.Client
	Hub       *ws.Hub
	Resolver  *engine.DuplicateResolver
	Search    *engine.FaceSearch
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer, cfg.Extractor)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Albums
	albumH := handlers.NewAlbumHandler(cfg.DB, cfg.MinIO)
	v1.POST("/albums", albumH.Create)
	v1.GET("/albums", albumH.List)
	v1.GET("/albums/:slug", albumH.Get)
	v1.DELETE("/albums/:slug", albumH.Delete)

	// Photos & duplicate resolution
	photoH := handlers.NewPhotoHandler(cfg.DB, cfg.MinIO, cfg.Producer, cfg.Resolver)
	v1.POST("/albums/:slug/photos", photoH.Upload)
	v1.GET("/albums/:slug/photos", photoH.List)
	v1.POST("/albums/:slug/duplicate-check", photoH.CheckDuplicate)
	v1.GET("/photos/:id", photoH.Get)

	// Face similarity search
	searchH := handlers.NewSearchHandler(cfg.Search)
	v1.POST("/albums/:slug/search/face", searchH.SearchFace)

	return r
}
