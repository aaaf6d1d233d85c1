package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/prism/internal/config"
	"github.com/your-org/prism/internal/extractor"
	"github.com/your-org/prism/internal/ingest"
	"github.com/your-org/prism/internal/models"
	"github.com/your-org/prism/internal/observability"
	"github.com/your-org/prism/internal/queue"
	"github.com/your-org/prism/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	metricsPort := flag.Int("metrics-port", 9091, "port for the metrics endpoint")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting prism ingest worker", "workers", cfg.Worker.Count)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	extractorClient := extractor.NewClient(cfg.Extractor)
	processor := ingest.NewProcessor(db, minioStore, extractorClient, producer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeIngest(ctx, "ingest-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var task models.IngestTask
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			return fmt.Errorf("unmarshal ingest task: %w", err)
		}
		return processor.Process(ctx, task)
	}, cfg.Worker.Count)
	if err != nil {
		slog.Error("start ingest consumer", "error", err)
		os.Exit(1)
	}

	// Report queue depth while running
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if depth, err := producer.QueueDepth(ctx); err == nil {
					observability.QueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", *metricsPort)
		slog.Info("worker metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down ingest worker...")
	cancel()

	slog.Info("ingest worker stopped")
}
