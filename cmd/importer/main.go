package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"stockflow-importer/config"
	"stockflow-importer/internal/broker"
	"stockflow-importer/internal/ingest"
	"stockflow-importer/internal/service"
	"stockflow-importer/internal/store"
	"stockflow-importer/internal/urlnorm"
	"stockflow-importer/internal/util"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting stockflow importer")

	tp, err := util.InitTracer("stockflow-importer", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Observ.PrometheusPort)
		log.Printf("Serving metrics on %s/metrics", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	var publisher *broker.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	if err := ingest.EnsureDirs(cfg.Ingest.ProcessedDir, cfg.Ingest.ErrorsDir); err != nil {
		log.Fatalf("Failed to prepare directories: %v", err)
	}

	prober := urlnorm.NewProber(cfg.Ingest.ProbeTimeout)
	importer := service.NewImportService(service.NewStoreDB(db), prober, publisher)

	files, err := ingest.ScanDir(cfg.Ingest.DataDir)
	if err != nil {
		log.Fatalf("Failed to scan intake directory: %v", err)
	}
	if len(files) == 0 {
		logger.Info("No files to ingest", zap.String("dir", cfg.Ingest.DataDir))
		return
	}

	ctx := context.Background()
	processed, failed := 0, 0
	// One file at a time; a failed file never stops the batch and is
	// never retried automatically.
	for _, path := range files {
		if processFile(ctx, importer, path) {
			processed++
			moveAside(path, cfg.Ingest.ProcessedDir)
		} else {
			failed++
			moveAside(path, cfg.Ingest.ErrorsDir)
		}
	}

	logger.Info("Ingestion batch complete",
		zap.Int("processed", processed),
		zap.Int("failed", failed))
}

func processFile(ctx context.Context, importer *service.ImportService, path string) bool {
	logger := util.GetLogger()
	logger.Info("Processing file", zap.String("file", path))

	wb, err := ingest.ReadWorkbook(path)
	if err != nil {
		logger.Error("Failed to read workbook",
			zap.String("file", path),
			zap.Error(err))
		return false
	}

	_, err = importer.IngestFile(ctx, filepath.Base(path), wb.Purchases, wb.Prices)
	return err == nil
}

func moveAside(path, destDir string) {
	if err := ingest.MoveFile(path, destDir); err != nil {
		util.GetLogger().Error("Failed to move file",
			zap.String("file", path),
			zap.Error(err))
	}
}
