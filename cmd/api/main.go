package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"journal-rag/internal/app"
	"journal-rag/internal/config"
	"journal-rag/internal/http"
	"journal-rag/internal/service"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()
	a := app.New(ctx, cfg)
	defer func() {
		_ = a.Close()
	}()

	indexService, err := a.IndexService(ctx)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	slog.Info("Vector store ready", "backend", cfg.VectorBackend, "index_dir", cfg.IndexDir)

	router := http.NewRouter(&http.Deps{
		SearchService: a.SearchService(),
		IndexService:  indexService,
	})

	// Build the index in the background when none exists yet
	go func() {
		exists, err := indexService.IndexExists(ctx)
		if err != nil {
			slog.Error("Failed to check index", "error", err)
			return
		}
		if exists {
			slog.Info("Index found, skipping initial indexing")
			return
		}
		slog.Info("No index found, starting background indexing", "journal_dir", cfg.JournalDir)
		stats, err := indexService.Index(ctx, service.IndexRequest{})
		if err != nil {
			slog.Error("Indexing completed with errors", "error", err)
			return
		}
		slog.Info("Indexing completed successfully", "documents", stats.Documents, "records", stats.Records)
	}()

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
