package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"journal-rag/internal/app"
	"journal-rag/internal/config"
	"journal-rag/internal/mcpserver"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// stdout carries the MCP protocol.
	logger := app.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()
	a := app.New(ctx, cfg)
	defer func() {
		_ = a.Close()
	}()

	indexSvc, err := a.IndexService(ctx)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}

	srv := mcpserver.New(a.SearchService(), indexSvc, version)
	slog.Info("Starting MCP server", "journal_dir", cfg.JournalDir, "backend", cfg.VectorBackend)
	if err := srv.ServeStdio(); err != nil {
		slog.Error("MCP server stopped", "error", err)
		_ = a.Close()
		os.Exit(1)
	}
}
