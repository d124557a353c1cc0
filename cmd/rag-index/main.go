package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"journal-rag/internal/app"
	"journal-rag/internal/cli"
	"journal-rag/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewIndexCommand(cfg, app.IndexServiceFor)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
