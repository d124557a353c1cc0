package main

import (
	"context"
	"fmt"
	"os"

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

	cmd := cli.NewSearchCommand(cfg, app.SearchServiceFor)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
