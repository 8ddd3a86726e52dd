package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/churnlab/trainpipe/internal/bootstrap"
	"github.com/churnlab/trainpipe/internal/config"

	// Collaborators register themselves with the default registry.
	// Model evaluation is intentionally not linked in.
	_ "github.com/churnlab/trainpipe/internal/datapipeline"
	_ "github.com/churnlab/trainpipe/internal/modelconfig"
	_ "github.com/churnlab/trainpipe/internal/training"
)

func main() {
	if err := run(os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(stdout, stderr io.Writer) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing or malformed .env is ignored.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	b := bootstrap.New(bootstrap.Options{
		Stdout:     stdout,
		LogWriter:  stderr,
		LogLevel:   cfg.Observability.LogLevel,
		EntryPoint: cfg.EntryPoint,
		LoggerName: cfg.LoggerName,
	})

	return b.Run(ctx)
}
