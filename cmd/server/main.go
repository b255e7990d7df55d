package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"portfolio/internal/app"
	"portfolio/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
