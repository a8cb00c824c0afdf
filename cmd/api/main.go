package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"txguard/internal/infrastructure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := infrastructure.Bootstrap(ctx)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	log := app.Logger()
	log.Info("txguard starting")

	if err := app.Run(ctx); err != nil {
		log.Error("txguard stopped with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}

	log.Info("txguard stopped")
}
