package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/noah-isme/student-roster/internal/app"
	"github.com/noah-isme/student-roster/internal/cli"
	"github.com/noah-isme/student-roster/pkg/config"
	"github.com/noah-isme/student-roster/pkg/logger"
)

// @title Student Roster API
// @version 1.0.0
// @description Student list management backed by a key-value record store
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise roster", "error", err)
	}
	defer a.Close() //nolint:errcheck

	if err := cli.Serve(ctx, a); err != nil {
		logr.Sugar().Errorw("server failed", "error", err)
	}
}
