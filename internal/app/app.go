// Package app wires configuration, the record store and the services into
// one container shared by the HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/handler"
	"github.com/noah-isme/student-roster/internal/repository"
	"github.com/noah-isme/student-roster/internal/seed"
	"github.com/noah-isme/student-roster/internal/service"
	"github.com/noah-isme/student-roster/pkg/config"
	appErrors "github.com/noah-isme/student-roster/pkg/errors"
	"github.com/noah-isme/student-roster/pkg/jobs"
	"github.com/noah-isme/student-roster/pkg/storage"
)

// App holds the wired services.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Store    repository.RecordStore
	Students *service.StudentService
	Exports  *service.ExportService

	archiveQueue *jobs.Queue
	closeStore   func() error
}

// New opens the configured record store and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	backend, closeStore, err := repository.OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	return build(cfg, logger, backend, closeStore)
}

// NewWithStore builds the services over an already opened store.
func NewWithStore(cfg *config.Config, logger *zap.Logger, backend repository.RecordStore) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return build(cfg, logger, backend, func() error { return nil })
}

func build(cfg *config.Config, logger *zap.Logger, backend repository.RecordStore, closeStore func() error) (*App, error) {
	metrics := service.NewMetricsService()
	store := service.NewInstrumentedStore(backend, cfg.Store.Driver, cfg.Store.Timeout, metrics, logger)
	repo := repository.NewStudentRepository(store, cfg.Store.Key).WithLogger(logger.Named("repository"))
	students := service.NewStudentService(repo, seed.Students, service.NewValidator(), metrics, logger.Named("students"))

	exports := service.NewExportService(students, nil, logger.Named("exports"))
	var queue *jobs.Queue
	if cfg.Exports.StorageDir != "" {
		archive, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			_ = closeStore()
			return nil, err
		}
		exports = service.NewExportService(students, archive, logger.Named("exports"))
		queue = jobs.NewQueue("export-archive", exports.ArchiveJob, jobs.QueueConfig{
			Workers:    1,
			MaxRetries: 2,
			RetryDelay: 200 * time.Millisecond,
			Logger:     logger.Named("jobs"),
		})
		queue.Start(context.Background())
		exports.UseArchiveQueue(queue)
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics,
		Store:        store,
		Students:     students,
		Exports:      exports,
		archiveQueue: queue,
		closeStore:   closeStore,
	}, nil
}

// RouterDeps exposes the services to the HTTP surface.
func (a *App) RouterDeps() handler.RouterDeps {
	return handler.RouterDeps{
		Students: a.Students,
		Exports:  a.Exports,
		Metrics:  a.Metrics,
		Ready:    a.Ready,
	}
}

// Ready probes the record store with a read of the roster key. The
// instrumented store applies the configured timeout.
func (a *App) Ready() error {
	_, err := a.Store.Get(context.Background(), a.Config.Store.Key)
	if err != nil && !isKeyNotFound(err) {
		return err
	}
	return nil
}

// Close flushes queued export archives and releases the record store.
func (a *App) Close() error {
	if a.archiveQueue != nil {
		a.archiveQueue.Stop()
	}
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

func isKeyNotFound(err error) bool {
	return errors.Is(err, appErrors.ErrKeyNotFound)
}
