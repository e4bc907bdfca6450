package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/internal/handler"
	"github.com/noah-isme/academic-records/internal/repository"
	"github.com/noah-isme/academic-records/internal/router"
	"github.com/noah-isme/academic-records/internal/service"
	"github.com/noah-isme/academic-records/pkg/config"
	"github.com/noah-isme/academic-records/pkg/export"
	"github.com/noah-isme/academic-records/pkg/jobs"
	"github.com/noah-isme/academic-records/pkg/storage"
)

// App holds the record store and every service built on top of it.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *repository.RecordStore
	Metrics *service.MetricsService

	Students    *service.StudentService
	Subjects    *service.SubjectService
	Semesters   *service.SemesterService
	Enrollments *service.EnrollmentService
	Dashboard   *service.DashboardService
	Exports     *service.ExportService
	Images      *service.ProfileImageService

	purge *jobs.Scheduler
}

// New opens the configured backend, loads the collections and wires the
// services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := service.NewMetricsService()

	store, err := repository.Open(ctx, cfg, repository.StoreOptions{
		KeyPrefix: cfg.Store.KeyPrefix,
		Logger:    logger.Named("store"),
		Observer:  metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	for collection, size := range store.Sizes() {
		metrics.SetCollectionSize(collection, size)
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("prepare export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := service.NewRecordValidator()
	students := service.NewStudentService(store, validate, service.StudentServiceConfig{PageSize: cfg.Students.PageSize}, logger.Named("students"))
	exports := service.NewExportService(students, files, signer, validate, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.ResultTTL,
	}, logger.Named("exports"), export.NewCSVExporter(), export.NewPDFExporter())

	a := &App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Metrics:     metrics,
		Students:    students,
		Subjects:    service.NewSubjectService(store, validate, logger.Named("subjects")),
		Semesters:   service.NewSemesterService(store, validate, logger.Named("semesters")),
		Enrollments: service.NewEnrollmentService(store, validate, logger.Named("enrollments")),
		Dashboard:   service.NewDashboardService(store, service.DashboardServiceConfig{}, logger.Named("dashboard")),
		Exports:     exports,
		Images:      service.NewProfileImageService(store, cfg.Students.MaxImageSizeBytes, metrics, logger.Named("images")),
	}
	a.purge = jobs.NewScheduler("export-purge", func(context.Context) error {
		_, err := exports.PurgeExpired()
		return err
	}, jobs.SchedulerConfig{
		Interval:   cfg.Exports.PurgeInterval,
		MaxRetries: 2,
		RetryDelay: 5 * time.Second,
		RunOnStart: true,
		Logger:     logger.Named("jobs"),
	})
	return a, nil
}

// Routes returns the handler set for the HTTP router.
func (a *App) Routes() router.Dependencies {
	return router.Dependencies{
		Students:    handler.NewStudentHandler(a.Students),
		Images:      handler.NewProfileImageHandler(a.Images),
		Enrollments: handler.NewEnrollmentHandler(a.Enrollments, a.Exports),
		Subjects:    handler.NewSubjectHandler(a.Subjects),
		Semesters:   handler.NewSemesterHandler(a.Semesters),
		Dashboard:   handler.NewDashboardHandler(a.Dashboard),
		Exports:     handler.NewExportHandler(a.Exports),
		Metrics:     handler.NewMetricsHandler(a.Metrics, a.Store.Ping),
		APIPrefix:   a.Config.APIPrefix,
	}
}

// StartBackground launches the periodic export purge.
func (a *App) StartBackground(ctx context.Context) {
	a.purge.Start(ctx)
}

// Close stops background work and releases the store backend.
func (a *App) Close() error {
	a.purge.Stop()
	return a.Store.Close()
}
