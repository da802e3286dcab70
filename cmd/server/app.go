package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/phrazzld/tasks-api/internal/blob"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/jobs"
	"github.com/phrazzld/tasks-api/internal/platform/gcs"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/redis"
	"github.com/phrazzld/tasks-api/internal/platform/telemetry"
	"github.com/phrazzld/tasks-api/internal/ratelimit"
	"github.com/phrazzld/tasks-api/internal/repository"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// metricsNamespace prefixes every exported Prometheus metric.
const metricsNamespace = "tasks_api"

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	docs    docstore.Store
	blobs   blob.Store
	redis   *goredis.Client
	limiter ratelimit.Limiter
	tracer  *sdktrace.TracerProvider
	metrics *telemetry.Metrics

	// Services
	tokens            auth.TokenService
	userService       service.UserService
	taskService       service.TaskService
	attachmentService service.AttachmentService

	// Background work
	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
}

// newApplication creates a new application instance with all dependencies initialized.
// Backends are chosen by the configured drivers. On failure every resource
// opened so far is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *application, err error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: telemetry.NewMetrics(metricsNamespace),
	}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	app.tracer, err = telemetry.InitTracerProvider(ctx, cfg.Telemetry, cfg.Server.Environment, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if app.docs, err = openDocumentStore(ctx, cfg.Database, logger); err != nil {
		return nil, err
	}
	if app.blobs, err = openBlobStore(ctx, cfg.Blob, logger); err != nil {
		return nil, err
	}
	if err = app.setupRateLimiter(ctx); err != nil {
		return nil, err
	}

	app.tokens, err = auth.NewTokenService(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	users := repository.NewUserRepository(app.docs, logger)
	tasks := repository.NewTaskRepository(app.docs, logger)

	app.attachmentService = service.NewAttachmentService(app.blobs, service.AttachmentConfig{
		MaxUploadBytes: cfg.Blob.MaxUploadBytes,
		SignedURLTTL:   cfg.Blob.SignedURLTTL,
	}, logger)

	if app.jobRunner, err = app.setupJobRunner(); err != nil {
		return nil, err
	}

	// Task deletions reach the job runner through the event emitter.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(service.NewAttachmentPurgeHandler(app.attachmentService, app.jobRunner, logger))

	app.userService = service.NewUserService(users, app.tokens, logger)
	app.taskService = service.NewTaskService(tasks, app.eventEmitter, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// openDocumentStore connects the configured document store backend.
func openDocumentStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (docstore.Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("using in-memory document store; data is lost on restart")
		return docstore.NewMemoryStore(), nil
	case "postgres":
		db, err := openDatabase(ctx, cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		return postgres.NewDocumentStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// openBlobStore connects the configured attachment storage backend.
func openBlobStore(ctx context.Context, cfg config.BlobConfig, logger *slog.Logger) (blob.Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("using in-memory blob store; attachments are lost on restart")
		return blob.NewMemoryStore(cfg.PublicUploads), nil
	case "gcs":
		store, err := gcs.New(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blob store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Driver)
	}
}

// setupRateLimiter uses Redis when a URL is configured so that every
// instance shares one quota, and an in-process limiter otherwise.
func (app *application) setupRateLimiter(ctx context.Context) error {
	policy := ratelimit.Policy{
		Requests: app.config.RateLimit.Requests,
		Window:   app.config.RateLimit.Window,
	}

	if app.config.Redis.URL == "" {
		app.limiter = ratelimit.NewMemoryLimiter(policy)
		return nil
	}

	client, err := redis.Connect(ctx, app.config.Redis.URL, app.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client
	app.limiter = redis.NewLimiter(client, policy, app.logger)
	return nil
}

// setupJobRunner initializes and starts the background job processor.
func (app *application) setupJobRunner() (*jobs.Runner, error) {
	registry := jobs.NewRegistry()
	registry.Register(service.AttachmentPurgeJobType, service.AttachmentPurgeJobFactory(app.attachmentService))

	runner := jobs.NewRunner(
		jobs.NewDocumentStore(app.docs, time.Now, app.logger),
		registry,
		jobs.RunnerConfig{
			WorkerCount:        app.config.Jobs.WorkerCount,
			QueueSize:          app.config.Jobs.QueueSize,
			StuckAfter:         app.config.Jobs.StuckAfter,
			StuckCheckInterval: app.config.Jobs.StuckCheckInterval,
		},
		app.logger,
	)
	runner.SetObserver(app.metrics)

	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}
	return runner, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources in the reverse order of their creation.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}

	if closer, ok := app.blobs.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing blob store", slog.String("error", err.Error()))
		}
	}

	if app.docs != nil {
		if err := app.docs.Close(); err != nil {
			app.logger.Error("error closing document store", slog.String("error", err.Error()))
		}
	}

	if app.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.tracer.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			app.logger.Error("error shutting down tracer provider", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
