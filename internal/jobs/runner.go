package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory queue.
	QueueSize int

	// StuckAfter is how long a job can sit processing, or pending without
	// being queued, before the monitor queues it again.
	StuckAfter time.Duration

	// StuckCheckInterval is how often stuck jobs are looked for.
	// If zero, defaults to 5 minutes.
	StuckCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:        2,
		QueueSize:          100,
		StuckAfter:         30 * time.Minute,
		StuckCheckInterval: 5 * time.Minute,
	}
}

// Runner persists, queues and executes jobs.
type Runner struct {
	store    Store
	registry *Registry
	queue    *Queue
	config   RunnerConfig
	logger   *slog.Logger
	observer Observer

	// inFlight holds the ids of jobs queued or executing in this process.
	inFlight sync.Map

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	started atomic.Bool
}

// NewRunner creates a Runner. registry is consulted when recovering jobs
// persisted by an earlier process.
func NewRunner(store Store, registry *Registry, config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "job_runner"))

	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		config.WorkerCount = 1
	}
	if config.StuckCheckInterval <= 0 {
		config.StuckCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:    store,
		registry: registry,
		queue:    NewQueue(config.QueueSize, logger),
		config:   config,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetObserver registers an observer for finished jobs. Call before Start.
func (r *Runner) SetObserver(o Observer) {
	r.observer = o
}

// Submit persists job and queues it for execution.
// A job that is saved but cannot be queued stays pending until the stuck-job
// monitor or the next Start queues it. Before Start the job is only saved.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.store.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	if !r.started.Load() {
		return nil
	}
	if err := r.enqueue(job); err != nil {
		logger.FromContextOrDefault(ctx, r.logger).Warn("job saved but not queued",
			slog.String("job_id", job.ID()),
			slog.String("job_type", job.Type()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Start recovers unfinished jobs and starts the workers and the stuck-job monitor.
func (r *Runner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}
	r.started.Store(true)

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	if r.config.StuckAfter > 0 {
		r.wg.Add(1)
		go r.stuckJobMonitor()
	}

	r.logger.Info("job runner started", slog.Int("worker_count", r.config.WorkerCount))
	return nil
}

// Stop signals the workers to finish and waits for them. A job already
// executing runs to completion; queued jobs stay pending in the store.
func (r *Runner) Stop() {
	r.once.Do(func() {
		r.cancel()
		r.wg.Wait()
		r.queue.Close()
		r.logger.Info("job runner stopped")
	})
}

// Recover queues pending jobs and resets interrupted processing jobs.
func (r *Runner) Recover(ctx context.Context) error {
	pending, err := r.store.ListByStatus(ctx, StatusPending, 0)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}
	processing, err := r.store.ListByStatus(ctx, StatusProcessing, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, rec := range pending {
		r.requeue(ctx, rec, false)
	}
	for _, rec := range processing {
		r.requeue(ctx, rec, true)
	}
	return nil
}

// requeue rebuilds rec and queues it, resetting its status first when reset is set.
func (r *Runner) requeue(ctx context.Context, rec Record, reset bool) {
	log := r.logger.With(slog.String("job_id", rec.ID), slog.String("job_type", rec.Type))

	job, err := r.registry.Build(rec)
	if err != nil {
		log.Error("cannot rebuild job, marking failed", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateStatus(ctx, rec.ID, StatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark job failed", slog.String("error", updateErr.Error()))
		}
		return
	}

	if _, busy := r.inFlight.Load(rec.ID); busy {
		return
	}

	if reset {
		if err := r.store.UpdateStatus(ctx, rec.ID, StatusPending, "reset after interruption"); err != nil {
			log.Error("failed to reset job status", slog.String("error", err.Error()))
			return
		}
	}

	if err := r.enqueue(job); err != nil {
		log.Error("failed to requeue job", slog.String("error", err.Error()))
	}
}

// enqueue queues job unless it is already queued or executing here.
func (r *Runner) enqueue(job Job) error {
	if _, busy := r.inFlight.LoadOrStore(job.ID(), struct{}{}); busy {
		return nil
	}
	if err := r.queue.Enqueue(job); err != nil {
		r.inFlight.Delete(job.ID())
		return err
	}
	return nil
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))
	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return
		case job, ok := <-r.queue.Channel():
			if !ok {
				return
			}
			r.process(job, id)
			r.inFlight.Delete(job.ID())
		}
	}
}

func (r *Runner) process(job Job, workerID int) {
	log := r.logger.With(
		slog.String("job_id", job.ID()),
		slog.String("job_type", job.Type()),
		slog.Int("worker_id", workerID),
	)
	// Jobs outlive the runner context so Stop lets them finish.
	ctx := logger.WithLogger(context.WithoutCancel(r.ctx), log)

	if err := r.store.UpdateStatus(ctx, job.ID(), StatusProcessing, ""); err != nil {
		log.Error("failed to update job status to processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing job")
	start := time.Now()
	err := job.Execute(ctx)
	elapsed := time.Since(start)

	status := StatusCompleted
	errMsg := ""
	if err != nil {
		status = StatusFailed
		errMsg = err.Error()
		log.Error("job execution failed", slog.String("error", errMsg))
	} else {
		log.Info("job completed successfully", slog.Duration("elapsed", elapsed))
	}

	if updateErr := r.store.UpdateStatus(ctx, job.ID(), status, errMsg); updateErr != nil {
		log.Error("failed to record job outcome",
			slog.String("status", string(status)),
			slog.String("error", updateErr.Error()))
	}
	if r.observer != nil {
		r.observer.JobFinished(job.Type(), status, elapsed)
	}
}

func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckJobs()
		}
	}
}

// resetStuckJobs queues jobs left processing by a lost worker and pending
// jobs that never made it into the queue. Jobs still queued or executing
// in this process are skipped.
func (r *Runner) resetStuckJobs() {
	stuck, err := r.store.ListByStatus(r.ctx, StatusProcessing, r.config.StuckAfter)
	if err != nil {
		r.logger.Error("failed to check for stuck jobs", slog.String("error", err.Error()))
		return
	}
	stranded, err := r.store.ListByStatus(r.ctx, StatusPending, r.config.StuckAfter)
	if err != nil {
		r.logger.Error("failed to check for stranded jobs", slog.String("error", err.Error()))
		return
	}
	if len(stuck) == 0 && len(stranded) == 0 {
		return
	}

	r.logger.Info("found stuck jobs",
		slog.Int("processing_count", len(stuck)),
		slog.Int("pending_count", len(stranded)))
	for _, rec := range stuck {
		r.requeue(r.ctx, rec, true)
	}
	for _, rec := range stranded {
		r.requeue(r.ctx, rec, false)
	}
}
