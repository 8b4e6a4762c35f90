// ABOUTME: Generation worker pool runs mockup pipeline jobs in the background
// ABOUTME: Provides a bounded job queue with per-job result channels and graceful shutdown

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mockups-app-api/core/domain"
	"mockups-app-api/core/interfaces"
	"mockups-app-api/core/pipeline"
)

// Generator runs one pipeline; *pipeline.Generator satisfies it
type Generator interface {
	Generate(ctx context.Context, req domain.GenerateRequest, progress pipeline.ProgressFunc) *domain.PipelineResult
}

// GenerationJob represents one queued pipeline run
type GenerationJob struct {
	ID       string
	Request  domain.GenerateRequest
	Context  context.Context
	Progress pipeline.ProgressFunc
	ResultCh chan<- JobResult
}

// JobResult is delivered once per job on its result channel
type JobResult struct {
	JobID  string
	Result *domain.PipelineResult
	Err    error
}

// WorkerConfig holds configuration for the generation pool
type WorkerConfig struct {
	MaxWorkers    int
	QueueSize     int
	SubmitTimeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxWorkers:    2,
		QueueSize:     16,
		SubmitTimeout: 5 * time.Second,
	}
}

// GenerationPool manages background generation processing
type GenerationPool struct {
	generator     Generator
	logger        interfaces.Logger
	jobQueue      chan *GenerationJob
	maxWorkers    int
	submitTimeout time.Duration
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex
	running       bool
	stopped       bool
}

// NewGenerationPool creates a new generation pool
func NewGenerationPool(generator Generator, logger interfaces.Logger, config WorkerConfig) *GenerationPool {
	defaults := DefaultWorkerConfig()
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = defaults.MaxWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = defaults.SubmitTimeout
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &GenerationPool{
		generator:     generator,
		logger:        logger,
		jobQueue:      make(chan *GenerationJob, config.QueueSize),
		maxWorkers:    config.MaxWorkers,
		submitTimeout: config.SubmitTimeout,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start starts the worker pool
func (p *GenerationPool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	if p.running {
		return nil
	}

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}

	p.running = true
	p.logger.Info("Generation pool started", map[string]interface{}{
		"workers":    p.maxWorkers,
		"queue_size": cap(p.jobQueue),
	})
	return nil
}

// Stop cancels in-flight runs, waits for workers and fails every queued job
func (p *GenerationPool) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	p.cancel()
	p.wg.Wait()

	// Nothing can enqueue while the write lock is held
	drained := 0
	for {
		select {
		case job := <-p.jobQueue:
			deliver(job, JobResult{JobID: job.ID, Err: ErrPoolStopped})
			drained++
			continue
		default:
		}
		break
	}

	p.running = false
	p.stopped = true
	p.logger.Info("Generation pool stopped", map[string]interface{}{
		"drained_jobs": drained,
	})
	return nil
}

// SubmitJob enqueues a job, waiting up to the submit timeout for queue space
func (p *GenerationPool) SubmitJob(job *GenerationJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Context == nil {
		job.Context = context.Background()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return ErrWorkerNotRunning
	}

	timer := time.NewTimer(p.submitTimeout)
	defer timer.Stop()

	select {
	case p.jobQueue <- job:
		return nil
	case <-job.Context.Done():
		return job.Context.Err()
	case <-timer.C:
		return ErrQueueFull
	}
}

// Submit enqueues a run and returns a buffered channel carrying its single result
func (p *GenerationPool) Submit(ctx context.Context, req domain.GenerateRequest, progress pipeline.ProgressFunc) (string, <-chan JobResult, error) {
	results := make(chan JobResult, 1)
	job := &GenerationJob{
		Request:  req,
		Context:  ctx,
		Progress: progress,
		ResultCh: results,
	}
	if err := p.SubmitJob(job); err != nil {
		return "", nil, err
	}
	return job.ID, results, nil
}

// QueueLength reports jobs waiting for a worker
func (p *GenerationPool) QueueLength() int {
	return len(p.jobQueue)
}

// run is the main loop for each worker
func (p *GenerationPool) run(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobQueue:
			if p.ctx.Err() != nil {
				deliver(job, JobResult{JobID: job.ID, Err: ErrPoolStopped})
				return
			}
			p.processJob(id, job)
		}
	}
}

// processJob runs one job; its context also ends when the pool stops
func (p *GenerationPool) processJob(workerID int, job *GenerationJob) {
	if err := job.Context.Err(); err != nil {
		deliver(job, JobResult{JobID: job.ID, Err: err})
		return
	}

	ctx, cancel := context.WithCancel(job.Context)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	start := time.Now()
	result := p.generator.Generate(ctx, job.Request, job.Progress)

	fields := map[string]interface{}{
		"job_id":   job.ID,
		"worker":   workerID,
		"duration": time.Since(start).String(),
	}
	if result != nil {
		fields["run_id"] = result.RunID
		fields["phase_reached"] = result.PhaseReached.String()
		fields["truncated"] = result.Truncated
	}
	p.logger.Debug("Generation job finished", fields)

	deliver(job, JobResult{JobID: job.ID, Result: result})
}

// deliver sends res without blocking past the job's context
func deliver(job *GenerationJob, res JobResult) {
	if job.ResultCh == nil {
		return
	}
	select {
	case job.ResultCh <- res:
	default:
		select {
		case job.ResultCh <- res:
		case <-job.Context.Done():
		}
	}
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "worker pool is not running"}
	ErrQueueFull        = &WorkerError{Message: "job queue is full"}
	ErrPoolStopped      = &WorkerError{Message: "worker pool has been stopped"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
