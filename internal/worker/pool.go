package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Job is one file to scan. Index is the file's position in the scan order.
type Job struct {
	Index int
	Path  string
}

// JobFunc processes a single file job
type JobFunc func(ctx context.Context, job Job) error

// PoolConfig holds configuration for the worker pool
type PoolConfig struct {
	NumWorkers int
	QueueSize  int
}

// WorkerPool is a pool of workers that process file jobs
type WorkerPool struct {
	config   PoolConfig
	workers  []*worker
	jobQueue chan *job

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	// Metrics
	jobsProcessed uint64
	jobsFailed    uint64
	workersActive uint64
}

// worker represents a single worker in the pool
type worker struct {
	id       int
	pool     *WorkerPool
	jobQueue chan *job
	jobFunc  JobFunc

	// Metrics
	jobsProcessed uint64
	jobsFailed    uint64
	lastActive    time.Time
	mu            sync.RWMutex
}

// job represents a unit of work
type job struct {
	Job
	ctx      context.Context
	resultCh chan error
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(config PoolConfig, jobFunc JobFunc) (*WorkerPool, error) {
	if jobFunc == nil {
		return nil, errors.New("job function is required")
	}

	if config.NumWorkers <= 0 {
		config.NumWorkers = 4 // Default
	}

	if config.QueueSize <= 0 {
		config.QueueSize = config.NumWorkers * 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		config:   config,
		workers:  make([]*worker, config.NumWorkers),
		jobQueue: make(chan *job, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < config.NumWorkers; i++ {
		pool.workers[i] = &worker{
			id:       i,
			pool:     pool,
			jobQueue: pool.jobQueue,
			jobFunc:  jobFunc,
		}
	}

	return pool, nil
}

// Start starts all workers in the pool
func (p *WorkerPool) Start() {
	for _, w := range p.workers {
		p.wg.Add(1)
		go w.run()
	}
}

// Run submits every job and returns their errors in job order, so
// errs[i] belongs to jobs[i] regardless of which worker finished first.
// Jobs that could not be queued because ctx ended report ctx.Err().
// Run must return before Stop is called.
func (p *WorkerPool) Run(ctx context.Context, jobs []Job) []error {
	queued := make([]*job, len(jobs))
	for i, j := range jobs {
		queued[i] = p.newJob(ctx, j)
	}

	go func() {
		for _, j := range queued {
			if err := p.enqueue(ctx, j); err != nil {
				j.resultCh <- err
			}
		}
	}()

	errs := make([]error, len(jobs))
	for i, j := range queued {
		errs[i] = <-j.resultCh
	}
	return errs
}

func (p *WorkerPool) newJob(ctx context.Context, j Job) *job {
	return &job{
		Job:      j,
		ctx:      ctx,
		resultCh: make(chan error, 1),
	}
}

func (p *WorkerPool) enqueue(ctx context.Context, j *job) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolClosed
	default:
	}

	select {
	case p.jobQueue <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

// Stop gracefully stops the worker pool. Queued jobs are drained first.
func (p *WorkerPool) Stop() error {
	p.stopOnce.Do(func() {
		p.cancel()
		close(p.jobQueue)
		p.wg.Wait()
	})
	return nil
}

// Metrics returns worker pool statistics
func (p *WorkerPool) Metrics() PoolMetrics {
	workerMetrics := make([]WorkerMetrics, len(p.workers))
	for i, w := range p.workers {
		workerMetrics[i] = w.metrics()
	}

	return PoolMetrics{
		NumWorkers:    len(p.workers),
		JobsProcessed: atomic.LoadUint64(&p.jobsProcessed),
		JobsFailed:    atomic.LoadUint64(&p.jobsFailed),
		WorkersActive: atomic.LoadUint64(&p.workersActive),
		WorkerMetrics: workerMetrics,
	}
}

// run is the main worker loop
func (w *worker) run() {
	defer w.pool.wg.Done()

	for j := range w.jobQueue {
		w.processJob(j)
	}
}

// processJob processes a single job
func (w *worker) processJob(j *job) {
	atomic.AddUint64(&w.pool.workersActive, 1)
	defer atomic.AddUint64(&w.pool.workersActive, ^uint64(0)) // Decrement

	w.mu.Lock()
	w.lastActive = time.Now()
	w.mu.Unlock()

	err := j.ctx.Err()
	if err == nil {
		err = w.jobFunc(j.ctx, j.Job)
	}

	atomic.AddUint64(&w.jobsProcessed, 1)
	atomic.AddUint64(&w.pool.jobsProcessed, 1)

	if err != nil {
		atomic.AddUint64(&w.jobsFailed, 1)
		atomic.AddUint64(&w.pool.jobsFailed, 1)
	}

	j.resultCh <- err
}

// metrics returns worker metrics
func (w *worker) metrics() WorkerMetrics {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WorkerMetrics{
		ID:            w.id,
		JobsProcessed: atomic.LoadUint64(&w.jobsProcessed),
		JobsFailed:    atomic.LoadUint64(&w.jobsFailed),
		LastActive:    w.lastActive,
	}
}

// PoolMetrics holds worker pool statistics
type PoolMetrics struct {
	NumWorkers    int
	JobsProcessed uint64
	JobsFailed    uint64
	WorkersActive uint64
	WorkerMetrics []WorkerMetrics
}

// WorkerMetrics holds individual worker statistics
type WorkerMetrics struct {
	ID            int
	JobsProcessed uint64
	JobsFailed    uint64
	LastActive    time.Time
}

// SuccessRate returns the job success rate percentage (0-100)
func (m PoolMetrics) SuccessRate() float64 {
	total := m.JobsProcessed
	if total == 0 {
		return 100.0
	}
	successful := total - m.JobsFailed
	return (float64(successful) / float64(total)) * 100.0
}
