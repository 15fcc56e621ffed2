package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWorkerPool(t *testing.T) {
	jobFunc := func(ctx context.Context, job Job) error {
		return nil
	}

	tests := []struct {
		name        string
		config      PoolConfig
		jobFunc     JobFunc
		wantErr     bool
		wantWorkers int
	}{
		{
			name:        "default config",
			config:      PoolConfig{},
			jobFunc:     jobFunc,
			wantWorkers: 4,
		},
		{
			name: "custom config",
			config: PoolConfig{
				NumWorkers: 8,
				QueueSize:  500,
			},
			jobFunc:     jobFunc,
			wantWorkers: 8,
		},
		{
			name:    "missing job func",
			config:  PoolConfig{NumWorkers: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewWorkerPool(tt.config, tt.jobFunc)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWorkerPool() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil {
				defer pool.Stop()

				if len(pool.workers) != tt.wantWorkers {
					t.Errorf("pool has %d workers, want %d", len(pool.workers), tt.wantWorkers)
				}
			}
		})
	}
}

func TestWorkerPool_Run(t *testing.T) {
	var processed uint64
	jobFunc := func(ctx context.Context, job Job) error {
		atomic.AddUint64(&processed, 1)
		return nil
	}

	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 2, QueueSize: 10}, jobFunc)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Stop()

	pool.Start()

	errs := pool.Run(context.Background(), []Job{{Index: 0, Path: "access.log"}})
	if len(errs) != 1 || errs[0] != nil {
		t.Errorf("Run() = %v, want one nil error", errs)
	}

	if atomic.LoadUint64(&processed) != 1 {
		t.Errorf("expected 1 processed job, got %d", processed)
	}
}

func TestWorkerPool_JobError(t *testing.T) {
	expectedErr := errors.New("unreadable")
	jobFunc := func(ctx context.Context, job Job) error {
		return expectedErr
	}

	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 1}, jobFunc)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Stop()

	pool.Start()

	errs := pool.Run(context.Background(), []Job{{Path: "bad.log"}})
	if !errors.Is(errs[0], expectedErr) {
		t.Errorf("Run() error = %v, want %v", errs[0], expectedErr)
	}
}

func TestWorkerPool_RunPreservesOrder(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int]string)

	jobFunc := func(ctx context.Context, job Job) error {
		// Finish out of order
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)

		mu.Lock()
		seen[job.Index] = job.Path
		mu.Unlock()

		if job.Index%3 == 0 {
			return fmt.Errorf("job %d failed", job.Index)
		}
		return nil
	}

	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 4, QueueSize: 2}, jobFunc)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Stop()

	pool.Start()

	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = Job{Index: i, Path: fmt.Sprintf("access.log.%d", i)}
	}

	errs := pool.Run(context.Background(), jobs)
	if len(errs) != len(jobs) {
		t.Fatalf("Run() returned %d results, want %d", len(errs), len(jobs))
	}

	for i, err := range errs {
		wantErr := i%3 == 0
		if (err != nil) != wantErr {
			t.Errorf("errs[%d] = %v, wantErr %v", i, err, wantErr)
		}
		if wantErr && err.Error() != fmt.Sprintf("job %d failed", i) {
			t.Errorf("errs[%d] = %v belongs to another job", i, err)
		}
		if seen[i] != jobs[i].Path {
			t.Errorf("job %d saw path %q, want %q", i, seen[i], jobs[i].Path)
		}
	}
}

func TestWorkerPool_RunEmpty(t *testing.T) {
	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 1}, func(ctx context.Context, job Job) error {
		return nil
	})
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Stop()

	pool.Start()

	if errs := pool.Run(context.Background(), nil); len(errs) != 0 {
		t.Errorf("Run(nil) = %v, want empty", errs)
	}
}

func TestWorkerPool_RunCancelled(t *testing.T) {
	var processed uint64
	jobFunc := func(ctx context.Context, job Job) error {
		atomic.AddUint64(&processed, 1)
		return nil
	}

	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 2}, jobFunc)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Stop()

	pool.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := pool.Run(ctx, []Job{{Index: 0}, {Index: 1}, {Index: 2}})
	for i, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("errs[%d] = %v, want context.Canceled", i, err)
		}
	}

	if atomic.LoadUint64(&processed) != 0 {
		t.Errorf("cancelled jobs should not run, %d did", processed)
	}
}

func TestWorkerPool_Stop(t *testing.T) {
	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 2}, func(ctx context.Context, job Job) error {
		return nil
	})
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}

	pool.Start()

	if err := pool.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Stop is idempotent
	if err := pool.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}

	if errs := pool.Run(context.Background(), []Job{{}}); errs[0] != ErrPoolClosed {
		t.Errorf("expected ErrPoolClosed, got %v", errs[0])
	}
}

func TestWorkerPool_Metrics(t *testing.T) {
	jobFunc := func(ctx context.Context, job Job) error {
		if job.Index%2 == 1 {
			return errors.New("simulated error")
		}
		return nil
	}

	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 4, QueueSize: 100}, jobFunc)
	if err != nil {
		t.Fatalf("NewWorkerPool() error = %v", err)
	}
	defer pool.Stop()

	pool.Start()

	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = Job{Index: i}
	}
	pool.Run(context.Background(), jobs)

	metrics := pool.Metrics()

	if metrics.NumWorkers != 4 {
		t.Errorf("NumWorkers = %d, want 4", metrics.NumWorkers)
	}

	if metrics.JobsProcessed != 10 {
		t.Errorf("JobsProcessed = %d, want 10", metrics.JobsProcessed)
	}

	if metrics.JobsFailed != 5 {
		t.Errorf("JobsFailed = %d, want 5", metrics.JobsFailed)
	}

	if len(metrics.WorkerMetrics) != 4 {
		t.Errorf("expected 4 worker metrics, got %d", len(metrics.WorkerMetrics))
	}

	if rate := metrics.SuccessRate(); rate != 50.0 {
		t.Errorf("SuccessRate = %f, want 50.0", rate)
	}
}

func TestPoolMetrics_Empty(t *testing.T) {
	var m PoolMetrics
	if m.SuccessRate() != 100.0 {
		t.Errorf("SuccessRate() = %f, want 100", m.SuccessRate())
	}
}

func BenchmarkWorkerPool_Run(b *testing.B) {
	pool, _ := NewWorkerPool(PoolConfig{NumWorkers: 10, QueueSize: 100}, func(ctx context.Context, job Job) error {
		return nil
	})
	defer pool.Stop()

	pool.Start()

	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = Job{Index: i}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Run(context.Background(), jobs)
	}
}
