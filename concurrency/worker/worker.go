package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrPoolStopped = errors.New("worker pool stopped")
)

// Config represents pool configuration
type Config struct {
	MaxWorkers  int           `mapstructure:"max_workers"`  // maximum number of workers
	QueueSize   int           `mapstructure:"queue_size"`   // task queue size
	TaskTimeout time.Duration `mapstructure:"task_timeout"` // timeout for single task, 0 disables it
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers:  4,
		QueueSize:   256,
		TaskTimeout: 30 * time.Second,
	}
}

// Validate validates configuration
func (cfg *Config) Validate() error {
	if cfg.MaxWorkers < 1 {
		return errors.New("max workers must be greater than 0")
	}
	if cfg.QueueSize < 1 {
		return errors.New("queue size must be greater than 0")
	}
	if cfg.TaskTimeout < 0 {
		return errors.New("task timeout must be greater than or equal to 0")
	}
	return nil
}

// Task is a unit of work. The context is the submitter's context, bounded by
// the task timeout and the pool lifetime.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	task Task
}

// Metrics tracks pool's operational metrics
type Metrics struct {
	ActiveWorkers  atomic.Int64
	PendingTasks   atomic.Int64
	CompletedTasks atomic.Int64
	FailedTasks    atomic.Int64
	ProcessingTime atomic.Int64 // nanoseconds
}

// Reset resets all metrics to zero
func (m *Metrics) Reset() {
	m.ActiveWorkers.Store(0)
	m.PendingTasks.Store(0)
	m.CompletedTasks.Store(0)
	m.FailedTasks.Store(0)
	m.ProcessingTime.Store(0)
}

// Stats is a point-in-time copy of Metrics
type Stats struct {
	ActiveWorkers  int64         `json:"active_workers"`
	PendingTasks   int64         `json:"pending_tasks"`
	CompletedTasks int64         `json:"completed_tasks"`
	FailedTasks    int64         `json:"failed_tasks"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Pool runs tasks on a fixed set of goroutines. Live sources share one pool
// for their re-queries so a burst of change signals across many subscriptions
// cannot fan out into unbounded concurrent reads.
//
// Usage:
//
//	pool := worker.NewPool(&worker.Config{
//	    MaxWorkers:  4,
//	    QueueSize:   256,
//	    TaskTimeout: 30 * time.Second,
//	})
//	pool.Start()
//	defer pool.Stop(context.Background())
//
//	err := pool.SubmitContext(ctx, func(ctx context.Context) error {
//	    docs, err := query(ctx)
//	    ...
//	})
type Pool struct {
	// Configuration
	maxWorkers  int
	queueSize   int
	taskTimeout time.Duration

	// Runtime components
	tasks   chan job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	started atomic.Bool

	// Metrics
	metrics *Metrics
}

// NewPool creates a new worker pool
func NewPool(cfg *Config) *Pool {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		maxWorkers:  cfg.MaxWorkers,
		queueSize:   cfg.QueueSize,
		taskTimeout: cfg.TaskTimeout,
		tasks:       make(chan job, cfg.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &Metrics{},
	}
}

// Start starts the worker pool. Calling it more than once has no effect.
func (p *Pool) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop stops the worker pool. Queued tasks that have not started are dropped.
func (p *Pool) Stop(ctx context.Context) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.cancel()
	close(p.tasks)
	p.mu.Unlock()

	// Wait for all workers to finish with timeout
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
		return // timeout or cancelled
	}
}

// Submit queues a task without blocking
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- job{ctx: ctx, task: task}:
		p.metrics.PendingTasks.Add(1)
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitContext queues a task, waiting for queue space until ctx is done
func (p *Pool) SubmitContext(ctx context.Context, task Task) error {
	for {
		err := p.Submit(ctx, task)
		if !errors.Is(err, ErrQueueFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ctx.Done():
			return ErrPoolStopped
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// worker represents a worker goroutine
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.tasks:
			if !ok {
				return
			}
			p.processTask(j)
		}
	}
}

// processTask processes a single task
func (p *Pool) processTask(j job) {
	start := time.Now()
	p.metrics.ActiveWorkers.Add(1)
	p.metrics.PendingTasks.Add(-1)

	var err error
	defer func() {
		p.metrics.ActiveWorkers.Add(-1)
		p.metrics.ProcessingTime.Add(time.Since(start).Nanoseconds())

		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
		if err != nil {
			p.metrics.FailedTasks.Add(1)
		} else {
			p.metrics.CompletedTasks.Add(1)
		}
	}()

	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if j.ctx != nil && j.ctx.Err() != nil {
		err = j.ctx.Err()
		return
	}

	// Bound the task by the pool lifetime and its timeout
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()
	if p.taskTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, p.taskTimeout)
		defer cancelTimeout()
	}

	err = j.task(ctx)
}

// Stats returns the current metrics
func (p *Pool) Stats() Stats {
	return Stats{
		ActiveWorkers:  p.metrics.ActiveWorkers.Load(),
		PendingTasks:   p.metrics.PendingTasks.Load(),
		CompletedTasks: p.metrics.CompletedTasks.Load(),
		FailedTasks:    p.metrics.FailedTasks.Load(),
		ProcessingTime: time.Duration(p.metrics.ProcessingTime.Load()),
	}
}

// IsBusy returns whether the pool is busy
func (p *Pool) IsBusy() bool {
	return p.metrics.ActiveWorkers.Load() >= int64(p.maxWorkers) ||
		p.metrics.PendingTasks.Load() >= int64(p.queueSize)
}

// IsIdle returns whether the pool is idle
func (p *Pool) IsIdle() bool {
	return p.metrics.ActiveWorkers.Load() == 0
}
