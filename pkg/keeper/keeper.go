package keeper

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	obsprom "github.com/keeperio/promisekeeper/pkg/observability/prometheus"
)

// PromiseKeeper owns one task queue and one worker pool. It exposes
// submission and lifecycle operations and implements the auto-start and
// auto-stop policies. Multiple keepers may coexist with fully isolated
// state.
type PromiseKeeper struct {
	workers   int
	autoStart bool
	autoStop  bool

	queue  *taskQueue
	pool   *workerPool
	logger Logger
	ctx    context.Context

	// mu serializes submission against the auto-stop quiescence check so a
	// racing submit either enqueues before the stop decision or observes the
	// stopped pool and restarts it.
	mu sync.Mutex

	// pending counts tasks that are queued or executing (including the
	// window between dequeue and start-of-execution).
	pending   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64

	metrics *obsprom.Metrics
}

// Stats is a point-in-time snapshot of keeper activity.
type Stats struct {
	Pending    int64 // queued or executing tasks
	Completed  int64 // tasks that finished normally
	Failed     int64 // tasks that finished with a captured failure
	QueueDepth int   // entries currently queued
	Workers    int   // configured worker count
	Running    bool  // pool lifecycle state
}

// New creates a PromiseKeeper. Defaults: one worker, auto-start and
// auto-stop enabled. A worker count below 1 fails fast.
func New(opts ...Option) (*PromiseKeeper, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, o.Workers)
	}

	k := &PromiseKeeper{
		workers:   o.Workers,
		autoStart: o.AutoStart,
		autoStop:  o.AutoStop,
		queue:     newTaskQueue(),
		logger:    o.Logger,
		ctx:       o.Context,
		metrics:   o.Metrics,
	}
	k.pool = newWorkerPool(k, o.Workers)

	if o.Iterator != nil {
		go func() {
			for p := range o.Iterator {
				if err := k.SubmitPromise(p); err != nil {
					k.logger.Errorf("iterator promise rejected: %v", err)
				}
			}
		}()
	}

	return k, nil
}

// FromConfig creates a PromiseKeeper from a Config, typically loaded from a
// YAML or JSON file. Additional options override the config.
func FromConfig(cfg Config, opts ...Option) (*PromiseKeeper, error) {
	base := []Option{
		WithWorkers(cfg.Workers),
		WithAutoStart(cfg.AutoStart),
		WithAutoStop(cfg.AutoStop),
	}
	return New(append(base, opts...)...)
}

// Submit wraps the task in a new Promise, enqueues it, and returns the
// Promise immediately. It never blocks on task execution. If auto-start is
// enabled and the pool is not running, the pool is started.
func (k *PromiseKeeper) Submit(task Task) *Promise {
	p := NewPromise(task)
	k.submit(p)
	return p
}

// SubmitWithNotify is Submit with a notify callback that is invoked exactly
// once, after the Promise's terminal transition, receiving the Promise.
func (k *PromiseKeeper) SubmitWithNotify(task Task, notify Notify) *Promise {
	p := NewPromiseWithNotify(task, notify)
	k.submit(p)
	return p
}

// SubmitPromise enqueues an already-constructed Promise. It fails with
// ErrNilPromise when given nil.
func (k *PromiseKeeper) SubmitPromise(p *Promise) error {
	if p == nil {
		return ErrNilPromise
	}
	k.submit(p)
	return nil
}

func (k *PromiseKeeper) submit(p *Promise) {
	p.bind(k)

	k.mu.Lock()
	defer k.mu.Unlock()

	k.pending.Add(1)
	k.queue.Enqueue(p)
	k.metrics.TasksSubmitted.Inc()
	k.metrics.QueueDepth.Set(float64(k.queue.Size()))

	if k.autoStart && !k.pool.IsRunning() {
		if err := k.startPool(); err != nil {
			// Lost a start race within this keeper; workers are up either way.
			k.logger.Debugf("auto-start skipped: %v", err)
		}
	}
}

// Start starts the worker pool. It fails with ErrAlreadyRunning if the pool
// is already running.
func (k *PromiseKeeper) Start() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.startPool()
}

func (k *PromiseKeeper) startPool() error {
	if err := k.pool.Start(); err != nil {
		return err
	}
	k.metrics.WorkersRunning.Set(float64(k.workers))
	k.logger.Debugf("pool started with %d workers", k.workers)
	return nil
}

// Stop signals all workers to finish their current task, drain the queue,
// and exit. If block is true it waits for every worker goroutine to exit.
// Stopping an already-stopped keeper is a no-op.
func (k *PromiseKeeper) Stop(block bool) {
	k.stopPool(block)
}

func (k *PromiseKeeper) stopPool(block bool) {
	k.pool.Stop(block)
	k.metrics.WorkersRunning.Set(0)
}

// IsRunning reports whether the worker pool has been started and not
// stopped.
func (k *PromiseKeeper) IsRunning() bool {
	return k.pool.IsRunning()
}

// Workers returns the configured worker count.
func (k *PromiseKeeper) Workers() int {
	return k.workers
}

// Stats returns a best-effort snapshot of keeper activity.
func (k *PromiseKeeper) Stats() Stats {
	return Stats{
		Pending:    k.pending.Load(),
		Completed:  k.completed.Load(),
		Failed:     k.failed.Load(),
		QueueDepth: k.queue.Size(),
		Workers:    k.workers,
		Running:    k.pool.IsRunning(),
	}
}

// taskFinished is called by a worker after a task fully finished (terminal
// transition, notify, continuations). It performs the auto-stop quiescence
// check under the controller mutex so it is atomic with respect to submit.
func (k *PromiseKeeper) taskFinished() {
	remaining := k.pending.Add(-1)
	if !k.autoStop || remaining != 0 {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pending.Load() == 0 && k.queue.IsEmpty() && k.pool.IsRunning() {
		k.logger.Debugf("queue drained, auto-stopping pool")
		// Non-blocking: the calling worker is one of the goroutines that
		// must exit.
		k.stopPool(false)
	}
}
