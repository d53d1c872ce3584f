package keeper

import (
	"sync"
	"sync/atomic"
)

// poolRun is the state of one start/stop cycle. Each Start creates a fresh
// run so workers from a previous, non-blocking stop can still drain and exit
// on their own flag without interfering with the new generation.
type poolRun struct {
	stop atomic.Bool
	wg   sync.WaitGroup
}

func (r *poolRun) stopped() bool {
	return r.stop.Load()
}

// workerPool owns the worker goroutines for a PromiseKeeper.
type workerPool struct {
	keeper  *PromiseKeeper
	workers int

	mu  sync.Mutex
	run *poolRun
}

func newWorkerPool(k *PromiseKeeper, workers int) *workerPool {
	return &workerPool{keeper: k, workers: workers}
}

// Start spawns the worker goroutines. It fails with ErrAlreadyRunning if the
// pool is running; it never spawns duplicate workers.
func (wp *workerPool) Start() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.run != nil {
		return ErrAlreadyRunning
	}

	run := &poolRun{}
	run.wg.Add(wp.workers)
	for i := 0; i < wp.workers; i++ {
		w := &worker{id: i, keeper: wp.keeper, run: run}
		go w.loop()
	}
	wp.run = run
	return nil
}

// Stop signals all workers to drain the queue and exit. If block is true it
// waits for every worker goroutine to fully exit before returning.
// Idempotent when already stopped.
func (wp *workerPool) Stop(block bool) {
	wp.mu.Lock()
	run := wp.run
	wp.run = nil
	wp.mu.Unlock()

	if run == nil {
		return
	}

	run.stop.Store(true)
	wp.keeper.queue.Wake()

	if block {
		run.wg.Wait()
	}
}

// IsRunning reports whether the pool has been started and not stopped.
func (wp *workerPool) IsRunning() bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.run != nil
}

// Workers returns the configured worker count.
func (wp *workerPool) Workers() int {
	return wp.workers
}
