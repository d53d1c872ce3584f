package keeper

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// worker repeatedly takes one Promise from the queue and executes it to
// completion. A failing task never kills its worker; the worker exits only
// when its run is stopped and the queue is empty.
type worker struct {
	id     int
	keeper *PromiseKeeper
	run    *poolRun
}

func (w *worker) loop() {
	defer w.run.wg.Done()

	k := w.keeper
	k.logger.Debugf("worker %d started", w.id)
	for {
		p, ok := k.queue.Dequeue(w.run.stopped)
		if !ok {
			k.logger.Debugf("worker %d exiting", w.id)
			return
		}
		w.execute(p)
	}
}

// execute runs one task: transition to running, invoke, publish the terminal
// state, fire the notify callback, dispatch continuations, then let the
// keeper decide whether the pool has drained.
func (w *worker) execute(p *Promise) {
	k := w.keeper
	k.metrics.QueueDepth.Set(float64(k.queue.Size()))
	k.metrics.InFlightTasks.Inc()

	p.markRunning()

	ctx, span := k.startTaskSpan(k.ctx, p)
	start := time.Now()
	result, err := invoke(ctx, p.task)
	elapsed := time.Since(start)

	if err != nil {
		p.fail(err)
		k.failed.Add(1)
		k.logger.Debugf("worker %d: promise %s failed: %v", w.id, p.id, err)
	} else {
		p.complete(result)
		k.completed.Add(1)
	}
	endTaskSpan(span, err)
	k.metrics.InFlightTasks.Dec()
	k.metrics.ObserveTask(elapsed, err)

	w.dispatchNotify(p)

	for _, c := range p.drainContinuations() {
		if serr := k.SubmitPromise(c); serr != nil {
			k.logger.Errorf("worker %d: continuation of promise %s rejected: %v", w.id, p.id, serr)
		}
	}

	k.taskFinished()
}

// dispatchNotify invokes the notify callback exactly once, after the
// terminal transition and before the worker's next dequeue. A panicking
// callback is contained the same way task failures are; the Promise's
// terminal state is already published and cannot be corrupted.
func (w *worker) dispatchNotify(p *Promise) {
	if p.notify == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.keeper.metrics.NotifyFailures.Inc()
			w.keeper.logger.Errorf("worker %d: notify callback for promise %s panicked: %v", w.id, p.id, r)
		}
	}()
	p.notify(p)
}

// invoke runs the task, converting a panic into a captured failure so it
// never escapes into the worker loop.
func invoke(ctx context.Context, task Task) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("keeper: task panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return task(ctx)
}
