package keeper

import (
	"errors"
	"testing"
)

func TestWorkerPool_StartStop(t *testing.T) {
	pk, _ := New(WithWorkers(2), WithAutoStart(false), WithAutoStop(false))
	pool := pk.pool

	if pool.IsRunning() {
		t.Error("IsRunning() = true before Start()")
	}

	if err := pool.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !pool.IsRunning() {
		t.Error("IsRunning() = false after Start()")
	}

	if err := pool.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	pool.Stop(true)
	if pool.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}

	// Idempotent.
	pool.Stop(true)
}

func TestWorkerPool_Workers(t *testing.T) {
	pk, _ := New(WithWorkers(5), WithAutoStart(false))
	if got := pk.pool.Workers(); got != 5 {
		t.Errorf("Workers() = %d, want 5", got)
	}
}

func TestWorkerPool_RestartAfterStop(t *testing.T) {
	pk, _ := New(WithWorkers(1), WithAutoStart(false), WithAutoStop(false))
	pool := pk.pool

	if err := pool.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	pool.Stop(true)

	if err := pool.Start(); err != nil {
		t.Fatalf("restart Start() error = %v", err)
	}
	pool.Stop(true)
}
