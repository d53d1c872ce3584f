package keeper

import (
	"context"
	"fmt"
)

// PromiseT is a type-safe view of a Promise using Go generics. It is a
// struct, not an interface, because Go doesn't allow type parameters on
// interface methods.
type PromiseT[T any] struct {
	p *Promise
}

// Typed wraps an untyped Promise. The caller asserts that the task produces
// values of type T.
func Typed[T any](p *Promise) *PromiseT[T] {
	return &PromiseT[T]{p: p}
}

// SubmitTyped submits a typed task and returns a typed Promise.
func SubmitTyped[T any](k *PromiseKeeper, task func(ctx context.Context) (T, error)) *PromiseT[T] {
	p := k.Submit(func(ctx context.Context) (interface{}, error) {
		return task(ctx)
	})
	return &PromiseT[T]{p: p}
}

// Promise returns the underlying untyped Promise.
func (t *PromiseT[T]) Promise() *Promise {
	return t.p
}

// IsReady reports whether the Promise reached a terminal state.
func (t *PromiseT[T]) IsReady() bool {
	return t.p.IsReady()
}

// Err returns the captured failure, or nil.
func (t *PromiseT[T]) Err() error {
	return t.p.Err()
}

// Result returns the typed result. ok is false while the Promise is not
// completed or when the value is not a T.
func (t *PromiseT[T]) Result() (T, bool) {
	var zero T
	if t.p.Status() != StatusCompleted {
		return zero, false
	}
	typed, ok := t.p.Result().(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Await blocks until the Promise reaches a terminal state and returns the
// typed result.
func (t *PromiseT[T]) Await(ctx context.Context) (T, error) {
	var zero T
	result, err := t.p.Await(ctx)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("keeper: type assertion failed: %T is not the awaited type", result)
	}
	return typed, nil
}
