package vision

import (
	"context"
	"sync"
	"sync/atomic"
)

// Handle lazily builds an expensive client or model once and hands the same
// instance to every later caller. A failed initialisation is not remembered,
// so the next Get tries again.
type Handle[T any] struct {
	mu    sync.Mutex
	ready atomic.Bool
	val   T
	init  func(context.Context) (T, error)
}

func NewHandle[T any](init func(context.Context) (T, error)) *Handle[T] {
	return &Handle[T]{init: init}
}

// Ready returns a handle that is already initialised with val.
func Ready[T any](val T) *Handle[T] {
	h := &Handle[T]{val: val}
	h.ready.Store(true)
	return h
}

func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	if h.ready.Load() {
		return h.val, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ready.Load() {
		return h.val, nil
	}

	val, err := h.init(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	h.val = val
	h.ready.Store(true)
	return val, nil
}
