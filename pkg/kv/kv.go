// Package kv provides the durable record backends the webhook store persists to.
package kv

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("kv: key not found")

// WatchFunc is called with the key of a record after it changed.
type WatchFunc func(key string)

type KV interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value atomically and fires the watchers.
	Set(ctx context.Context, key string, value []byte) error
	// Watch registers fn for changes made by this or any other process
	// sharing the backend.
	Watch(fn WatchFunc)
	Close() error
}

type watchers struct {
	mux sync.RWMutex
	fns []WatchFunc
}

func (w *watchers) add(fn WatchFunc) {
	w.mux.Lock()
	defer w.mux.Unlock()
	w.fns = append(w.fns, fn)
}

func (w *watchers) fire(key string) {
	w.mux.RLock()
	fns := w.fns
	w.mux.RUnlock()
	for _, fn := range fns {
		fn(key)
	}
}
