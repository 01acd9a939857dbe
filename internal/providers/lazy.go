package providers

import (
	"context"
	"sync"
	"sync/atomic"
)

// lazy runs init once on first successful use. A failed init is not
// remembered, so the next caller tries again.
type lazy[T any] struct {
	mu   sync.Mutex
	done atomic.Bool
	val  T
	init func(ctx context.Context) (T, error)
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	if l.done.Load() {
		return l.val, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done.Load() {
		return l.val, nil
	}
	v, err := l.init(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.val = v
	l.done.Store(true)
	return v, nil
}
