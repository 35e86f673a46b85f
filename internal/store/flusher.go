package store

import (
	"context"
	"sync"
	"time"

	"chronik/internal/kv"
)

// flusher issues the writes of one slot in order. Only the newest unsent
// payload is kept: every payload is the full slot value, so skipping an
// older one still converges on the same stored state.
type flusher struct {
	key     string
	backend kv.Backend
	timeout time.Duration
	report  func(key string, err error)

	mu      sync.Mutex
	next    *string
	waiters []chan error
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newFlusher(key string, backend kv.Backend, timeout time.Duration, report func(string, error)) *flusher {
	f := &flusher{
		key:     key,
		backend: backend,
		timeout: timeout,
		report:  report,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// enqueue must be called with the owning slot's lock held so that payloads
// arrive in mutation order.
func (f *flusher) enqueue(payload string) Outcome {
	ch := make(chan error, 1)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		ch <- ErrClosed
		return Outcome{ch: ch}
	}
	f.next = &payload
	f.waiters = append(f.waiters, ch)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
	return Outcome{ch: ch}
}

func (f *flusher) run() {
	defer close(f.done)
	for range f.wake {
		for {
			f.mu.Lock()
			payload, waiters := f.next, f.waiters
			f.next, f.waiters = nil, nil
			closed := f.closed
			f.mu.Unlock()

			if payload == nil {
				if closed {
					return
				}
				break
			}
			err := f.write(*payload)
			for _, w := range waiters {
				w <- err
			}
		}
	}
}

func (f *flusher) write(payload string) error {
	ctx := context.Background()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	err := f.backend.Set(ctx, f.key, payload)
	if f.report != nil {
		f.report(f.key, err)
	}
	return err
}

// close stops accepting writes and waits for the pending one, if any.
func (f *flusher) close(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()
	select {
	case f.wake <- struct{}{}:
	default:
	}

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
