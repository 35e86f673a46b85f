package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrClosed is reported by writes issued after Close.
var ErrClosed = errors.New("store: closed")

// Outcome is the result of one best-effort write. Ignoring it is fine.
type Outcome struct{ ch <-chan error }

// Wait blocks until the write that carries this mutation has been issued.
func (o Outcome) Wait(ctx context.Context) error {
	if o.ch == nil {
		return nil
	}
	select {
	case err := <-o.ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Slot is one named, independently persisted value.
//
// Values handed out by Get and Update are shared; callers build new
// slices and maps instead of modifying them.
type Slot[T any] struct {
	key   string
	def   func() T
	flush *flusher

	mu  sync.Mutex
	val T
}

func newSlot[T any](key string, def func() T, f *flusher) *Slot[T] {
	return &Slot[T]{key: key, def: def, flush: f, val: def()}
}

func (s *Slot[T]) Key() string { return s.key }

func (s *Slot[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// Update computes the next value from the current one. If fn returns an
// error nothing changes and nothing is written.
func (s *Slot[T]) Update(fn func(cur T) (T, error)) (T, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.val)
	if err != nil {
		return s.val, Outcome{}, err
	}
	payload, err := s.encode(next)
	if err != nil {
		return s.val, Outcome{}, err
	}
	s.val = next
	return next, s.flush.enqueue(payload), nil
}

// Set replaces the value wholesale.
func (s *Slot[T]) Set(v T) Outcome {
	_, o, err := s.Update(func(T) (T, error) { return v, nil })
	if err != nil {
		ch := make(chan error, 1)
		ch <- err
		return Outcome{ch: ch}
	}
	return o
}

// load reads the stored value. On any failure the slot holds its default
// and the cause is returned for logging only.
func (s *Slot[T]) load(ctx context.Context, get func(context.Context, string) (string, error)) error {
	raw, err := get(ctx, s.key)
	var v T
	if err == nil {
		v, err = s.decode(raw)
	}
	s.mu.Lock()
	if err != nil {
		s.val = s.def()
	} else {
		s.val = v
	}
	s.mu.Unlock()
	return err
}

func (s *Slot[T]) snapshot() (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.encode(s.val)
	return json.RawMessage(raw), err
}

// prepare decodes raw without touching the slot. The returned func
// installs the decoded value.
func (s *Slot[T]) prepare(raw string) (func() Outcome, error) {
	v, err := s.decode(raw)
	if err != nil {
		return nil, err
	}
	return func() Outcome { return s.Set(v) }, nil
}

func (s *Slot[T]) encode(v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", s.key, err)
	}
	return string(data), nil
}

func (s *Slot[T]) decode(raw string) (T, error) {
	v, err := decodeValue[T](raw)
	if err != nil {
		return s.def(), fmt.Errorf("decode %s: %w", s.key, err)
	}
	// a stored "null" decodes to a nil slice or map
	if rv := reflect.ValueOf(&v).Elem(); (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.IsNil() {
		return s.def(), nil
	}
	return v, nil
}

func decodeValue[T any](raw string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

func (s *Slot[T]) close(ctx context.Context) error { return s.flush.close(ctx) }
