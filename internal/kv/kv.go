//go:generate go run go.uber.org/mock/mockgen -source=kv.go -destination=mock/kv.go

// Package kv is the shared string store the journal slots persist into.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Backend is an opaque string store keyed by string.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
