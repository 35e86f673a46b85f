package model

import (
	"time"

	"github.com/rs/xid"
)

// NewID returns a sortable id: a seconds timestamp followed by machine, pid
// and a per-process counter, so ids minted by one process never collide.
func NewID() string { return xid.New().String() }

// NowMillis is the creation timestamp stored on records.
func NowMillis() int64 { return time.Now().UnixMilli() }
