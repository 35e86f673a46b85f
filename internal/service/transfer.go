package service

import (
	"context"
	"encoding/json"
	"fmt"

	"chronik/internal/store"
)

// DumpVersion is written into every export.
const DumpVersion = 1

// Dump is the portable form of the whole journal, keyed by slot name.
type Dump struct {
	Version    int                        `json:"version"`
	ExportedAt int64                      `json:"exportedAt"`
	Slots      map[string]json.RawMessage `json:"slots"`
}

func (j *Journal) Export() (Dump, error) {
	slots, err := j.st.Snapshot()
	if err != nil {
		return Dump{}, fmt.Errorf("snapshot: %w", err)
	}
	return Dump{Version: DumpVersion, ExportedAt: j.now(), Slots: slots}, nil
}

// Inspect checks a dump without applying it and returns the number of
// entries per slot. Every slot is decoded as its stored type.
func Inspect(d Dump) (map[string]int, error) {
	if d.Version != DumpVersion {
		return nil, fmt.Errorf("unsupported dump version %d", d.Version)
	}
	return store.Validate(d.Slots)
}

// Import replaces every slot named in d and waits until the backend has
// them. Slots missing from d are left alone.
func (j *Journal) Import(ctx context.Context, s Session, d Dump) error {
	if err := requireGM(s); err != nil {
		return err
	}
	if _, err := Inspect(d); err != nil {
		return err
	}
	return j.st.Restore(ctx, d.Slots)
}
