// Package store keeps the journal's eight slots in memory and writes each
// one back to the shared backend in full after every change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"chronik/internal/kv"
	"chronik/internal/logger"
	"chronik/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Slot names. The backend key is the configured namespace plus the name.
const (
	SlotRecaps      = "recaps"
	SlotPlayerNotes = "playernotes"
	SlotQuests      = "quests"
	SlotQuotes      = "quotes"
	SlotSnippets    = "snippets"
	SlotNpcs        = "npcs"
	SlotReactions   = "reactions"
	SlotDocuments   = "fundstucke"
)

// SlotNames lists the slots in load order.
var SlotNames = []string{
	SlotRecaps, SlotPlayerNotes, SlotQuests, SlotQuotes,
	SlotSnippets, SlotNpcs, SlotReactions, SlotDocuments,
}

type Options struct {
	Namespace    string
	WriteTimeout time.Duration
	// Registerer receives the store metrics; nil means a private registry.
	Registerer prometheus.Registerer
}

type namedSlot interface {
	Key() string
	load(ctx context.Context, get func(context.Context, string) (string, error)) error
	snapshot() (json.RawMessage, error)
	prepare(raw string) (func() Outcome, error)
	close(ctx context.Context) error
}

type Store struct {
	Recaps      *Slot[[]model.SessionRecap]
	PlayerNotes *Slot[[]model.PlayerNote]
	Quests      *Slot[[]model.Quest]
	Quotes      *Slot[[]model.Quote]
	Snippets    *Slot[[]model.StorySnippet]
	Npcs        *Slot[[]model.NpcProfile]
	Reactions   *Slot[model.Reactions]
	Documents   *Slot[[]model.FoundDocument]

	backend kv.Backend
	slots   map[string]namedSlot
	metrics *metrics
	ready   atomic.Bool
}

func New(backend kv.Backend, opts Options) *Store {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Store{backend: backend, metrics: newMetrics(reg), slots: make(map[string]namedSlot)}
	fl := func(name string) *flusher {
		return newFlusher(opts.Namespace+name, backend, opts.WriteTimeout, s.wrote)
	}

	s.Recaps = newSlot(opts.Namespace+SlotRecaps, emptyOf[model.SessionRecap], fl(SlotRecaps))
	s.PlayerNotes = newSlot(opts.Namespace+SlotPlayerNotes, emptyOf[model.PlayerNote], fl(SlotPlayerNotes))
	s.Quests = newSlot(opts.Namespace+SlotQuests, emptyOf[model.Quest], fl(SlotQuests))
	s.Quotes = newSlot(opts.Namespace+SlotQuotes, emptyOf[model.Quote], fl(SlotQuotes))
	s.Snippets = newSlot(opts.Namespace+SlotSnippets, emptyOf[model.StorySnippet], fl(SlotSnippets))
	s.Npcs = newSlot(opts.Namespace+SlotNpcs, emptyOf[model.NpcProfile], fl(SlotNpcs))
	s.Reactions = newSlot(opts.Namespace+SlotReactions, func() model.Reactions { return model.Reactions{} }, fl(SlotReactions))
	s.Documents = newSlot(opts.Namespace+SlotDocuments, emptyOf[model.FoundDocument], fl(SlotDocuments))

	for name, sl := range map[string]namedSlot{
		SlotRecaps: s.Recaps, SlotPlayerNotes: s.PlayerNotes, SlotQuests: s.Quests,
		SlotQuotes: s.Quotes, SlotSnippets: s.Snippets, SlotNpcs: s.Npcs,
		SlotReactions: s.Reactions, SlotDocuments: s.Documents,
	} {
		s.slots[name] = sl
	}
	return s
}

func emptyOf[T any]() []T { return []T{} }

// Load fetches every slot concurrently. Failures leave the slot at its
// default and the store becomes ready regardless. The returned error joins
// every failure other than a missing key; the server only logs it.
func (s *Store) Load(ctx context.Context) error {
	start := time.Now()
	errs := make([]error, len(SlotNames))
	var wg sync.WaitGroup
	for i, name := range SlotNames {
		sl := s.slots[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sl.load(ctx, s.backend.Get)
			if err == nil {
				return
			}
			s.metrics.fallbacks.WithLabelValues(sl.Key()).Inc()
			if errors.Is(err, kv.ErrNotFound) {
				logger.Debug("slot.empty", "slot", sl.Key())
				return
			}
			logger.Warn("slot.load_failed", "slot", sl.Key(), "err", err)
			errs[i] = fmt.Errorf("%s: %w", sl.Key(), err)
		}()
	}
	wg.Wait()
	s.ready.Store(true)
	s.metrics.ready.Set(1)
	logger.Info("store.loaded", "slots", len(SlotNames), "took", time.Since(start))
	return errors.Join(errs...)
}

// Ready reports whether every slot has finished loading.
func (s *Store) Ready() bool { return s.ready.Load() }

func (s *Store) wrote(key string, err error) {
	s.metrics.wrote(key, err)
	if err != nil {
		logger.Warn("slot.write_failed", "slot", key, "err", err)
	}
}

// Snapshot returns the current value of every slot keyed by slot name.
func (s *Store) Snapshot() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(s.slots))
	for name, sl := range s.slots {
		raw, err := sl.snapshot()
		if err != nil {
			return nil, err
		}
		out[name] = raw
	}
	return out, nil
}

// Restore replaces the named slots and waits for their writes. Every value
// is decoded first; if any slot is unknown or malformed nothing changes.
func (s *Store) Restore(ctx context.Context, values map[string]json.RawMessage) error {
	commits := make([]func() Outcome, 0, len(values))
	for name, raw := range values {
		sl, ok := s.slots[name]
		if !ok {
			return fmt.Errorf("unknown slot %q", name)
		}
		commit, err := sl.prepare(string(raw))
		if err != nil {
			return err
		}
		commits = append(commits, commit)
	}
	outcomes := make([]Outcome, 0, len(commits))
	for _, commit := range commits {
		outcomes = append(outcomes, commit())
	}
	for _, o := range outcomes {
		if err := o.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

var counters = map[string]func(string) (int, error){
	SlotRecaps:      count[[]model.SessionRecap],
	SlotPlayerNotes: count[[]model.PlayerNote],
	SlotQuests:      count[[]model.Quest],
	SlotQuotes:      count[[]model.Quote],
	SlotSnippets:    count[[]model.StorySnippet],
	SlotNpcs:        count[[]model.NpcProfile],
	SlotReactions:   count[model.Reactions],
	SlotDocuments:   count[[]model.FoundDocument],
}

func count[T any](raw string) (int, error) {
	v, err := decodeValue[T](raw)
	if err != nil {
		return 0, err
	}
	return reflect.ValueOf(v).Len(), nil
}

// Validate decodes each value as its slot's type and returns the number of
// entries per slot. Reactions count recaps, not votes.
func Validate(values map[string]json.RawMessage) (map[string]int, error) {
	counts := make(map[string]int, len(values))
	for name, raw := range values {
		fn, ok := counters[name]
		if !ok {
			return nil, fmt.Errorf("unknown slot %q", name)
		}
		n, err := fn(string(raw))
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

// Close flushes pending writes. The backend stays open.
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	for _, sl := range s.slots {
		if err := sl.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sl.Key(), err))
		}
	}
	return errors.Join(errs...)
}
