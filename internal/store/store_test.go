package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"chronik/internal/kv"
	mock_kv "chronik/internal/kv/mock"
	"chronik/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestStore(t *testing.T, b kv.Backend) *Store {
	t.Helper()
	s := New(b, Options{Namespace: "wtm-s-", WriteTimeout: time.Second})
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func wait(t *testing.T, o Outcome) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return o.Wait(ctx)
}

func TestRoundTripThroughBackend(t *testing.T) {
	b := kv.NewMemory()
	s := newTestStore(t, b)
	s.Load(context.Background())

	recaps := []model.SessionRecap{
		{ID: "r2", Date: "2026-10-14", Title: "Der Wald (überarbeitet)", Text: "<b>Nebel</b> 🌫", CreatedAt: 2},
		{ID: "r1", Title: "Ankunft", Text: "<ul><li>eins</li></ul>", CreatedAt: 1},
	}
	npcs := []model.NpcProfile{{
		ID: "n1", Name: "Kettlesteam", Status: model.NpcAlive,
		Impressions: []model.Impression{{ID: "i1", Text: "Sehr höflich", Author: "Mira", CreatedAt: 5}},
	}}
	reactions := model.Reactions{"r1": {"✨": 2, "🎲": 1}}

	require.NoError(t, wait(t, s.Recaps.Set(recaps)))
	require.NoError(t, wait(t, s.Npcs.Set(npcs)))
	require.NoError(t, wait(t, s.Reactions.Set(reactions)))
	require.NoError(t, wait(t, s.Quotes.Set([]model.Quote{})))

	fresh := newTestStore(t, b)
	fresh.Load(context.Background())
	assert.Equal(t, recaps, fresh.Recaps.Get())
	assert.Equal(t, npcs, fresh.Npcs.Get())
	assert.Equal(t, reactions, fresh.Reactions.Get())
	assert.Equal(t, []model.Quote{}, fresh.Quotes.Get())
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := mock_kv.NewMockBackend(ctrl)

	b.EXPECT().Get(gomock.Any(), "wtm-s-recaps").Return("", errors.New("backend unreachable"))
	b.EXPECT().Get(gomock.Any(), "wtm-s-reactions").Return("{not json", nil)
	b.EXPECT().Get(gomock.Any(), "wtm-s-quests").Return("null", nil)
	b.EXPECT().Get(gomock.Any(), "wtm-s-quotes").Return(`[{"id":"q1","speaker":"Mira","text":"Hallo","ts":3}]`, nil)
	b.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", kv.ErrNotFound).Times(4)

	s := newTestStore(t, b)
	assert.False(t, s.Ready())
	err := s.Load(context.Background())
	assert.True(t, s.Ready())
	assert.ErrorContains(t, err, "backend unreachable")
	assert.ErrorContains(t, err, "decode wtm-s-reactions")
	assert.NotContains(t, err.Error(), "wtm-s-quests")
	assert.NotErrorIs(t, err, kv.ErrNotFound)

	assert.Equal(t, []model.SessionRecap{}, s.Recaps.Get())
	assert.Equal(t, model.Reactions{}, s.Reactions.Get())
	assert.Equal(t, []model.Quest{}, s.Quests.Get())
	assert.Equal(t, []model.Quote{{ID: "q1", Speaker: "Mira", Text: "Hallo", CreatedAt: 3}}, s.Quotes.Get())
	assert.Equal(t, []model.FoundDocument{}, s.Documents.Get())
}

func TestSameWriteTwiceIsIdempotent(t *testing.T) {
	b := kv.NewMemory()
	s := newTestStore(t, b)
	v := []model.StorySnippet{{ID: "s1", Text: "Im Mondlicht", CreatedAt: 1}}

	require.NoError(t, wait(t, s.Snippets.Set(v)))
	require.NoError(t, wait(t, s.Snippets.Set(v)))

	raw, err := b.Get(context.Background(), "wtm-s-snippets")
	require.NoError(t, err)
	var got []model.StorySnippet
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, v, got)
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := mock_kv.NewMockBackend(ctrl)
	b.EXPECT().Set(gomock.Any(), "wtm-s-quotes", gomock.Any()).Return(errors.New("quota exceeded"))

	s := newTestStore(t, b)
	next, o, err := s.Quotes.Update(func(cur []model.Quote) ([]model.Quote, error) {
		return Prepend(cur, model.Quote{ID: "q1", Text: "Verloren?"}), nil
	})
	require.NoError(t, err)
	assert.Len(t, next, 1)
	assert.ErrorContains(t, wait(t, o), "quota exceeded")
	assert.Len(t, s.Quotes.Get(), 1)
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := mock_kv.NewMockBackend(ctrl)
	s := newTestStore(t, b)

	boom := errors.New("nope")
	_, o, err := s.Recaps.Update(func(cur []model.SessionRecap) ([]model.SessionRecap, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, wait(t, o))
	assert.Equal(t, []model.SessionRecap{}, s.Recaps.Get())
}

func TestLastMutationWins(t *testing.T) {
	b := kv.NewMemory()
	s := newTestStore(t, b)

	var last Outcome
	for i := 0; i < 200; i++ {
		_, last, _ = s.Recaps.Update(func(cur []model.SessionRecap) ([]model.SessionRecap, error) {
			return Prepend(cur, model.SessionRecap{ID: fmt.Sprint(i), Title: "t"}), nil
		})
	}
	require.NoError(t, wait(t, last))

	raw, err := b.Get(context.Background(), "wtm-s-recaps")
	require.NoError(t, err)
	var got []model.SessionRecap
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 200)
	assert.Equal(t, "199", got[0].ID)
	assert.Equal(t, "0", got[199].ID)
}

func TestWritesAfterCloseAreRejected(t *testing.T) {
	s := New(kv.NewMemory(), Options{})
	require.NoError(t, s.Close(context.Background()))
	assert.ErrorIs(t, wait(t, s.Quotes.Set([]model.Quote{})), ErrClosed)
}

func TestSnapshotRestore(t *testing.T) {
	src := newTestStore(t, kv.NewMemory())
	require.NoError(t, wait(t, src.Documents.Set([]model.FoundDocument{{ID: "d1", Type: model.DocMap, Title: "Karte des Jahrmarkts"}})))
	snap, err := src.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap, len(SlotNames))

	b := kv.NewMemory()
	dst := newTestStore(t, b)
	require.NoError(t, dst.Restore(context.Background(), snap))
	assert.Equal(t, src.Documents.Get(), dst.Documents.Get())

	raw, err := b.Get(context.Background(), "wtm-s-fundstucke")
	require.NoError(t, err)
	assert.Contains(t, raw, "Karte des Jahrmarkts")

	assert.Error(t, dst.Restore(context.Background(), map[string]json.RawMessage{"dice": []byte("[]")}))
}

func TestRestoreIsAllOrNothing(t *testing.T) {
	b := kv.NewMemory()
	s := newTestStore(t, b)
	s.Load(context.Background())
	quotes := []model.Quote{{ID: "q0", Speaker: "Jörg", Text: "Noch ein Würfel", CreatedAt: 1}}
	require.NoError(t, wait(t, s.Quotes.Set(quotes)))

	bad := map[string]json.RawMessage{
		SlotRecaps:   []byte(`[{"id":"r1","title":"Fremd","text":"Fremd","ts":1}]`),
		SlotQuotes:   []byte(`[]`),
		SlotSnippets: []byte(`[{"id":"s1","title":"","text":"x","ts":1}]`),
		SlotQuests:   []byte(`[1]`),
	}
	for i := 0; i < 20; i++ {
		require.Error(t, s.Restore(context.Background(), bad))
		assert.Equal(t, []model.SessionRecap{}, s.Recaps.Get())
		assert.Equal(t, quotes, s.Quotes.Get())
		assert.Equal(t, []model.StorySnippet{}, s.Snippets.Get())
	}
	_, err := b.Get(context.Background(), "wtm-s-recaps")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestValidateCountsTypedEntries(t *testing.T) {
	counts, err := Validate(map[string]json.RawMessage{
		SlotRecaps:    []byte(`[{"id":"r1"},{"id":"r2"}]`),
		SlotReactions: []byte(`{"r1":{"✨":2},"r2":{}}`),
		SlotNpcs:      []byte(`null`),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{SlotRecaps: 2, SlotReactions: 2, SlotNpcs: 0}, counts)

	_, err = Validate(map[string]json.RawMessage{SlotQuests: []byte(`[1]`)})
	assert.ErrorContains(t, err, "slot quests")
	_, err = Validate(map[string]json.RawMessage{SlotReactions: []byte(`{"r1":{"✨":"viele"}}`)})
	assert.Error(t, err)
	_, err = Validate(map[string]json.RawMessage{"dice": []byte(`[]`)})
	assert.ErrorContains(t, err, "unknown slot")
}

func TestCollectionHelpers(t *testing.T) {
	xs := []model.Quote{{ID: "a"}, {ID: "b"}}

	assert.Equal(t, "c", Prepend(xs, model.Quote{ID: "c"})[0].ID)
	assert.Equal(t, "c", Append(xs, model.Quote{ID: "c"})[2].ID)

	out, ok := Replace(xs, "b", func(q model.Quote) model.Quote { q.Text = "neu"; return q })
	assert.True(t, ok)
	assert.Equal(t, "neu", out[1].Text)
	assert.Empty(t, xs[1].Text, "input slice untouched")

	_, ok = Replace(xs, "zz", func(q model.Quote) model.Quote { return q })
	assert.False(t, ok)

	out, ok = Remove(xs, "a")
	assert.True(t, ok)
	assert.Equal(t, []model.Quote{{ID: "b"}}, out)
	assert.Len(t, xs, 2)

	_, ok = Find(xs, "zz")
	assert.False(t, ok)
}
