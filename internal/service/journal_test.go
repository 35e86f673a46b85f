package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"chronik/internal/kv"
	"chronik/internal/model"
	"chronik/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gm    = NewSession("Spielleitung", true)
	mira  = NewSession("Mira", false)
	anon  = NewSession("", false)
	clock = time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)
	ctxBg = context.Background()
)

func newJournal(t *testing.T, b kv.Backend) (*Journal, *store.Store) {
	t.Helper()
	st := store.New(b, store.Options{Namespace: "wtm-s-", WriteTimeout: time.Second})
	st.Load(ctxBg)
	t.Cleanup(func() { _ = st.Close(ctxBg) })
	return NewJournal(st).WithClock(clock), st
}

func TestRecapLifecycle(t *testing.T) {
	b := kv.NewMemory()
	j, st := newJournal(t, b)

	rec, saved, err := j.SaveRecap(gm, model.RecapForm{Title: "Der vergessene Wald", Text: "Nebel <b>überall</b>"})
	require.NoError(t, err)
	require.True(t, saved)
	assert.Equal(t, "2026-10-14", rec.Date)
	assert.Equal(t, clock.UnixMilli(), rec.CreatedAt)

	tally, err := j.React(mira, rec.ID, "✨")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"✨": 1}, tally)

	edited, saved, err := j.SaveRecap(gm, model.RecapForm{EditingID: rec.ID, Title: "Der Wald (überarbeitet)", Text: "Nebel"})
	require.NoError(t, err)
	require.True(t, saved)
	assert.Equal(t, rec.ID, edited.ID)
	assert.Equal(t, rec.CreatedAt, edited.CreatedAt)
	assert.Equal(t, rec.Date, edited.Date)

	recaps := st.Recaps.Get()
	require.Len(t, recaps, 1)
	assert.Equal(t, "Der Wald (überarbeitet)", recaps[0].Title)
	assert.Equal(t, 1, st.Reactions.Get()[rec.ID]["✨"])

	// everything reached the backend
	require.NoError(t, st.Close(ctxBg))
	raw, err := b.Get(ctxBg, "wtm-s-recaps")
	require.NoError(t, err)
	var stored []model.SessionRecap
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, recaps, stored)
	raw, err = b.Get(ctxBg, "wtm-s-reactions")
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{%q:{"✨":1}}`, rec.ID), raw)
}

func TestValidationGate(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())

	_, saved, err := j.SaveRecap(gm, model.RecapForm{Title: "   ", Text: "x"})
	require.NoError(t, err)
	assert.False(t, saved)
	_, saved, _ = j.SaveRecap(gm, model.RecapForm{Title: "x", Text: " "})
	assert.False(t, saved)
	_, saved, _ = j.SaveRecap(gm, model.RecapForm{Title: "x", Text: "y", Date: "14.10.2026"})
	assert.False(t, saved)
	_, saved, _ = j.SaveNote(anon, model.NoteForm{Text: "ohne Namen"})
	assert.False(t, saved)
	_, saved, _ = j.SuggestQuest(anon, model.SuggestionForm{Title: "Turm"})
	assert.False(t, saved)
	_, saved, _ = j.AddQuote(mira, model.QuoteForm{Speaker: "Mira"})
	assert.False(t, saved)
	_, saved, _ = j.AddSnippet(gm, model.SnippetForm{Title: "leer"})
	assert.False(t, saved)
	_, saved, _ = j.SaveNpc(gm, model.NpcForm{Faction: "Gilde"})
	assert.False(t, saved)
	_, saved, _ = j.AddDocument(gm, model.DocumentForm{Text: "kein Titel"})
	assert.False(t, saved)

	assert.Empty(t, st.Recaps.Get())
	assert.Empty(t, st.PlayerNotes.Get())
	assert.Empty(t, st.Quests.Get())
	assert.Empty(t, st.Quotes.Get())
	assert.Empty(t, st.Snippets.Get())
	assert.Empty(t, st.Npcs.Get())
	assert.Empty(t, st.Documents.Get())
}

func TestInsertionOrder(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())
	for i := 1; i <= 3; i++ {
		_, _, err := j.SaveRecap(gm, model.RecapForm{Title: fmt.Sprintf("r%d", i), Text: "t"})
		require.NoError(t, err)
	}
	var titles []string
	for _, r := range st.Recaps.Get() {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"r3", "r2", "r1"}, titles)

	_, _, err := j.SaveQuest(gm, model.QuestForm{Title: "Erste"})
	require.NoError(t, err)
	_, _, err = j.SaveQuest(gm, model.QuestForm{Title: "Zweite"})
	require.NoError(t, err)
	sug, saved, err := j.SuggestQuest(mira, model.SuggestionForm{Title: "  Der Turm  ", Description: " alt "})
	require.NoError(t, err)
	require.True(t, saved)

	quests := st.Quests.Get()
	require.Len(t, quests, 3)
	assert.Equal(t, "Zweite", quests[0].Title)
	assert.Equal(t, gmAuthor, quests[0].AddedBy)
	assert.Equal(t, sug, quests[2])
	assert.Equal(t, "Der Turm", sug.Title)
	assert.Equal(t, "alt", sug.Description)
	assert.Equal(t, "Mira", sug.AddedBy)
	assert.True(t, sug.Suggested)
	assert.Equal(t, model.QuestOpen, sug.Status)
}

func TestRoleGating(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())

	_, _, err := j.SaveRecap(mira, model.RecapForm{Title: "x", Text: "y"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = j.SaveQuest(mira, model.QuestForm{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = j.SaveNpc(mira, model.NpcForm{Name: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = j.AddSnippet(mira, model.SnippetForm{Text: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = j.AddDocument(mira, model.DocumentForm{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	note, _, err := j.SaveNote(mira, model.NoteForm{Text: "Miras Notiz"})
	require.NoError(t, err)
	other := NewSession("Brom", false)
	_, _, err = j.SaveNote(other, model.NoteForm{EditingID: note.ID, Text: "gekapert"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, j.DeleteNote(other, note.ID), ErrForbidden)
	assert.Equal(t, "Miras Notiz", st.PlayerNotes.Get()[0].Text)

	edited, saved, err := j.SaveNote(gm, model.NoteForm{EditingID: note.ID, Text: "vom GM"})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, "Mira", edited.Author)
	require.NoError(t, j.DeleteNote(mira, note.ID))
	assert.Empty(t, st.PlayerNotes.Get())

	quest, _, err := j.SaveQuest(gm, model.QuestForm{Title: "Q"})
	require.NoError(t, err)
	assert.ErrorIs(t, j.DeleteQuest(mira, quest.ID), ErrForbidden)
	require.NoError(t, j.DeleteQuest(gm, quest.ID))
	assert.ErrorIs(t, j.DeleteQuest(gm, quest.ID), ErrNotFound)
}

func TestAuthorMatchIgnoresComposition(t *testing.T) {
	j, _ := newJournal(t, kv.NewMemory())
	composed := NewSession("J\u00f6rg", false)
	decomposed := NewSession("Jo\u0308rg", false)

	note, _, err := j.SaveNote(composed, model.NoteForm{Text: "hallo"})
	require.NoError(t, err)
	assert.NoError(t, j.DeleteNote(decomposed, note.ID))
}

func TestRecapDeleteNeedsConfirmation(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())
	rec, _, err := j.SaveRecap(gm, model.RecapForm{Title: "x", Text: "y"})
	require.NoError(t, err)

	assert.ErrorIs(t, j.DeleteRecap(gm, rec.ID, false), ErrConfirmationRequired)
	assert.Len(t, st.Recaps.Get(), 1)
	assert.ErrorIs(t, j.DeleteRecap(mira, rec.ID, true), ErrForbidden)
	require.NoError(t, j.DeleteRecap(gm, rec.ID, true))
	assert.Empty(t, st.Recaps.Get())
}

func TestReactionTally(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())
	for _, e := range []string{"✨", "✨", "🎲"} {
		_, err := j.React(mira, "r1", e)
		require.NoError(t, err)
	}
	before := st.Reactions.Get()

	_, err := j.React(mira, "r1", "👍")
	assert.ErrorIs(t, err, ErrUnknownReaction)

	tally, err := j.React(gm, "r1", "✨")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"✨": 3, "🎲": 1}, tally)
	// earlier values are never modified in place
	assert.Equal(t, 2, before["r1"]["✨"])
}

func TestQuotes(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())

	q, _, err := j.AddQuote(mira, model.QuoteForm{Text: " Ich war das nicht. "})
	require.NoError(t, err)
	assert.Equal(t, "Mira", q.Speaker)
	assert.Equal(t, "Ich war das nicht.", q.Text)

	q2, _, err := j.AddQuote(anon, model.QuoteForm{Text: "Wer?"})
	require.NoError(t, err)
	assert.Equal(t, unknownSpeaker, q2.Speaker)

	q3, _, err := j.AddQuote(anon, model.QuoteForm{Speaker: " Brom ", Text: "Bier!"})
	require.NoError(t, err)
	assert.Equal(t, "Brom", q3.Speaker)

	assert.ErrorIs(t, j.DeleteQuote(mira, q3.ID), ErrForbidden)
	require.NoError(t, j.DeleteQuote(mira, q.ID))
	require.NoError(t, j.DeleteQuote(gm, q3.ID))
	assert.Equal(t, []model.Quote{q2}, st.Quotes.Get())
}

func TestNpcEditKeepsImpressions(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())
	npc, _, err := j.SaveNpc(gm, model.NpcForm{Name: "Kettlesteam", Notes: "geheim"})
	require.NoError(t, err)
	assert.Equal(t, model.NpcAlive, npc.Status)
	assert.Equal(t, []model.Impression{}, npc.Impressions)

	_, saved, err := j.AddImpression(anon, npc.ID, model.ImpressionForm{Text: "x"})
	require.NoError(t, err)
	assert.False(t, saved)
	imp, saved, err := j.AddImpression(mira, npc.ID, model.ImpressionForm{Text: " höflich "})
	require.NoError(t, err)
	require.True(t, saved)
	assert.Equal(t, "höflich", imp.Text)
	_, _, err = j.AddImpression(mira, "missing", model.ImpressionForm{Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	edited, _, err := j.SaveNpc(gm, model.NpcForm{EditingID: npc.ID, Name: "Kettlesteam", Status: model.NpcMissing})
	require.NoError(t, err)
	assert.Equal(t, npc.ID, edited.ID)
	assert.Equal(t, []model.Impression{imp}, edited.Impressions)
	assert.Equal(t, model.NpcMissing, st.Npcs.Get()[0].Status)

	_, _, err = j.SaveNpc(gm, model.NpcForm{EditingID: "missing", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestViewHidesGMNotes(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())
	_, _, err := j.SaveNpc(gm, model.NpcForm{Name: "Kettlesteam", Notes: "Verräter"})
	require.NoError(t, err)

	assert.Empty(t, j.View(mira).Npcs[0].Notes)
	assert.Equal(t, "Verräter", j.View(gm).Npcs[0].Notes)
	assert.Equal(t, "Verräter", st.Npcs.Get()[0].Notes)
}

func TestGroupQuests(t *testing.T) {
	quests := []model.Quest{
		{ID: "1", Status: model.QuestResolved},
		{ID: "2", Status: model.QuestOpen},
		{ID: "3", Status: "verschollen"},
		{ID: "4", Status: model.QuestOpen},
	}
	groups := GroupQuests(quests)
	require.Len(t, groups, 3)
	assert.Equal(t, model.QuestOpen, groups[0].Status)
	assert.Equal(t, []string{"2", "4"}, []string{groups[0].Quests[0].ID, groups[0].Quests[1].ID})
	assert.Equal(t, model.QuestResolved, groups[1].Status)
	assert.Equal(t, model.QuestStatus("verschollen"), groups[2].Status)
	assert.Equal(t, model.DefaultColor, groups[2].Color)
}

func TestDocumentsAndSnippets(t *testing.T) {
	j, st := newJournal(t, kv.NewMemory())
	doc, _, err := j.AddDocument(gm, model.DocumentForm{Title: "Siegelbrief"})
	require.NoError(t, err)
	assert.Equal(t, model.DocLetter, doc.Type)
	assert.ErrorIs(t, j.DeleteDocument(mira, doc.ID), ErrForbidden)
	require.NoError(t, j.DeleteDocument(gm, doc.ID))
	assert.Empty(t, st.Documents.Get())

	snip, _, err := j.AddSnippet(gm, model.SnippetForm{Title: " Nacht ", Text: " Es regnete. "})
	require.NoError(t, err)
	assert.Equal(t, "Nacht", snip.Title)
	assert.Equal(t, "Es regnete.", snip.Text)
	require.NoError(t, j.DeleteSnippet(gm, snip.ID))
	assert.ErrorIs(t, j.DeleteSnippet(gm, snip.ID), ErrNotFound)
}

type failingBackend struct{ kv.Backend }

func (failingBackend) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestWriteFailureDoesNotFailOperation(t *testing.T) {
	j, st := newJournal(t, failingBackend{kv.NewMemory()})
	_, saved, err := j.AddQuote(mira, model.QuoteForm{Text: "trotzdem"})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Len(t, st.Quotes.Get(), 1)
}

type fixedPIN string

func (p fixedPIN) PIN(string) string { return string(p) }

func TestGate(t *testing.T) {
	g := NewGate(nil, "1234")
	_, err := g.Unlock(mira, "0000")
	assert.ErrorIs(t, err, ErrIncorrectPIN)
	assert.EqualError(t, err, "incorrect PIN")

	s, err := g.Unlock(mira, "1234")
	require.NoError(t, err)
	assert.True(t, s.GM())
	assert.Equal(t, "Mira", s.DisplayName())
	assert.False(t, g.Lock(s).GM())

	override := NewGate(fixedPIN("9876"), "1234")
	_, err = override.Unlock(mira, "1234")
	assert.ErrorIs(t, err, ErrIncorrectPIN)
	_, err = override.Unlock(mira, "9876")
	assert.NoError(t, err)
}
