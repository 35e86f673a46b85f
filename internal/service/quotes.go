package service

import (
	"strings"

	"chronik/internal/model"
	"chronik/internal/store"
)

// AddQuote records a quote. Without a speaker it is attributed to the
// session, or to "Unbekannt" when the session has no name yet.
func (j *Journal) AddQuote(s Session, f model.QuoteForm) (model.Quote, bool, error) {
	text := strings.TrimSpace(f.Text)
	if text == "" {
		return model.Quote{}, false, nil
	}
	speaker := strings.TrimSpace(f.Speaker)
	if speaker == "" {
		speaker = s.DisplayName()
	}
	if speaker == "" {
		speaker = unknownSpeaker
	}
	quote := model.Quote{ID: j.newID(), Speaker: speaker, Text: text, CreatedAt: j.now()}
	_, err := update(j.st.Quotes, func(cur []model.Quote) ([]model.Quote, error) {
		return store.Prepend(cur, quote), nil
	})
	return quote, err == nil, err
}

// DeleteQuote is allowed to the game master and to the quoted speaker.
func (j *Journal) DeleteQuote(s Session, id string) error {
	_, err := update(j.st.Quotes, func(cur []model.Quote) ([]model.Quote, error) {
		q, ok := store.Find(cur, id)
		if !ok {
			return nil, ErrNotFound
		}
		if !s.GM() && !s.Is(q.Speaker) {
			return nil, ErrForbidden
		}
		next, _ := store.Remove(cur, id)
		return next, nil
	})
	return err
}

func (j *Journal) AddSnippet(s Session, f model.SnippetForm) (model.StorySnippet, bool, error) {
	if err := requireGM(s); err != nil {
		return model.StorySnippet{}, false, err
	}
	text := strings.TrimSpace(f.Text)
	if text == "" {
		return model.StorySnippet{}, false, nil
	}
	snip := model.StorySnippet{ID: j.newID(), Title: strings.TrimSpace(f.Title), Text: text, CreatedAt: j.now()}
	_, err := update(j.st.Snippets, func(cur []model.StorySnippet) ([]model.StorySnippet, error) {
		return store.Prepend(cur, snip), nil
	})
	return snip, err == nil, err
}

func (j *Journal) DeleteSnippet(s Session, id string) error {
	if err := requireGM(s); err != nil {
		return err
	}
	_, err := update(j.st.Snippets, func(cur []model.StorySnippet) ([]model.StorySnippet, error) {
		return notFound(store.Remove(cur, id))
	})
	return err
}
