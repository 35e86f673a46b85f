package service

import (
	"strings"

	"chronik/internal/model"
	"chronik/internal/store"
)

// SaveRecap creates a recap, or edits the one named by f.EditingID. Title
// and text are required; the date defaults to today.
func (j *Journal) SaveRecap(s Session, f model.RecapForm) (model.SessionRecap, bool, error) {
	var rec model.SessionRecap
	if err := requireGM(s); err != nil {
		return rec, false, err
	}
	title := strings.TrimSpace(f.Title)
	if title == "" || strings.TrimSpace(f.Text) == "" || !model.ValidDay(f.Date) {
		return rec, false, nil
	}

	if f.EditingID != "" {
		_, err := update(j.st.Recaps, func(cur []model.SessionRecap) ([]model.SessionRecap, error) {
			return notFound(store.Replace(cur, f.EditingID, func(r model.SessionRecap) model.SessionRecap {
				if f.Date != "" {
					r.Date = f.Date
				}
				r.Title, r.Text = title, f.Text
				rec = r
				return r
			}))
		})
		return rec, err == nil, err
	}

	rec = model.SessionRecap{ID: j.newID(), Date: f.Date, Title: title, Text: f.Text, CreatedAt: j.now()}
	if rec.Date == "" {
		rec.Date = j.today()
	}
	_, err := update(j.st.Recaps, func(cur []model.SessionRecap) ([]model.SessionRecap, error) {
		return store.Prepend(cur, rec), nil
	})
	return rec, err == nil, err
}

// DeleteRecap removes a recap. Unlike other deletions it must be confirmed.
func (j *Journal) DeleteRecap(s Session, id string, confirmed bool) error {
	if err := requireGM(s); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	_, err := update(j.st.Recaps, func(cur []model.SessionRecap) ([]model.SessionRecap, error) {
		return notFound(store.Remove(cur, id))
	})
	return err
}

// React adds one click of emoji to a recap and returns its new tally.
// Reactions are open to every session.
func (j *Journal) React(_ Session, recapID, emoji string) (map[string]int, error) {
	if !model.IsReactionEmoji(emoji) {
		return nil, ErrUnknownReaction
	}
	var tally map[string]int
	_, err := update(j.st.Reactions, func(cur model.Reactions) (model.Reactions, error) {
		next := make(model.Reactions, len(cur)+1)
		for k, v := range cur {
			next[k] = v
		}
		tally = make(map[string]int, len(cur[recapID])+1)
		for e, n := range cur[recapID] {
			tally[e] = n
		}
		tally[emoji]++
		next[recapID] = tally
		return next, nil
	})
	return tally, err
}

// update mutates a slot and leaves its write to run in the background.
func update[T any](sl *store.Slot[T], fn func(T) (T, error)) (T, error) {
	v, _, err := sl.Update(fn)
	return v, err
}
