package service

import (
	"strings"

	"chronik/internal/model"
	"chronik/internal/store"
)

// SaveNote records a player note under the session's display name, or edits
// one the session wrote. Editing replaces the text only.
func (j *Journal) SaveNote(s Session, f model.NoteForm) (model.PlayerNote, bool, error) {
	var note model.PlayerNote
	if strings.TrimSpace(f.Text) == "" || !s.HasName() {
		return note, false, nil
	}

	if f.EditingID != "" {
		_, err := update(j.st.PlayerNotes, func(cur []model.PlayerNote) ([]model.PlayerNote, error) {
			old, ok := store.Find(cur, f.EditingID)
			if !ok {
				return nil, ErrNotFound
			}
			if !canManageNote(s, old) {
				return nil, ErrForbidden
			}
			next, _ := store.Replace(cur, f.EditingID, func(n model.PlayerNote) model.PlayerNote {
				n.Text = f.Text
				note = n
				return n
			})
			return next, nil
		})
		return note, err == nil, err
	}

	note = model.PlayerNote{ID: j.newID(), Text: f.Text, Author: s.DisplayName(), CreatedAt: j.now()}
	_, err := update(j.st.PlayerNotes, func(cur []model.PlayerNote) ([]model.PlayerNote, error) {
		return store.Prepend(cur, note), nil
	})
	return note, err == nil, err
}

func (j *Journal) DeleteNote(s Session, id string) error {
	_, err := update(j.st.PlayerNotes, func(cur []model.PlayerNote) ([]model.PlayerNote, error) {
		old, ok := store.Find(cur, id)
		if !ok {
			return nil, ErrNotFound
		}
		if !canManageNote(s, old) {
			return nil, ErrForbidden
		}
		next, _ := store.Remove(cur, id)
		return next, nil
	})
	return err
}

func canManageNote(s Session, n model.PlayerNote) bool {
	return s.GM() || s.Is(n.Author)
}
