package service

import (
	"strings"

	"chronik/internal/model"
	"chronik/internal/store"
)

// AddDocument records a found in-world document. The type defaults to a
// letter.
func (j *Journal) AddDocument(s Session, f model.DocumentForm) (model.FoundDocument, bool, error) {
	if err := requireGM(s); err != nil {
		return model.FoundDocument{}, false, err
	}
	if strings.TrimSpace(f.Title) == "" {
		return model.FoundDocument{}, false, nil
	}
	typ := f.Type
	if typ == "" {
		typ = model.DocLetter
	}
	doc := model.FoundDocument{
		ID: j.newID(), Type: typ, Title: f.Title, Text: f.Text, ImageURL: f.ImageURL, CreatedAt: j.now(),
	}
	_, err := update(j.st.Documents, func(cur []model.FoundDocument) ([]model.FoundDocument, error) {
		return store.Prepend(cur, doc), nil
	})
	return doc, err == nil, err
}

func (j *Journal) DeleteDocument(s Session, id string) error {
	if err := requireGM(s); err != nil {
		return err
	}
	_, err := update(j.st.Documents, func(cur []model.FoundDocument) ([]model.FoundDocument, error) {
		return notFound(store.Remove(cur, id))
	})
	return err
}
