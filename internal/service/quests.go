package service

import (
	"strings"

	"chronik/internal/model"
	"chronik/internal/store"
)

const gmAuthor = "GM"

// SaveQuest creates a quest at the front of the list, or edits one. Only
// the game master adds quests this way; players use SuggestQuest.
func (j *Journal) SaveQuest(s Session, f model.QuestForm) (model.Quest, bool, error) {
	var quest model.Quest
	if err := requireGM(s); err != nil {
		return quest, false, err
	}
	if strings.TrimSpace(f.Title) == "" {
		return quest, false, nil
	}
	status := f.Status
	if status == "" {
		status = model.QuestOpen
	}

	if f.EditingID != "" {
		_, err := update(j.st.Quests, func(cur []model.Quest) ([]model.Quest, error) {
			return notFound(store.Replace(cur, f.EditingID, func(q model.Quest) model.Quest {
				q.Title, q.Description, q.Status = f.Title, f.Description, status
				quest = q
				return q
			}))
		})
		return quest, err == nil, err
	}

	quest = model.Quest{
		ID: j.newID(), Title: f.Title, Description: f.Description, Status: status,
		CreatedAt: j.now(), AddedBy: gmAuthor,
	}
	_, err := update(j.st.Quests, func(cur []model.Quest) ([]model.Quest, error) {
		return store.Prepend(cur, quest), nil
	})
	return quest, err == nil, err
}

// SuggestQuest appends an open, player-suggested quest. Appending keeps
// suggestions in the order they were made.
func (j *Journal) SuggestQuest(s Session, f model.SuggestionForm) (model.Quest, bool, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" || !s.HasName() {
		return model.Quest{}, false, nil
	}
	quest := model.Quest{
		ID: j.newID(), Title: title, Description: strings.TrimSpace(f.Description),
		Status: model.QuestOpen, CreatedAt: j.now(), AddedBy: s.DisplayName(), Suggested: true,
	}
	_, err := update(j.st.Quests, func(cur []model.Quest) ([]model.Quest, error) {
		return store.Append(cur, quest), nil
	})
	return quest, err == nil, err
}

func (j *Journal) DeleteQuest(s Session, id string) error {
	if err := requireGM(s); err != nil {
		return err
	}
	_, err := update(j.st.Quests, func(cur []model.Quest) ([]model.Quest, error) {
		return notFound(store.Remove(cur, id))
	})
	return err
}
