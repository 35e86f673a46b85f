package service

import (
	"strings"

	"chronik/internal/model"
	"chronik/internal/store"
)

// SaveNpc creates or edits an NPC profile. Edits replace every form field
// and keep the id and the players' impressions.
func (j *Journal) SaveNpc(s Session, f model.NpcForm) (model.NpcProfile, bool, error) {
	var npc model.NpcProfile
	if err := requireGM(s); err != nil {
		return npc, false, err
	}
	if strings.TrimSpace(f.Name) == "" {
		return npc, false, nil
	}
	status := f.Status
	if status == "" {
		status = model.NpcAlive
	}

	if f.EditingID != "" {
		_, err := update(j.st.Npcs, func(cur []model.NpcProfile) ([]model.NpcProfile, error) {
			return notFound(store.Replace(cur, f.EditingID, func(n model.NpcProfile) model.NpcProfile {
				n.Name, n.Faction, n.Description = f.Name, f.Faction, f.Description
				n.ImageURL, n.Status, n.Notes = f.ImageURL, status, f.Notes
				npc = n
				return n
			}))
		})
		return npc, err == nil, err
	}

	npc = model.NpcProfile{
		ID: j.newID(), Name: f.Name, Faction: f.Faction, Description: f.Description,
		ImageURL: f.ImageURL, Status: status, Notes: f.Notes, Impressions: []model.Impression{},
	}
	_, err := update(j.st.Npcs, func(cur []model.NpcProfile) ([]model.NpcProfile, error) {
		return store.Prepend(cur, npc), nil
	})
	return npc, err == nil, err
}

func (j *Journal) DeleteNpc(s Session, id string) error {
	if err := requireGM(s); err != nil {
		return err
	}
	_, err := update(j.st.Npcs, func(cur []model.NpcProfile) ([]model.NpcProfile, error) {
		return notFound(store.Remove(cur, id))
	})
	return err
}

// AddImpression appends a player's impression to an NPC.
func (j *Journal) AddImpression(s Session, npcID string, f model.ImpressionForm) (model.Impression, bool, error) {
	text := strings.TrimSpace(f.Text)
	if text == "" || !s.HasName() {
		return model.Impression{}, false, nil
	}
	imp := model.Impression{ID: j.newID(), Text: text, Author: s.DisplayName(), CreatedAt: j.now()}
	_, err := update(j.st.Npcs, func(cur []model.NpcProfile) ([]model.NpcProfile, error) {
		return notFound(store.Replace(cur, npcID, func(n model.NpcProfile) model.NpcProfile {
			n.Impressions = store.Append(n.Impressions, imp)
			return n
		}))
	})
	return imp, err == nil, err
}
