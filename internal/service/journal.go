// Package service validates journal forms, applies role rules and is the
// only writer to the collection store.
//
// Save and add operations return (record, saved, err). A form missing a
// required field yields saved == false with a nil error and changes nothing.
package service

import (
	"errors"
	"time"

	"chronik/internal/model"
	"chronik/internal/store"
)

var (
	ErrForbidden            = errors.New("not allowed in this mode")
	ErrNotFound             = errors.New("not found")
	ErrConfirmationRequired = errors.New("deletion needs confirmation")
	ErrUnknownReaction      = errors.New("unknown reaction")
	ErrIncorrectPIN         = errors.New("incorrect PIN")
)

// unknownSpeaker attributes quotes with no speaker and no display name.
const unknownSpeaker = "Unbekannt"

type Journal struct {
	st    *store.Store
	now   func() int64
	today func() string
	newID func() string
}

func NewJournal(st *store.Store) *Journal {
	return &Journal{st: st, now: model.NowMillis, today: model.Today, newID: model.NewID}
}

// WithClock replaces the time source. Used by tests.
func (j *Journal) WithClock(now time.Time) *Journal {
	c := *j
	c.now = func() int64 { return now.UnixMilli() }
	c.today = func() string { return now.Format("2006-01-02") }
	return &c
}

func (j *Journal) Ready() bool { return j.st.Ready() }

// View is the journal as one session sees it.
type View struct {
	model.Journal
	QuestGroups []QuestGroup `json:"questGroups"`
	GM          bool         `json:"gm"`
	Name        string       `json:"name"`
}

// QuestGroup holds the quests of one status, in collection order.
type QuestGroup struct {
	Status model.QuestStatus `json:"status"`
	Label  string            `json:"label"`
	Color  string            `json:"color"`
	Quests []model.Quest     `json:"quests"`
}

// View builds the read model. GM-private NPC notes are left out for players.
func (j *Journal) View(s Session) View {
	npcs := j.st.Npcs.Get()
	if !s.GM() {
		stripped := make([]model.NpcProfile, len(npcs))
		for i, n := range npcs {
			n.Notes = ""
			stripped[i] = n
		}
		npcs = stripped
	}
	quests := j.st.Quests.Get()
	return View{
		Journal: model.Journal{
			Recaps:      j.st.Recaps.Get(),
			PlayerNotes: j.st.PlayerNotes.Get(),
			Quests:      quests,
			Quotes:      j.st.Quotes.Get(),
			Snippets:    j.st.Snippets.Get(),
			Npcs:        npcs,
			Reactions:   j.st.Reactions.Get(),
			Documents:   j.st.Documents.Get(),
		},
		QuestGroups: GroupQuests(quests),
		GM:          s.GM(),
		Name:        s.DisplayName(),
	}
}

// GroupQuests buckets quests by status in enum order. Quests with an
// unrecognized status follow in a group each, in first-seen order.
func GroupQuests(quests []model.Quest) []QuestGroup {
	byStatus := make(map[model.QuestStatus][]model.Quest)
	var extra []model.QuestStatus
	for _, q := range quests {
		if _, seen := byStatus[q.Status]; !seen && !q.Status.Known() {
			extra = append(extra, q.Status)
		}
		byStatus[q.Status] = append(byStatus[q.Status], q)
	}
	var groups []QuestGroup
	for _, st := range append(append([]model.QuestStatus{}, model.QuestStatuses...), extra...) {
		qs, ok := byStatus[st]
		if !ok {
			continue
		}
		groups = append(groups, QuestGroup{Status: st, Label: st.Label(), Color: st.Color(), Quests: qs})
	}
	return groups
}

func requireGM(s Session) error {
	if !s.GM() {
		return ErrForbidden
	}
	return nil
}

// notFound marks a missing edit target so the update writes nothing.
func notFound[T any](xs []T, ok bool) ([]T, error) {
	if !ok {
		return nil, ErrNotFound
	}
	return xs, nil
}
