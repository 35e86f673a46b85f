package model

// DefaultColor is shown for any status value outside the known set.
const DefaultColor = "#c0b8c8"

type QuestStatus string

const (
	QuestOpen     QuestStatus = "offen"
	QuestActive   QuestStatus = "aktiv"
	QuestResolved QuestStatus = "gelöst"
	QuestFailed   QuestStatus = "gescheitert"
)

// QuestStatuses is the display order of quest groups.
var QuestStatuses = []QuestStatus{QuestOpen, QuestActive, QuestResolved, QuestFailed}

var questMeta = map[QuestStatus]struct{ label, color string }{
	QuestOpen:     {"Offen", "#c094c8"},
	QuestActive:   {"Aktiv", "#94a8d8"},
	QuestResolved: {"Gelöst", "#94c8a8"},
	QuestFailed:   {"Gescheitert", "#d8a0a0"},
}

func (s QuestStatus) Known() bool {
	_, ok := questMeta[s]
	return ok
}

func (s QuestStatus) Label() string {
	if m, ok := questMeta[s]; ok {
		return m.label
	}
	return string(s)
}

func (s QuestStatus) Color() string {
	if m, ok := questMeta[s]; ok {
		return m.color
	}
	return DefaultColor
}

type NpcStatus string

const (
	NpcAlive   NpcStatus = "lebendig"
	NpcDead    NpcStatus = "tot"
	NpcMissing NpcStatus = "vermisst"
	NpcUnknown NpcStatus = "unbekannt"
)

var NpcStatuses = []NpcStatus{NpcAlive, NpcDead, NpcMissing, NpcUnknown}

var npcMeta = map[NpcStatus]struct{ label, color string }{
	NpcAlive:   {"Lebendig", "#94c8a8"},
	NpcDead:    {"Tot", "#d8a0a0"},
	NpcMissing: {"Vermisst", "#e8c878"},
	NpcUnknown: {"Unbekannt", "#c0b8c8"},
}

func (s NpcStatus) Known() bool {
	_, ok := npcMeta[s]
	return ok
}

func (s NpcStatus) Label() string {
	if m, ok := npcMeta[s]; ok {
		return m.label
	}
	return string(s)
}

func (s NpcStatus) Color() string {
	if m, ok := npcMeta[s]; ok {
		return m.color
	}
	return DefaultColor
}

type DocumentType string

const (
	DocLetter   DocumentType = "brief"
	DocDiary    DocumentType = "tagebuch"
	DocNote     DocumentType = "notiz"
	DocArtifact DocumentType = "artefakt"
	DocMap      DocumentType = "karte"
	DocOther    DocumentType = "sonstiges"
)

var DocumentTypes = []DocumentType{DocLetter, DocDiary, DocNote, DocArtifact, DocMap, DocOther}

var docMeta = map[DocumentType]struct{ label, icon string }{
	DocLetter:   {"Brief", "✉"},
	DocDiary:    {"Tagebuch", "📔"},
	DocNote:     {"Notiz", "📝"},
	DocArtifact: {"Artefakt", "🏺"},
	DocMap:      {"Karte", "🗺"},
	DocOther:    {"Sonstiges", "🔮"},
}

func (t DocumentType) Label() string {
	if m, ok := docMeta[t]; ok {
		return m.label
	}
	return string(t)
}

// Icon falls back to the "sonstiges" icon for unknown types.
func (t DocumentType) Icon() string {
	if m, ok := docMeta[t]; ok {
		return m.icon
	}
	return docMeta[DocOther].icon
}

// ReactionEmojis is the fixed reaction set, in display order.
var ReactionEmojis = []string{"✨", "💀", "😂", "❤️", "🎲", "😱"}

func IsReactionEmoji(e string) bool {
	for _, r := range ReactionEmojis {
		if r == e {
			return true
		}
	}
	return false
}
