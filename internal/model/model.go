package model

// Form payloads. EditingID selects edit instead of create; it is transient
// UI state and never stored.

type RecapForm struct {
	EditingID string `json:"editingId,omitempty"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

type NoteForm struct {
	EditingID string `json:"editingId,omitempty"`
	Text      string `json:"text"`
}

type QuestForm struct {
	EditingID   string      `json:"editingId,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      QuestStatus `json:"status"`
}

type SuggestionForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type QuoteForm struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type SnippetForm struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type NpcForm struct {
	EditingID   string    `json:"editingId,omitempty"`
	Name        string    `json:"name"`
	Faction     string    `json:"faction"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Status      NpcStatus `json:"status"`
	Notes       string    `json:"notes"`
}

type ImpressionForm struct {
	Text string `json:"text"`
}

type DocumentForm struct {
	Type     DocumentType `json:"type"`
	Title    string       `json:"title"`
	Text     string       `json:"text"`
	ImageURL string       `json:"imageUrl"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

// SessionRequest opens a device session. An empty name falls back to the
// host's configured display name.
type SessionRequest struct {
	Name string `json:"name"`
}

type UnlockRequest struct {
	PIN string `json:"pin" binding:"required"`
}

type SessionResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	GM    bool   `json:"gm"`
}

// SaveResponse is returned by every form submission. Saved is false when
// a required field was empty and nothing changed.
type SaveResponse struct {
	Saved  bool `json:"saved"`
	Record any  `json:"record,omitempty"`
}

// Journal is the full readable state for one session.
type Journal struct {
	Recaps      []SessionRecap  `json:"recaps"`
	PlayerNotes []PlayerNote    `json:"playerNotes"`
	Quests      []Quest         `json:"quests"`
	Quotes      []Quote         `json:"quotes"`
	Snippets    []StorySnippet  `json:"snippets"`
	Npcs        []NpcProfile    `json:"npcs"`
	Reactions   Reactions       `json:"reactions"`
	Documents   []FoundDocument `json:"documents"`
}
