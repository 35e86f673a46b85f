package model

// Persisted journal records. JSON names match the payloads already stored
// under the wtm-s-* keys, so timestamps stay "ts" (epoch milliseconds).

type SessionRecap struct {
	ID        string `json:"id"`
	Date      string `json:"date,omitempty"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"ts"`
}

type PlayerNote struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt int64  `json:"ts"`
}

type Quest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      QuestStatus `json:"status"`
	CreatedAt   int64       `json:"ts"`
	AddedBy     string      `json:"addedBy"`
	Suggested   bool        `json:"suggested,omitempty"`
}

type Quote struct {
	ID        string `json:"id"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"ts"`
}

type StorySnippet struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"ts"`
}

type NpcProfile struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Faction     string       `json:"faction"`
	Description string       `json:"description"`
	ImageURL    string       `json:"imageUrl"`
	Status      NpcStatus    `json:"status"`
	Notes       string       `json:"notes"`
	Impressions []Impression `json:"impressions"`
}

// Impression is a player's note on an NPC. Owned by the NPC record.
type Impression struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt int64  `json:"ts"`
}

type FoundDocument struct {
	ID        string       `json:"id"`
	Type      DocumentType `json:"type"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	ImageURL  string       `json:"imageUrl"`
	CreatedAt int64        `json:"ts"`
}

// Reactions maps recap id to emoji to click count.
type Reactions map[string]map[string]int

// Record is implemented by every element of an ordered collection.
type Record interface {
	RecordID() string
}

func (r SessionRecap) RecordID() string  { return r.ID }
func (n PlayerNote) RecordID() string    { return n.ID }
func (q Quest) RecordID() string         { return q.ID }
func (q Quote) RecordID() string         { return q.ID }
func (s StorySnippet) RecordID() string  { return s.ID }
func (n NpcProfile) RecordID() string    { return n.ID }
func (d FoundDocument) RecordID() string { return d.ID }
