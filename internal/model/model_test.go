package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFallbackColor(t *testing.T) {
	assert.Equal(t, "#94a8d8", QuestActive.Color())
	assert.Equal(t, DefaultColor, QuestStatus("open").Color())
	assert.Equal(t, "open", QuestStatus("open").Label())
	assert.False(t, QuestStatus("open").Known())

	assert.Equal(t, "Vermisst", NpcMissing.Label())
	assert.Equal(t, DefaultColor, NpcStatus("").Color())

	assert.Equal(t, "🏺", DocArtifact.Icon())
	assert.Equal(t, "🔮", DocumentType("scroll").Icon())
}

func TestUnknownStatusSurvivesDecode(t *testing.T) {
	var q Quest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","title":"x","status":"verschollen","ts":1}`), &q))
	assert.Equal(t, QuestStatus("verschollen"), q.Status)
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.Local).UnixMilli()
	assert.Equal(t, "4. März 2026", FormatDate(ts))
	assert.Equal(t, "14. Oktober 2026", FormatDay("2026-10-14"))
	assert.Equal(t, "irgendwann", FormatDay("irgendwann"))
}

func TestValidDay(t *testing.T) {
	assert.True(t, ValidDay(""))
	assert.True(t, ValidDay("2026-01-31"))
	assert.False(t, ValidDay("31.01.2026"))
}

func TestReactionEmojis(t *testing.T) {
	assert.Len(t, ReactionEmojis, 6)
	assert.True(t, IsReactionEmoji("🎲"))
	assert.False(t, IsReactionEmoji("👍"))
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
