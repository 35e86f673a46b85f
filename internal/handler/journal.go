package handler

import (
	"net/http"

	"chronik/internal/middleware"
	"chronik/internal/model"
	"chronik/internal/service"

	"github.com/gin-gonic/gin"
)

type JournalHandler struct{ j *service.Journal }

func NewJournalHandler(j *service.Journal) *JournalHandler { return &JournalHandler{j: j} }

// GET /api/journal
func (h *JournalHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.j.View(middleware.SessionFrom(c)))
}

// POST /api/recaps, PUT /api/recaps/:id
func (h *JournalHandler) SaveRecap(c *gin.Context) {
	var f model.RecapForm
	if !bind(c, &f) {
		return
	}
	editing(c, &f.EditingID)
	rec, ok, err := h.j.SaveRecap(middleware.SessionFrom(c), f)
	saved(c, rec, ok, err)
}

// DELETE /api/recaps/:id?confirm=true
func (h *JournalHandler) DeleteRecap(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"
	done(c, h.j.DeleteRecap(middleware.SessionFrom(c), c.Param("id"), confirmed))
}

// POST /api/recaps/:id/reactions  body: {"emoji":"✨"}
func (h *JournalHandler) React(c *gin.Context) {
	var req model.ReactionRequest
	if !bind(c, &req) {
		return
	}
	tally, err := h.j.React(middleware.SessionFrom(c), c.Param("id"), req.Emoji)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

// POST /api/notes, PUT /api/notes/:id
func (h *JournalHandler) SaveNote(c *gin.Context) {
	var f model.NoteForm
	if !bind(c, &f) {
		return
	}
	editing(c, &f.EditingID)
	note, ok, err := h.j.SaveNote(middleware.SessionFrom(c), f)
	saved(c, note, ok, err)
}

func (h *JournalHandler) DeleteNote(c *gin.Context) {
	done(c, h.j.DeleteNote(middleware.SessionFrom(c), c.Param("id")))
}

// POST /api/quests, PUT /api/quests/:id
func (h *JournalHandler) SaveQuest(c *gin.Context) {
	var f model.QuestForm
	if !bind(c, &f) {
		return
	}
	editing(c, &f.EditingID)
	q, ok, err := h.j.SaveQuest(middleware.SessionFrom(c), f)
	saved(c, q, ok, err)
}

// POST /api/quests/suggest
func (h *JournalHandler) SuggestQuest(c *gin.Context) {
	var f model.SuggestionForm
	if !bind(c, &f) {
		return
	}
	q, ok, err := h.j.SuggestQuest(middleware.SessionFrom(c), f)
	saved(c, q, ok, err)
}

func (h *JournalHandler) DeleteQuest(c *gin.Context) {
	done(c, h.j.DeleteQuest(middleware.SessionFrom(c), c.Param("id")))
}

func (h *JournalHandler) AddQuote(c *gin.Context) {
	var f model.QuoteForm
	if !bind(c, &f) {
		return
	}
	q, ok, err := h.j.AddQuote(middleware.SessionFrom(c), f)
	saved(c, q, ok, err)
}

func (h *JournalHandler) DeleteQuote(c *gin.Context) {
	done(c, h.j.DeleteQuote(middleware.SessionFrom(c), c.Param("id")))
}

func (h *JournalHandler) AddSnippet(c *gin.Context) {
	var f model.SnippetForm
	if !bind(c, &f) {
		return
	}
	s, ok, err := h.j.AddSnippet(middleware.SessionFrom(c), f)
	saved(c, s, ok, err)
}

func (h *JournalHandler) DeleteSnippet(c *gin.Context) {
	done(c, h.j.DeleteSnippet(middleware.SessionFrom(c), c.Param("id")))
}

// POST /api/npcs, PUT /api/npcs/:id
func (h *JournalHandler) SaveNpc(c *gin.Context) {
	var f model.NpcForm
	if !bind(c, &f) {
		return
	}
	editing(c, &f.EditingID)
	n, ok, err := h.j.SaveNpc(middleware.SessionFrom(c), f)
	saved(c, n, ok, err)
}

func (h *JournalHandler) DeleteNpc(c *gin.Context) {
	done(c, h.j.DeleteNpc(middleware.SessionFrom(c), c.Param("id")))
}

// POST /api/npcs/:id/impressions
func (h *JournalHandler) AddImpression(c *gin.Context) {
	var f model.ImpressionForm
	if !bind(c, &f) {
		return
	}
	imp, ok, err := h.j.AddImpression(middleware.SessionFrom(c), c.Param("id"), f)
	saved(c, imp, ok, err)
}

func (h *JournalHandler) AddDocument(c *gin.Context) {
	var f model.DocumentForm
	if !bind(c, &f) {
		return
	}
	d, ok, err := h.j.AddDocument(middleware.SessionFrom(c), f)
	saved(c, d, ok, err)
}

func (h *JournalHandler) DeleteDocument(c *gin.Context) {
	done(c, h.j.DeleteDocument(middleware.SessionFrom(c), c.Param("id")))
}

// editing lets a PUT path id select the edit target.
func editing(c *gin.Context, id *string) {
	if p := c.Param("id"); p != "" {
		*id = p
	}
}
