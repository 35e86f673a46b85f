package handler

import (
	"embed"
	"html/template"
	"net/http"

	"chronik/internal/middleware"
	"chronik/internal/model"
	"chronik/internal/richtext"
	"chronik/internal/service"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates. Stored markup goes through the
// richtext sanitizer on its way into the page.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"rich":    richtext.Render,
		"plain":   richtext.RenderPlain,
		"excerpt": richtext.Excerpt,
		"day":     model.FormatDay,
		"date":    model.FormatDate,
		"emojis":  func() []string { return model.ReactionEmojis },
		"count": func(r model.Reactions, recapID, emoji string) int {
			return r[recapID][emoji]
		},
	}).ParseFS(templateFS, "templates/*.html"))
}

type ViewHandler struct{ j *service.Journal }

func NewViewHandler(j *service.Journal) *ViewHandler { return &ViewHandler{j: j} }

// GET /
func (h *ViewHandler) Page(c *gin.Context) {
	if !h.j.Ready() {
		c.HTML(http.StatusServiceUnavailable, "loading.html", nil)
		return
	}
	c.HTML(http.StatusOK, "journal.html", h.j.View(middleware.SessionFrom(c)))
}
