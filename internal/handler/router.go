package handler

import (
	"net/http"

	"chronik/internal/middleware"
	"chronik/internal/prefs"
	"chronik/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Journal      *service.Journal
	Gate         *service.Gate
	Prefs        *prefs.Store
	AllowOrigins []string
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

func NewRouter(d Deps) *gin.Engine {
	authH := NewAuthHandler(d.Gate, d.Prefs)
	journalH := NewJournalHandler(d.Journal)
	importH := NewImportHandler(d.Journal)
	viewH := NewViewHandler(d.Journal)

	origins := d.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.Default()
	r.SetHTMLTemplate(Templates())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-New-Token"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ready": d.Journal.Ready()})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	r.GET("/", middleware.OptionalJWT(), viewH.Page)

	r.POST("/api/session", authH.OpenSession)
	api := r.Group("/api", middleware.JWTAuth())
	api.POST("/gm/unlock", authH.Unlock)
	api.POST("/gm/lock", authH.Lock)
	api.PUT("/gm/pin", authH.SetPIN)

	data := api.Group("", middleware.RequireReady(d.Journal.Ready))
	data.GET("/journal", journalH.Get)

	data.POST("/recaps", journalH.SaveRecap)
	data.PUT("/recaps/:id", journalH.SaveRecap)
	data.DELETE("/recaps/:id", journalH.DeleteRecap)
	data.POST("/recaps/:id/reactions", journalH.React)

	data.POST("/notes", journalH.SaveNote)
	data.PUT("/notes/:id", journalH.SaveNote)
	data.DELETE("/notes/:id", journalH.DeleteNote)

	data.POST("/quests", journalH.SaveQuest)
	data.POST("/quests/suggest", journalH.SuggestQuest)
	data.PUT("/quests/:id", journalH.SaveQuest)
	data.DELETE("/quests/:id", journalH.DeleteQuest)

	data.POST("/quotes", journalH.AddQuote)
	data.DELETE("/quotes/:id", journalH.DeleteQuote)

	data.POST("/snippets", journalH.AddSnippet)
	data.DELETE("/snippets/:id", journalH.DeleteSnippet)

	data.POST("/npcs", journalH.SaveNpc)
	data.PUT("/npcs/:id", journalH.SaveNpc)
	data.DELETE("/npcs/:id", journalH.DeleteNpc)
	data.POST("/npcs/:id/impressions", journalH.AddImpression)

	data.POST("/documents", journalH.AddDocument)
	data.DELETE("/documents/:id", journalH.DeleteDocument)

	data.GET("/export", importH.Export)
	data.POST("/import/preview", importH.Preview)
	data.POST("/import/confirm", importH.Confirm)

	return r
}
