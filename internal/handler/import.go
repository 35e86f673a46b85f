package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"chronik/internal/logger"
	"chronik/internal/middleware"
	"chronik/internal/service"

	"github.com/gin-gonic/gin"
)

const previewTTL = 10 * time.Minute

type ImportHandler struct {
	j     *service.Journal
	cache sync.Map // token -> *previewCache
	now   func() time.Time
}

type previewCache struct {
	dump      service.Dump
	createdAt time.Time
}

func NewImportHandler(j *service.Journal) *ImportHandler {
	return &ImportHandler{j: j, now: time.Now}
}

// sweep drops expired previews. It runs on every upload, so the cache
// never holds more than the uploads of the last ten minutes.
func (h *ImportHandler) sweep() {
	now := h.now()
	h.cache.Range(func(k, v any) bool {
		if v.(*previewCache).expired(now) {
			h.cache.Delete(k)
		}
		return true
	})
}

func (p *previewCache) expired(now time.Time) bool {
	return now.Sub(p.createdAt) > previewTTL
}

// GET /api/export  whole journal as a download
func (h *ImportHandler) Export(c *gin.Context) {
	if !middleware.SessionFrom(c).GM() {
		fail(c, service.ErrForbidden)
		return
	}
	d, err := h.j.Export()
	if err != nil {
		fail(c, err)
		return
	}
	name := fmt.Sprintf("chronik-%s.json", time.UnixMilli(d.ExportedAt).Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.JSON(http.StatusOK, d)
}

// POST /api/import/preview  multipart "file"; returns per-slot counts and a token
func (h *ImportHandler) Preview(c *gin.Context) {
	if !middleware.SessionFrom(c).GM() {
		fail(c, service.ErrForbidden)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	f, err := file.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	var d service.Dump
	if err := json.NewDecoder(f).Decode(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a journal export"})
		return
	}
	counts, err := service.Inspect(d)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.sweep()
	token := genToken()
	h.cache.Store(token, &previewCache{dump: d, createdAt: h.now()})
	logger.Info("import.preview", "file", file.Filename, "slots", len(counts))
	c.JSON(http.StatusOK, gin.H{"token": token, "counts": counts})
}

// POST /api/import/confirm  body: {"token":"..."}
func (h *ImportHandler) Confirm(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	val, ok := h.cache.LoadAndDelete(req.Token)
	if !ok || val.(*previewCache).expired(h.now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preview expired, upload again"})
		return
	}
	cached := val.(*previewCache)
	if err := h.j.Import(c.Request.Context(), middleware.SessionFrom(c), cached.dump); err != nil {
		fail(c, err)
		return
	}
	logger.Info("import.done", "slots", len(cached.dump.Slots))
	c.JSON(http.StatusOK, gin.H{"imported": len(cached.dump.Slots)})
}

func genToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
