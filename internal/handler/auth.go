package handler

import (
	"net/http"
	"strings"

	"chronik/internal/logger"
	"chronik/internal/middleware"
	"chronik/internal/model"
	"chronik/internal/prefs"
	"chronik/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	gate  *service.Gate
	prefs *prefs.Store
}

func NewAuthHandler(gate *service.Gate, p *prefs.Store) *AuthHandler {
	return &AuthHandler{gate: gate, prefs: p}
}

// POST /api/session  body: {"name":"..."}
func (h *AuthHandler) OpenSession(c *gin.Context) {
	var req model.SessionRequest
	if !bind(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" && h.prefs != nil {
		name = h.prefs.DisplayName()
	}
	logger.Info("session.open", "name", name)
	h.issue(c, service.NewSession(name, false))
}

// POST /api/gm/unlock  body: {"pin":"..."}
func (h *AuthHandler) Unlock(c *gin.Context) {
	var req model.UnlockRequest
	if !bind(c, &req) {
		return
	}
	s := middleware.SessionFrom(c)
	next, err := h.gate.Unlock(s, req.PIN)
	if err != nil {
		logger.Warn("gm.unlock_failed", "name", s.DisplayName())
		fail(c, err)
		return
	}
	logger.Info("gm.unlock", "name", s.DisplayName())
	h.issue(c, next)
}

// POST /api/gm/lock
func (h *AuthHandler) Lock(c *gin.Context) {
	h.issue(c, h.gate.Lock(middleware.SessionFrom(c)))
}

// PUT /api/gm/pin  body: {"pin":"..."}
func (h *AuthHandler) SetPIN(c *gin.Context) {
	var req model.UnlockRequest
	if !bind(c, &req) {
		return
	}
	if !middleware.SessionFrom(c).GM() {
		fail(c, service.ErrForbidden)
		return
	}
	if h.prefs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no preference store"})
		return
	}
	if err := h.prefs.SetPIN(req.PIN); err != nil {
		fail(c, err)
		return
	}
	logger.Info("gm.pin_changed")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) issue(c *gin.Context, s service.Session) {
	token, err := middleware.IssueToken(s)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetCookie(middleware.TokenCookie, token, int(middleware.TokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, model.SessionResponse{Token: token, Name: s.DisplayName(), GM: s.GM()})
}
