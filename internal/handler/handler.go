// Package handler exposes the journal over HTTP.
package handler

import (
	"errors"
	"net/http"

	"chronik/internal/logger"
	"chronik/internal/model"
	"chronik/internal/service"

	"github.com/gin-gonic/gin"
)

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConfirmationRequired):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnknownReaction):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrIncorrectPIN):
		status = http.StatusUnauthorized
	default:
		logger.Error("request.failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// saved answers a form submission. A form that failed validation is not
// an error: it reports saved=false and nothing changed.
func saved[T any](c *gin.Context, rec T, ok bool, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, model.SaveResponse{Saved: false})
		return
	}
	c.JSON(http.StatusOK, model.SaveResponse{Saved: true, Record: rec})
}

func done(c *gin.Context, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
