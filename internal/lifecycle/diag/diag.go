// Package diag exposes a read-only gin HTTP surface over a running
// lifecycle.Engine: the extension list and per-extension detail (looked up
// by manifest name), for operators to poll without reaching into engine
// internals.
package diag

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plugify-dev/plugify/internal/lifecycle"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID generates or propagates a correlation ID per request, adapted
// from the teacher's request_id middleware for this engine's single-process
// diagnostics surface rather than a multi-service call chain.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// NewRouter builds the diagnostics router over eng. It registers no
// mutating endpoints: every route reads engine state already published by
// the lifecycle thread, never triggers a transition.
func NewRouter(eng *lifecycle.Engine) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.GET("/extensions", func(c *gin.Context) {
		exts := eng.Extensions()
		out := make([]lifecycle.Snapshot, 0, len(exts))
		for _, e := range exts {
			out = append(out, e.Snapshot())
		}
		c.JSON(http.StatusOK, gin.H{"extensions": out})
	})

	r.GET("/extensions/:name", func(c *gin.Context) {
		e, ok := eng.GetExtension(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "extension not found"})
			return
		}
		c.JSON(http.StatusOK, e.Snapshot())
	})

	return r
}
