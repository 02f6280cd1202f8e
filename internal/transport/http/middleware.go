package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const roomParam = "room"

// ContextKeyRoomID is the context key for the normalized room id.
const ContextKeyRoomID = "room_id"

// RoomMiddleware normalizes the :room path parameter. Requests whose room id
// is not already normalized are redirected to the canonical path, or to the
// default room when nothing usable remains.
func RoomMiddleware(defaultRoomID string, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(roomParam)
		roomID := NormalizeRoomID(raw)
		if roomID != raw {
			target := "/" + defaultRoomID
			if roomID != "" {
				target = "/" + roomID
			}
			if rest := strings.TrimPrefix(c.Request.URL.Path, "/"+raw); rest != c.Request.URL.Path {
				target += rest
			}
			logger.Debug().Str("raw", raw).Str("target", target).Msg("redirecting non-canonical room id")
			c.Redirect(http.StatusTemporaryRedirect, target)
			c.Abort()
			return
		}

		c.Set(ContextKeyRoomID, roomID)
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		// Websocket streams are logged by the handler itself.
		if strings.HasSuffix(c.Request.URL.Path, "/chat") {
			return
		}
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}

func roomFromContext(c *gin.Context) string {
	return c.GetString(ContextKeyRoomID)
}
