package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Saiv46/AAWC/internal/config"
	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/proto"
)

// NewServer builds an HTTP server exposing the chat service.
func NewServer(svc *core.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(svc, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers all routes on a fresh gin engine.
func NewRouter(svc *core.Service, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(svc, cfg, logger)
	router.GET("/", rooms.RedirectDefault)
	router.GET("/.well-known/:"+roomParam, rooms.WellKnown)

	room := router.Group("/:"+roomParam, RoomMiddleware(cfg.DefaultRoomID, logger))
	room.GET("", rooms.Room)
	room.POST("/messages", rooms.PostMessage)
	room.GET("/archive", rooms.Archive)
	room.GET("/chat", NewWSHandler(svc, cfg, logger).Serve)

	return router
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Protocol int    `json:"protocol"`
}

func healthHandler(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, HealthResponse{Status: "ok", Protocol: proto.ProtocolVersion})
}
